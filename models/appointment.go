package models

import (
	"strings"
	"time"
)

// AlarmType selects how an appointment reminder is presented.
type AlarmType string

const (
	AlarmNone    AlarmType = "None"
	AlarmVisible AlarmType = "Visible"
	AlarmAudible AlarmType = "Audible"
)

// Alarm is the reminder attached to an appointment. Minutes is the lead time
// before Start.
type Alarm struct {
	Type    AlarmType
	Minutes int
}

// RepeatType is the recurrence rule family of an appointment.
type RepeatType string

const (
	RepeatDaily         RepeatType = "Daily"
	RepeatWeekly        RepeatType = "Weekly"
	RepeatMonthlyDate   RepeatType = "MonthlyDate"
	RepeatMonthlyDay    RepeatType = "MonthlyDay"
	RepeatMonthlyEndDay RepeatType = "MonthlyEndDay"
	RepeatYearly        RepeatType = "Yearly"
)

// Valid reports whether t is a known recurrence rule.
func (t RepeatType) Valid() bool {
	switch t {
	case RepeatDaily, RepeatWeekly, RepeatMonthlyDate, RepeatMonthlyDay, RepeatMonthlyEndDay, RepeatYearly:
		return true
	}
	return false
}

// WeekMask is a set of weekdays, bit i set for time.Weekday(i).
type WeekMask uint8

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Has reports whether day is in the mask.
func (m WeekMask) Has(day time.Weekday) bool {
	return m&(1<<uint(day)) != 0
}

// With returns the mask with day added.
func (m WeekMask) With(day time.Weekday) WeekMask {
	return m | 1<<uint(day)
}

// String renders the mask as space separated weekday names, Monday first.
func (m WeekMask) String() string {
	names := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		day := time.Weekday(i % 7)
		if m.Has(day) {
			names = append(names, weekdayNames[day])
		}
	}
	return strings.Join(names, " ")
}

// ParseWeekMask parses the form produced by [WeekMask.String]. Unknown names
// are reported through ok=false.
func ParseWeekMask(s string) (mask WeekMask, ok bool) {
	for _, name := range strings.Fields(s) {
		found := false
		for day, dayName := range weekdayNames {
			if strings.EqualFold(name, dayName) {
				mask = mask.With(time.Weekday(day))
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return mask, true
}

// Repeat describes how an appointment recurs.
type Repeat struct {
	Type      RepeatType
	Frequency int
	Until     time.Time
	WeekMask  WeekMask
}

// Appointment is a calendar entry, possibly recurring.
type Appointment struct {
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	TimeZone    string
	Notes       string
	Alarm       Alarm

	// Repeat is nil for single appointments.
	Repeat *Repeat

	// Exceptions is ordered by OriginalDate and only meaningful when Repeat
	// is set.
	Exceptions []Exception
}

// IsRecurring reports whether the appointment has a recurrence rule.
func (a *Appointment) IsRecurring() bool {
	return a != nil && a.Repeat != nil
}

// Exception overrides one occurrence of a recurring appointment.
//
// A nil Replacement marks the occurrence removed; otherwise Replacement is a
// non-recurring appointment record shown instead of the occurrence.
type Exception struct {
	OriginalDate time.Time
	Replacement  *Record
}

// IsRemoval reports whether the exception only cancels the occurrence.
func (e Exception) IsRemoval() bool {
	return e.Replacement == nil
}
