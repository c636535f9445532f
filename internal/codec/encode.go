package codec

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/MKhiriev/go-pim-sync/models"
)

// Encode renders record as wire text identified by its local id. Category
// ids are rendered as their labels; a value with no category behind it is a
// pending placeholder and is rendered as is.
func (c *Codec) Encode(ctx context.Context, record models.Record) ([]byte, error) {
	e := encoder{ctx: ctx, categories: c.categories}

	common, err := e.common(record)
	if err != nil {
		return nil, err
	}
	if record.HasLocalID() {
		common.Identifier = &wireIdentifier{Local: "true", Value: record.ID}
	}

	var doc any
	switch record.Kind {
	case models.KindContact:
		if record.Contact == nil {
			return nil, fmt.Errorf("%w: contact without body", ErrStructural)
		}
		doc = e.contact(common, record.Contact)
	case models.KindTask:
		if record.Task == nil {
			return nil, fmt.Errorf("%w: task without body", ErrStructural)
		}
		doc = e.task(common, record.Task)
	case models.KindAppointment:
		if record.Appointment == nil {
			return nil, fmt.Errorf("%w: appointment without body", ErrStructural)
		}
		w, err := e.appointment(common, record.Appointment, true)
		if err != nil {
			return nil, err
		}
		doc = w
	default:
		return nil, fmt.Errorf("%w: unknown record kind %d", ErrStructural, record.Kind)
	}

	return xml.Marshal(doc)
}

type encoder struct {
	ctx        context.Context
	categories CategoryResolver
}

func (e encoder) common(record models.Record) (wireCommon, error) {
	var w wireCommon

	if len(record.Categories) > 0 {
		w.Categories = &wireCategories{}
		for _, id := range record.Categories {
			label, found, err := e.categories.LabelForID(e.ctx, id)
			if err != nil {
				return wireCommon{}, fmt.Errorf("resolving category %q: %w", id, err)
			}
			if !found {
				label = id
			}
			w.Categories.Items = append(w.Categories.Items, label)
		}
	}

	if len(record.CustomFields) > 0 {
		keys := make([]string, 0, len(record.CustomFields))
		for k := range record.CustomFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w.CustomFields = &wireCustomFields{}
		for _, k := range keys {
			w.CustomFields.Fields = append(w.CustomFields.Fields, wireField{Key: k, Value: record.CustomFields[k]})
		}
	}

	return w, nil
}

func (e encoder) contact(common wireCommon, c *models.Contact) wireContact {
	w := wireContact{
		wireCommon:  common,
		NameTitle:   c.NameTitle,
		FirstName:   c.FirstName,
		MiddleName:  c.MiddleName,
		LastName:    c.LastName,
		Suffix:      c.Suffix,
		Nickname:    c.Nickname,
		Company:     c.Company,
		Department:  c.Department,
		JobTitle:    c.JobTitle,
		Birthday:    formatDate(c.Birthday),
		Anniversary: formatDate(c.Anniversary),
		Gender:      c.Gender,
		Notes:       c.Notes,
	}

	if len(c.PhoneNumbers) > 0 {
		w.PhoneNumbers = &wirePhoneNumbers{}
		for _, number := range c.PhoneNumbers {
			w.PhoneNumbers.Numbers = append(w.PhoneNumbers.Numbers, wireNumber{Type: number.Type, Value: number.Number})
		}
	}
	if len(c.Emails) > 0 {
		w.Emails = &wireEmails{Emails: append([]string(nil), c.Emails...)}
	}
	if !c.HomeAddress.IsZero() {
		address := wireAddress(c.HomeAddress)
		w.HomeAddress = &address
	}
	if !c.BusinessAddress.IsZero() {
		address := wireAddress(c.BusinessAddress)
		w.BusinessAddress = &address
	}

	return w
}

func (e encoder) task(common wireCommon, t *models.Task) wireTask {
	return wireTask{
		wireCommon:       common,
		Description:      t.Description,
		Priority:         formatInt(t.Priority),
		Status:           string(t.Status),
		DueDate:          formatDate(t.DueDate),
		StartedDate:      formatDate(t.StartedDate),
		CompletedDate:    formatDate(t.CompletedDate),
		PercentCompleted: formatInt(t.PercentCompleted),
		Notes:            t.Notes,
	}
}

func (e encoder) appointment(common wireCommon, a *models.Appointment, top bool) (wireAppointment, error) {
	w := wireAppointment{
		wireCommon:  common,
		Description: a.Description,
		Location:    a.Location,
		Start:       formatDateTime(a.Start),
		End:         formatDateTime(a.End),
		TimeZone:    a.TimeZone,
		Notes:       a.Notes,
	}
	if a.AllDay {
		w.AllDay = "true"
	}
	if a.Alarm.Type != "" || a.Alarm.Minutes != 0 {
		w.Alarm = &wireAlarm{Type: string(a.Alarm.Type), Minutes: strconv.Itoa(a.Alarm.Minutes)}
	}

	if top && a.Repeat != nil {
		repeat := &wireRepeat{
			Type:      string(a.Repeat.Type),
			Frequency: formatInt(a.Repeat.Frequency),
			Until:     formatDate(a.Repeat.Until),
		}
		if a.Repeat.WeekMask != 0 {
			repeat.WeekMask = a.Repeat.WeekMask.String()
		}

		for _, exception := range a.Exceptions {
			we := wireException{OriginalDate: formatDate(exception.OriginalDate)}
			if exception.Replacement != nil && exception.Replacement.Appointment != nil {
				replacementCommon, err := e.common(*exception.Replacement)
				if err != nil {
					return wireAppointment{}, err
				}
				replacement, err := e.appointment(replacementCommon, exception.Replacement.Appointment, false)
				if err != nil {
					return wireAppointment{}, err
				}
				we.Replacement = &replacement
			}
			repeat.Exceptions = append(repeat.Exceptions, we)
		}
		w.Repeat = repeat
	}

	return w, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateTimeLayout)
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
