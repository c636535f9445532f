package codec

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-pim-sync/models"
)

// CategoryResolver maps category labels to local ids and back.
type CategoryResolver interface {
	IDForLabel(ctx context.Context, label string) (string, bool, error)
	LabelForID(ctx context.Context, id string) (string, bool, error)
}

// Codec encodes and decodes wire records. It is safe for concurrent use when
// its resolver is.
type Codec struct {
	categories CategoryResolver
}

// New returns a Codec resolving category labels through categories.
func New(categories CategoryResolver) *Codec {
	return &Codec{categories: categories}
}

// Identifier is the record identifier carried on the wire. Local reports
// whether Value is a device id rather than a peer id.
type Identifier struct {
	Value string
	Local bool
}

type listField int

const (
	listCategories listField = iota
	listCustomFields
	listPhoneNumbers
	listEmails
)

// Decoded is a parsed wire record before it is merged with stored state.
type Decoded struct {
	Record     models.Record
	Identifier Identifier

	// limits holds the maxItems announced per truncated list.
	limits map[listField]int
}

// Truncated reports whether the sender announced a limit on any list.
func (d *Decoded) Truncated() bool {
	return len(d.limits) > 0
}

// Kind sniffs the root element of wire without decoding the record.
func Kind(wire []byte) (models.Kind, error) {
	dec := xml.NewDecoder(bytes.NewReader(wire))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return models.KindUnknown, fmt.Errorf("%w: no root element", ErrStructural)
		}
		if err != nil {
			return models.KindUnknown, fmt.Errorf("%w: %w", ErrStructural, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			switch start.Name.Local {
			case models.KindContact.String():
				return models.KindContact, nil
			case models.KindTask.String():
				return models.KindTask, nil
			case models.KindAppointment.String():
				return models.KindAppointment, nil
			default:
				return models.KindUnknown, fmt.Errorf("%w: unknown root element %q", ErrStructural, start.Name.Local)
			}
		}
	}
}

// Identify returns the kind and identifier of wire without decoding the
// record fields.
func Identify(wire []byte) (models.Kind, Identifier, error) {
	kind, err := Kind(wire)
	if err != nil {
		return kind, Identifier{}, err
	}

	var w wireCommon
	if err := xml.Unmarshal(wire, &w); err != nil {
		return kind, Identifier{}, fmt.Errorf("%w: %w", ErrStructural, err)
	}
	if w.Identifier == nil || strings.TrimSpace(w.Identifier.Value) == "" {
		return kind, Identifier{}, fmt.Errorf("%w: missing identifier", ErrStructural)
	}
	return kind, Identifier{
		Value: strings.TrimSpace(w.Identifier.Value),
		Local: w.Identifier.Local == "true",
	}, nil
}

// Decode parses wire as a record of kind. Unknown category labels are added
// to unresolved and kept in the record as placeholders.
func (c *Codec) Decode(ctx context.Context, kind models.Kind, wire []byte, unresolved *models.UnresolvedCategorySet) (*Decoded, error) {
	root, err := Kind(wire)
	if err != nil {
		return nil, err
	}
	if root != kind {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrStructural, kind, root)
	}

	d := &decoder{ctx: ctx, categories: c.categories, unresolved: unresolved, limits: make(map[listField]int)}

	var (
		record models.Record
		common wireCommon
	)
	switch kind {
	case models.KindContact:
		var w wireContact
		if err := xml.Unmarshal(wire, &w); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStructural, err)
		}
		common = w.wireCommon
		record, err = d.contact(w)
	case models.KindTask:
		var w wireTask
		if err := xml.Unmarshal(wire, &w); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStructural, err)
		}
		common = w.wireCommon
		record, err = d.task(w)
	case models.KindAppointment:
		var w wireAppointment
		if err := xml.Unmarshal(wire, &w); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStructural, err)
		}
		common = w.wireCommon
		record, err = d.appointment(w, true)
	}
	if err != nil {
		return nil, err
	}

	if common.Identifier == nil || strings.TrimSpace(common.Identifier.Value) == "" {
		return nil, fmt.Errorf("%w: missing identifier", ErrStructural)
	}
	id := Identifier{Value: strings.TrimSpace(common.Identifier.Value)}
	switch common.Identifier.Local {
	case "", "false":
	case "true":
		id.Local = true
	default:
		return nil, parseError("Identifier@localIdentifier", common.Identifier.Local, nil)
	}
	if id.Local {
		record.ID = id.Value
	} else {
		record.PeerID = id.Value
	}

	return &Decoded{Record: record, Identifier: id, limits: d.limits}, nil
}

type decoder struct {
	ctx        context.Context
	categories CategoryResolver
	unresolved *models.UnresolvedCategorySet
	limits     map[listField]int
}

func (d *decoder) common(w wireCommon, record *models.Record, top bool) error {
	if w.Categories != nil {
		if top {
			if err := d.limit(listCategories, w.Categories.MaxItems); err != nil {
				return err
			}
		}
		categories, err := d.resolveCategories(w.Categories.Items)
		if err != nil {
			return err
		}
		record.Categories = categories
	}

	if w.CustomFields != nil && len(w.CustomFields.Fields) > 0 {
		if top {
			if err := d.limit(listCustomFields, w.CustomFields.MaxItems); err != nil {
				return err
			}
		}
		record.CustomFields = make(map[string]string, len(w.CustomFields.Fields))
		for _, field := range w.CustomFields.Fields {
			if field.Key == "" {
				return parseError("CustomFields/Field/Key", "", nil)
			}
			record.CustomFields[field.Key] = field.Value
		}
	} else if w.CustomFields != nil && top {
		if err := d.limit(listCustomFields, w.CustomFields.MaxItems); err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) resolveCategories(labels []string) ([]string, error) {
	var ids []string
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		id, found, err := d.categories.IDForLabel(d.ctx, label)
		if err != nil {
			return nil, fmt.Errorf("resolving category %q: %w", label, err)
		}
		if !found {
			if d.unresolved != nil {
				d.unresolved.Add(label)
			}
			id = label
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *decoder) limit(field listField, raw string) error {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return parseError("maxItems", raw, err)
	}
	d.limits[field] = n
	return nil
}

func (d *decoder) contact(w wireContact) (models.Record, error) {
	record := models.Record{Kind: models.KindContact}
	if err := d.common(w.wireCommon, &record, true); err != nil {
		return models.Record{}, err
	}

	c := &models.Contact{
		NameTitle:  w.NameTitle,
		FirstName:  w.FirstName,
		MiddleName: w.MiddleName,
		LastName:   w.LastName,
		Suffix:     w.Suffix,
		Nickname:   w.Nickname,
		Company:    w.Company,
		Department: w.Department,
		JobTitle:   w.JobTitle,
		Gender:     w.Gender,
		Notes:      w.Notes,
	}

	if w.PhoneNumbers != nil {
		if err := d.limit(listPhoneNumbers, w.PhoneNumbers.MaxItems); err != nil {
			return models.Record{}, err
		}
		for _, number := range w.PhoneNumbers.Numbers {
			c.PhoneNumbers = append(c.PhoneNumbers, models.PhoneNumber{Type: number.Type, Number: strings.TrimSpace(number.Value)})
		}
	}
	if w.Emails != nil {
		if err := d.limit(listEmails, w.Emails.MaxItems); err != nil {
			return models.Record{}, err
		}
		for _, email := range w.Emails.Emails {
			if email = strings.TrimSpace(email); email != "" {
				c.Emails = append(c.Emails, email)
			}
		}
	}

	if w.HomeAddress != nil {
		c.HomeAddress = models.Address(*w.HomeAddress)
	}
	if w.BusinessAddress != nil {
		c.BusinessAddress = models.Address(*w.BusinessAddress)
	}

	var err error
	if c.Birthday, err = parseDate("Birthday", w.Birthday); err != nil {
		return models.Record{}, err
	}
	if c.Anniversary, err = parseDate("Anniversary", w.Anniversary); err != nil {
		return models.Record{}, err
	}

	record.Contact = c
	return record, nil
}

func (d *decoder) task(w wireTask) (models.Record, error) {
	record := models.Record{Kind: models.KindTask}
	if err := d.common(w.wireCommon, &record, true); err != nil {
		return models.Record{}, err
	}

	t := &models.Task{
		Description: w.Description,
		Notes:       w.Notes,
	}

	var err error
	if t.Priority, err = parseInt("Priority", w.Priority, 1, 5); err != nil {
		return models.Record{}, err
	}
	if t.PercentCompleted, err = parseInt("PercentCompleted", w.PercentCompleted, 0, 100); err != nil {
		return models.Record{}, err
	}
	if w.Status != "" {
		t.Status = models.TaskStatus(w.Status)
		if !t.Status.Valid() {
			return models.Record{}, parseError("Status", w.Status, nil)
		}
	}
	if t.DueDate, err = parseDate("DueDate", w.DueDate); err != nil {
		return models.Record{}, err
	}
	if t.StartedDate, err = parseDate("StartedDate", w.StartedDate); err != nil {
		return models.Record{}, err
	}
	if t.CompletedDate, err = parseDate("CompletedDate", w.CompletedDate); err != nil {
		return models.Record{}, err
	}

	record.Task = t
	return record, nil
}

// appointment decodes a governing appointment (top) or an exception
// replacement. Replacements never recur: a nested Repeat is dropped.
func (d *decoder) appointment(w wireAppointment, top bool) (models.Record, error) {
	record := models.Record{Kind: models.KindAppointment}
	if err := d.common(w.wireCommon, &record, top); err != nil {
		return models.Record{}, err
	}

	a := &models.Appointment{
		Description: w.Description,
		Location:    w.Location,
		TimeZone:    w.TimeZone,
		Notes:       w.Notes,
	}

	var err error
	if a.Start, err = parseDateTime("Start", w.Start); err != nil {
		return models.Record{}, err
	}
	if a.End, err = parseDateTime("End", w.End); err != nil {
		return models.Record{}, err
	}
	if !a.Start.IsZero() && !a.End.IsZero() && a.End.Before(a.Start) {
		return models.Record{}, parseError("End", w.End, errors.New("end before start"))
	}
	if a.AllDay, err = parseBool("AllDay", w.AllDay); err != nil {
		return models.Record{}, err
	}

	if w.Alarm != nil {
		a.Alarm.Type = models.AlarmType(w.Alarm.Type)
		switch a.Alarm.Type {
		case "", models.AlarmNone, models.AlarmVisible, models.AlarmAudible:
		default:
			return models.Record{}, parseError("Alarm@type", w.Alarm.Type, nil)
		}
		if a.Alarm.Minutes, err = parseInt("Alarm", w.Alarm.Minutes, 0, 1<<20); err != nil {
			return models.Record{}, err
		}
	}

	if w.Repeat != nil && top {
		if a.Repeat, a.Exceptions, err = d.repeat(*w.Repeat); err != nil {
			return models.Record{}, err
		}
	}

	record.Appointment = a
	return record, nil
}

func (d *decoder) repeat(w wireRepeat) (*models.Repeat, []models.Exception, error) {
	r := &models.Repeat{Type: models.RepeatType(strings.TrimSpace(w.Type))}
	if !r.Type.Valid() {
		return nil, nil, parseError("Repeat/Type", w.Type, nil)
	}

	var err error
	if r.Frequency, err = parseInt("Repeat/Frequency", w.Frequency, 1, 1<<16); err != nil {
		return nil, nil, err
	}
	if r.Until, err = parseDate("Repeat/Until", w.Until); err != nil {
		return nil, nil, err
	}
	if w.WeekMask != "" {
		mask, ok := models.ParseWeekMask(w.WeekMask)
		if !ok {
			return nil, nil, parseError("Repeat/WeekMask", w.WeekMask, nil)
		}
		r.WeekMask = mask
	}

	var exceptions []models.Exception
	seen := make(map[time.Time]struct{}, len(w.Exceptions))
	for _, we := range w.Exceptions {
		date, err := parseDate("Exception/OriginalDate", we.OriginalDate)
		if err != nil {
			return nil, nil, err
		}
		if date.IsZero() {
			return nil, nil, parseError("Exception/OriginalDate", "", nil)
		}
		if _, dup := seen[date]; dup {
			return nil, nil, parseError("Exception/OriginalDate", we.OriginalDate, errors.New("duplicate exception"))
		}
		seen[date] = struct{}{}

		exception := models.Exception{OriginalDate: date}
		if we.Replacement != nil {
			replacement, err := d.appointment(*we.Replacement, false)
			if err != nil {
				return nil, nil, err
			}
			exception.Replacement = &replacement
		}
		exceptions = append(exceptions, exception)
	}

	return r, exceptions, nil
}

func parseError(field, value string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s %q: %w", ErrRecordParse, field, value, cause)
	}
	return fmt.Errorf("%w: %s %q", ErrRecordParse, field, value)
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, parseError(field, s, err)
	}
	return t, nil
}

func parseDateTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, parseError(field, s, err)
	}
	return t.UTC(), nil
}

func parseInt(field, s string, lo, hi int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, parseError(field, s, err)
	}
	if n < lo || n > hi {
		return 0, parseError(field, s, fmt.Errorf("out of range %d..%d", lo, hi))
	}
	return n, nil
}

func parseBool(field, s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, parseError(field, s, nil)
	}
}
