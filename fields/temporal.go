package fields

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/jsonschema"
)

// ErrNotTemporal is returned by Date and DateTime dumps given a value that
// is not a date or time.
var ErrNotTemporal = errors.New("value is not a date or time")

// LocalDate is a calendar date without time or zone.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) LocalDate {
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// String renders the date as YYYY-MM-DD.
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// In returns midnight of d in loc.
func (d LocalDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

var (
	dateLayouts = []string{"2006-01-02", "20060102", "2006-01"}

	dateTimeLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04Z07:00",
		"2006-01-02 15:04",
	}

	dateFormatHint     = "YYYY-MM-DD, YYYYMMDD, YYYY-MM"
	dateTimeFormatHint = "YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]"
)

func parseLayouts(s string, layouts []string, loc *time.Location) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateField converts values to LocalDate.
type DateField struct {
	contracts.Base
}

// Date returns a date field. Load accepts date strings, datetime strings
// (truncated to their date), LocalDate and time.Time.
func Date(opts ...Option) *DateField {
	_, b := newBase("date", opts)
	return &DateField{Base: b}
}

func (f *DateField) Load(v any) (any, error) {
	return f.LoadWith(v, func(v any) (any, error) {
		switch t := v.(type) {
		case LocalDate:
			return t, nil
		case time.Time:
			return DateOf(t), nil
		case string:
			s := strings.TrimSpace(t)
			if tm, ok := parseLayouts(s, dateLayouts, time.UTC); ok {
				return DateOf(tm), nil
			}
			if tm, ok := parseLayouts(s, dateTimeLayouts, time.UTC); ok {
				return DateOf(tm), nil
			}
		}
		return nil, f.Fail(contracts.KindInvalid, "format", dateFormatHint)
	})
}

// Dump renders YYYY-MM-DD. time.Time values are truncated to their date.
func (f *DateField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) {
		switch t := v.(type) {
		case LocalDate:
			return t.String(), nil
		case time.Time:
			return DateOf(t).String(), nil
		}
		return nil, fmt.Errorf("dump date from %T: %w", v, ErrNotTemporal)
	})
}

func (f *DateField) Clone() contracts.Field { return &DateField{Base: f.CloneBase()} }

func (f *DateField) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Format: "date"}
}

// DateTimeField converts values to time.Time.
type DateTimeField struct {
	contracts.Base
	loc *time.Location
}

// DateTime returns a timestamp field. Naive inputs are placed in the
// DefaultTimezone, UTC when none is set. A bare LocalDate is rejected.
func DateTime(opts ...Option) *DateTimeField {
	s, b := newBase("datetime", opts)
	loc := s.timezone
	if loc == nil {
		loc = time.UTC
	}
	return &DateTimeField{Base: b, loc: loc}
}

func (f *DateTimeField) Load(v any) (any, error) {
	return f.LoadWith(v, func(v any) (any, error) {
		switch t := v.(type) {
		case LocalDate:
			return nil, f.Fail(contracts.KindDate)
		case time.Time:
			return t, nil
		case string:
			s := strings.TrimSpace(t)
			if tm, ok := parseLayouts(s, dateTimeLayouts, f.loc); ok {
				return tm, nil
			}
			if tm, ok := parseLayouts(s, dateLayouts[:1], f.loc); ok {
				return tm, nil
			}
		}
		return nil, f.Fail(contracts.KindInvalid, "format", dateTimeFormatHint)
	})
}

// Dump renders RFC 3339 with the offset spelled out.
func (f *DateTimeField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) {
		if t, ok := v.(time.Time); ok {
			return t.Format("2006-01-02T15:04:05.999999999-07:00"), nil
		}
		return nil, fmt.Errorf("dump datetime from %T: %w", v, ErrNotTemporal)
	})
}

func (f *DateTimeField) Clone() contracts.Field {
	return &DateTimeField{Base: f.CloneBase(), loc: f.loc}
}

func (f *DateTimeField) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Format: "date-time"}
}
