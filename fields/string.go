package fields

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/jsonschema"
	"github.com/reoring/contracts/validate"
)

// StringField converts values to text.
type StringField struct {
	contracts.Base
	allowBlank bool
	trim       bool
	minLength  *int
	maxLength  *int
}

// String returns a text field. Surrounding whitespace is trimmed unless
// TrimWhitespace(false) is given; the empty string fails with "blank" unless
// AllowBlank(true) is given.
func String(opts ...Option) *StringField {
	s, b := newBase("string", opts)
	f := &StringField{
		Base:       b,
		allowBlank: s.allowBlank,
		trim:       s.trimWhitespace,
		minLength:  s.minLength,
		maxLength:  s.maxLength,
	}
	if s.minLength != nil || s.maxLength != nil {
		f.AddValidator(validate.Length(s.minLength, s.maxLength, f.Messages()))
	}
	return f
}

func (f *StringField) Load(v any) (any, error) { return f.LoadWith(v, f.load) }

func (f *StringField) load(v any) (any, error) {
	s, ok := text(v)
	if !ok {
		return nil, f.Fail(contracts.KindInvalid)
	}
	if f.trim {
		s = strings.TrimSpace(s)
	}
	if s == "" {
		switch {
		case f.allowBlank:
		case f.AllowsNone():
			return nil, nil
		default:
			return nil, f.Fail(contracts.KindBlank)
		}
	}
	return s, nil
}

func (f *StringField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) {
		if s, ok := text(v); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	})
}

func (f *StringField) Clone() contracts.Field {
	c := *f
	c.Base = f.CloneBase()
	return &c
}

func (f *StringField) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", MinLength: f.minLength, MaxLength: f.maxLength}
}

// text renders scalars as text. Composite values are not text.
func text(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case json.Number:
		return t.String(), true
	case fmt.Stringer:
		return t.String(), true
	}
	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
