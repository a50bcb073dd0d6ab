package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/jsonschema"
	"github.com/reoring/contracts/validate"
)

// maxNumberDigits bounds the length of numeric strings accepted on load.
const maxNumberDigits = 4300

// errTooLong marks numeric strings over maxNumberDigits.
var errTooLong = fmt.Errorf("numeric string longer than %d characters", maxNumberDigits)

// IntegerField converts values to int.
type IntegerField struct {
	contracts.Base
	min, max any
}

// Integer returns an integer field. MinValue and MaxValue are inclusive.
func Integer(opts ...Option) *IntegerField {
	s, b := newBase("integer", opts)
	f := &IntegerField{Base: b, min: s.minValue, max: s.maxValue}
	if s.minValue != nil || s.maxValue != nil {
		f.AddValidator(validate.Range(s.minValue, s.maxValue, f.Messages()))
	}
	return f
}

func (f *IntegerField) Load(v any) (any, error) {
	return f.LoadWith(v, func(v any) (any, error) {
		n, err := ToInt(v)
		if errors.Is(err, errTooLong) {
			return nil, f.Fail(contracts.KindMaxStringLength)
		}
		if err != nil {
			return nil, f.Fail(contracts.KindInvalid)
		}
		return n, nil
	})
}

// Dump coerces without validation; coercion failures are returned raw.
func (f *IntegerField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) { return ToInt(v) })
}

func (f *IntegerField) Clone() contracts.Field {
	c := *f
	c.Base = f.CloneBase()
	return &c
}

func (f *IntegerField) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "integer"}
	s.Minimum, s.Maximum = bound(f.min), bound(f.max)
	return s
}

// FloatField converts values to float64.
type FloatField struct {
	contracts.Base
	min, max any
}

// Float returns a floating point field. MinValue and MaxValue are inclusive.
func Float(opts ...Option) *FloatField {
	s, b := newBase("float", opts)
	f := &FloatField{Base: b, min: s.minValue, max: s.maxValue}
	if s.minValue != nil || s.maxValue != nil {
		f.AddValidator(validate.Range(s.minValue, s.maxValue, f.Messages()))
	}
	return f
}

func (f *FloatField) Load(v any) (any, error) {
	return f.LoadWith(v, func(v any) (any, error) {
		n, err := ToFloat(v)
		if errors.Is(err, errTooLong) {
			return nil, f.Fail(contracts.KindMaxStringLength)
		}
		if err != nil {
			return nil, f.Fail(contracts.KindInvalid)
		}
		return n, nil
	})
}

// Dump coerces without validation; coercion failures are returned raw.
func (f *FloatField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) { return ToFloat(v) })
}

func (f *FloatField) Clone() contracts.Field {
	c := *f
	c.Base = f.CloneBase()
	return &c
}

func (f *FloatField) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "number"}
	s.Minimum, s.Maximum = bound(f.min), bound(f.max)
	return s
}

func bound(v any) *float64 {
	if v == nil {
		return nil
	}
	f, err := ToFloat(v)
	if err != nil {
		return nil
	}
	return &f
}

// ToInt coerces v to int. Floats are truncated toward zero, booleans map to
// 1 and 0, strings are trimmed and parsed in base 10.
func ToInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if n, err := strconv.Atoi(t.String()); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(t)
		if len(s) > maxNumberDigits {
			return 0, errTooLong
		}
		return strconv.Atoi(s)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt {
			return 0, fmt.Errorf("integer overflow: %d", u)
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		return floatToInt(rv.Float())
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("cannot convert %v to int", f)
	}
	return int(f), nil
}

// ToFloat coerces v to float64. Strings are trimmed and parsed.
func ToFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if len(s) > maxNumberDigits {
			return 0, errTooLong
		}
		return strconv.ParseFloat(s, 64)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}
