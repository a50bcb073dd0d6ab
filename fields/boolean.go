package fields

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/jsonschema"
)

var (
	truthyText = map[string]bool{"true": true, "t": true, "1": true}
	falsyText  = map[string]bool{"false": true, "f": true, "0": true}
)

// BooleanField converts recognized tokens to bool.
type BooleanField struct {
	contracts.Base
}

// Boolean returns a boolean field. Load accepts bool, the numbers 1 and 0,
// and the strings true/false/t/f/1/0 in any case.
func Boolean(opts ...Option) *BooleanField {
	_, b := newBase("boolean", opts)
	return &BooleanField{Base: b}
}

func (f *BooleanField) Load(v any) (any, error) {
	return f.LoadWith(v, func(v any) (any, error) {
		if b, ok := token(v); ok {
			return b, nil
		}
		return nil, f.Fail(contracts.KindInvalid, "input", repr(v))
	})
}

// Dump is permissive: recognized tokens map to their value and any other
// scalar dumps its truthiness. Collections are an error.
func (f *BooleanField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) {
		if b, ok := token(v); ok {
			return b, nil
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map:
			return nil, fmt.Errorf("cannot dump %T as boolean", v)
		}
		return !rv.IsZero(), nil
	})
}

func (f *BooleanField) Clone() contracts.Field { return &BooleanField{Base: f.CloneBase()} }

func (f *BooleanField) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean"}
}

func token(v any) (value, ok bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		s := strings.ToLower(t)
		if truthyText[s] {
			return true, true
		}
		if falsyText[s] {
			return false, true
		}
		return false, false
	}
	if n, err := ToFloat(v); err == nil && isNumber(v) {
		switch n {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	_, ok := v.(json.Number)
	return ok
}

// repr renders a value for error messages: strings quoted, others as is.
func repr(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
