// Package validate provides reusable validators for field values.
package validate

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"unicode/utf8"

	"github.com/reoring/contracts"
)

// Range checks that a numeric value lies within inclusive bounds. A nil bound
// is open. msgs must carry the min_value and max_value templates.
func Range(min, max any, msgs contracts.Messages) contracts.Validator {
	lo, hasLo := toFloat(min)
	hi, hasHi := toFloat(max)
	return contracts.ValidatorFunc(func(v any) error {
		f, ok := toFloat(v)
		if !ok {
			return nil
		}
		if hasLo && f < lo {
			return msgs.Fail("range", contracts.KindMinValue, "min_value", min)
		}
		if hasHi && f > hi {
			return msgs.Fail("range", contracts.KindMaxValue, "max_value", max)
		}
		return nil
	})
}

// Length checks the length of strings (in runes), slices, arrays and maps.
// A nil bound is open. msgs must carry the min_length and max_length
// templates.
func Length(min, max *int, msgs contracts.Messages) contracts.Validator {
	return contracts.ValidatorFunc(func(v any) error {
		n, ok := length(v)
		if !ok {
			return nil
		}
		if min != nil && n < *min {
			return msgs.Fail("length", contracts.KindMinLength, "min_length", *min)
		}
		if max != nil && n > *max {
			return msgs.Fail("length", contracts.KindMaxLength, "max_length", *max)
		}
		return nil
	})
}

// OneOf accepts only the listed values. Values of different types never
// match.
func OneOf(choices ...any) contracts.Validator {
	msgs := contracts.DefaultMessages("validate")
	return contracts.ValidatorFunc(func(v any) error {
		for _, c := range choices {
			if reflect.DeepEqual(c, v) {
				return nil
			}
		}
		return msgs.Fail("one_of", contracts.KindChoice, "input", fmt.Sprintf("%#v", v))
	})
}

// Predicate turns a boolean test into a validator failing with
// validator_failed.
func Predicate(fn func(v any) bool) contracts.Validator {
	return contracts.ValidatorFunc(func(v any) error {
		if fn(v) {
			return nil
		}
		return contracts.ErrInvalid
	})
}

func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()
		return f, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
