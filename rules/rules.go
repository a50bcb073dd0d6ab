// Package rules provides cross-field checks for a contract's PostValidate
// hook. Paths are JSON Pointers over the loaded value, e.g. "/items/0/sku".
package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/contracts"
)

// Rule checks a loaded value. It has the signature of a PostValidate hook.
type Rule = func(v any) error

// Op is a comparison used by If. Lt, Le, Gt and Ge only hold between numbers.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// fail builds a rule failure from the current message catalog.
func fail(kind string, kv ...any) *contracts.ValidationError {
	return contracts.DefaultMessages("rules").Fail("rules", kind, kv...)
}

// Conditional gates rules on the loaded value. Build one with If, IfAll or IfAny.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If holds when the value at path compares to want under op. An absent path
// never holds.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll holds when every cond holds.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny holds when at least one cond holds.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And is IfAll(c, others...).
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or is IfAny(c, others...).
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then returns a rule that runs rules only while c holds.
func (c Conditional) Then(rules ...Rule) Rule {
	all := All(rules...)
	return func(v any) error {
		if !evalConditional(v, c) {
			return nil
		}
		return all(v)
	}
}

// Present requires a non-nil value at path.
func Present(path string) Rule {
	p := normalizePath(path)
	return func(v any) error {
		if val, ok := valueAtPath(v, p); ok && val != nil {
			return nil
		}
		return errorAt(p, fail(contracts.KindRequired))
	}
}

// Equal requires the values at path and otherPath to be equal. Absent values
// are left to the fields' own required checks.
func Equal(path, otherPath string) Rule {
	p, o := normalizePath(path), normalizePath(otherPath)
	return func(v any) error {
		a, okA := valueAtPath(v, p)
		b, okB := valueAtPath(v, o)
		if !okA || !okB || reflect.DeepEqual(a, b) {
			return nil
		}
		return errorAt(p, fail("equal", "other", strings.TrimPrefix(o, "/")))
	}
}

// AtLeastOne rejects an empty list at collectionPath. Absent or non-list
// values pass.
func AtLeastOne(collectionPath string) Rule {
	p := normalizePath(collectionPath)
	return func(v any) error {
		val, ok := valueAtPath(v, p)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Len() == 0 {
				return errorAt(p, fail("at_least_one"))
			}
		default:
			// not a collection; the field reports type errors
		}
		return nil
	}
}

// UniqueBy reports every element of the list at collectionPath whose keyPath
// value repeats an earlier one. keyPath is relative to the element ("sku" or
// "/sku").
// Keys are compared by their text form, so mixed-type keys may collide.
func UniqueBy(collectionPath, keyPath string) Rule {
	cp := normalizePath(collectionPath)
	kp := strings.TrimPrefix(keyPath, "/")
	return func(v any) error {
		val, ok := valueAtPath(v, cp)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil
		}
		seen := map[string]int{}
		errs := contracts.NewContractError()
		for i := 0; i < rv.Len(); i++ {
			kv, ok := valueAtPathWithin(rv.Index(i).Interface(), kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			if _, dup := seen[key]; dup {
				errs.AddError(errorAt(cp+"/"+strconv.Itoa(i)+"/"+kp, fail("unique", "value", key)))
				continue
			}
			seen[key] = i
		}
		if errs.Len() == 0 {
			return nil
		}
		return errs
	}
}

// All executes every rule and merges their errors.
func All(rules ...Rule) Rule {
	return func(v any) error {
		errs := contracts.NewContractError()
		for _, r := range rules {
			if r == nil {
				continue
			}
			if err := r(v); err != nil {
				errs.AddError(err)
			}
		}
		if errs.Len() == 0 {
			return nil
		}
		return errs
	}
}

// Any succeeds if any rule passes. When all fail, the error of the branch
// with the fewest issues is returned.
func Any(rules ...Rule) Rule {
	return func(v any) error {
		var best error
		bestN := 0
		for _, r := range rules {
			if r == nil {
				continue
			}
			err := r(v)
			if err == nil {
				return nil
			}
			if n := len(contracts.IssuesOf(err)); best == nil || n < bestN {
				best, bestN = err, n
			}
		}
		return best
	}
}

// errorAt attributes ve to the field at pointer p. The root pointer leaves
// the error on the contract itself.
func errorAt(p string, ve *contracts.ValidationError) error {
	segs := splitPointer(p)
	switch len(segs) {
	case 0:
		return ve
	case 1:
		ve.FieldNames = []string{segs[0]}
		return ve
	}
	inner := contracts.NewContractError()
	inner.AddFieldError(segs[len(segs)-1], ve)
	for i := len(segs) - 2; i >= 1; i-- {
		outer := contracts.NewContractError()
		outer.AddFieldError(segs[i], inner)
		inner = outer
	}
	inner.FieldNames = []string{segs[0]}
	return inner
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func splitPointer(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = pointerUnescaper.Replace(s)
	}
	return segs
}

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

func evalConditional(v any, c Conditional) bool {
	// composite AND
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !evalConditional(v, it) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.any) > 0 {
		for _, it := range c.any {
			if evalConditional(v, it) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAtPath(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// valueAtPath navigates v (struct/map) by JSON Pointer.
func valueAtPath(v any, pointer string) (any, bool) {
	return valueAtPathWithin(v, strings.TrimPrefix(pointer, "/"))
}

func valueAtPathWithin(v any, rel string) (any, bool) {
	if rel == "" {
		return v, true
	}
	cur := reflect.ValueOf(v)
	for _, seg := range splitPointer(rel) {
		if cur.Kind() == reflect.Interface {
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		if cur.Kind() == reflect.Pointer {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		switch cur.Kind() {
		case reflect.Struct:
			found := false
			rt := cur.Type()
			for i := 0; i < rt.NumField(); i++ {
				sf := rt.Field(i)
				if sf.IsExported() && contracts.ResolveStructKey(sf) == seg {
					cur = cur.Field(i)
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	if cur.Kind() == reflect.Interface {
		cur = cur.Elem()
	}
	if !cur.IsValid() {
		return nil, true
	}
	if cur.Kind() == reflect.Pointer {
		if cur.IsNil() {
			return nil, true
		}
		cur = cur.Elem()
	}
	return cur.Interface(), true
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// compareOrdered compares numbers of any width as float64.
func compareOrdered(cur any, op Op, want any) bool {
	a, okA := number(reflect.ValueOf(cur))
	b, okB := number(reflect.ValueOf(want))
	if !okA || !okB {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
