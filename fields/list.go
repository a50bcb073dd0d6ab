package fields

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/jsonschema"
	"github.com/reoring/contracts/validate"
)

// ListField converts each element of a sequence through a child field.
type ListField struct {
	contracts.Base
	child      contracts.Field
	allowEmpty bool
	minLength  *int
	maxLength  *int
}

// List returns a list field over child. The child is cloned, so one template
// can serve many lists.
func List(child contracts.Field, opts ...Option) *ListField {
	if child == nil {
		panic(&contracts.ConfigError{Subject: "list", Msg: "child field is required"})
	}
	s, b := newBase("list", opts)
	f := &ListField{
		Base:       b,
		child:      child.Clone(),
		allowEmpty: s.allowEmpty,
		minLength:  s.minLength,
		maxLength:  s.maxLength,
	}
	if s.minLength != nil || s.maxLength != nil {
		f.AddValidator(validate.Length(s.minLength, s.maxLength, f.Messages()))
	}
	return f
}

// Child returns the element field.
func (f *ListField) Child() contracts.Field { return f.child }

// Bind binds the list and its child under the same name and owner.
func (f *ListField) Bind(name string, parent contracts.Parent) error {
	if err := f.Base.Bind(name, parent); err != nil {
		return err
	}
	return f.child.Bind(name, parent)
}

func (f *ListField) Load(v any) (any, error) { return f.LoadWith(v, f.load) }

func (f *ListField) load(v any) (any, error) {
	if _, isText := v.(string); isText || isMap(v) {
		return nil, f.Fail(contracts.KindNotAList, "input_type", fmt.Sprintf("%T", v))
	}
	items, ok := contracts.Sequence(v)
	if !ok {
		return nil, f.Fail(contracts.KindNotAList, "input_type", fmt.Sprintf("%T", v))
	}
	out := make([]any, 0, len(items))
	errs := contracts.NewContractError()
	for i, item := range items {
		lv, err := f.child.Load(item)
		if err != nil {
			if !contracts.IsValidationError(err) {
				return nil, err
			}
			errs.AddFieldError(strconv.Itoa(i), err)
			continue
		}
		out = append(out, lv)
	}
	if errs.Len() > 0 {
		return nil, errs
	}
	if len(out) == 0 && !f.allowEmpty {
		return nil, f.Fail(contracts.KindEmpty)
	}
	return out, nil
}

// Dump maps the child's dump over the elements. A map of element to count is
// expanded into repeated elements in key order.
func (f *ListField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) {
		items, err := dumpItems(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			dv, err := f.child.Dump(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = dv
		}
		return out, nil
	})
}

func dumpItems(v any) ([]any, error) {
	if items, ok := contracts.Sequence(v); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("cannot dump %T as a list", v)
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	var out []any
	for _, k := range keys {
		n, err := ToInt(rv.MapIndex(k).Interface())
		if err != nil {
			return nil, fmt.Errorf("count for %v: %w", k.Interface(), err)
		}
		for range n {
			out = append(out, k.Interface())
		}
	}
	return out, nil
}

func isMap(v any) bool { return reflect.ValueOf(v).Kind() == reflect.Map }

func (f *ListField) Clone() contracts.Field {
	c := *f
	c.Base = f.CloneBase()
	c.child = f.child.Clone()
	return &c
}

// JSONSchema describes the array; items are filled in by the contract
// projection from Child.
func (f *ListField) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "array", MinItems: f.minLength, MaxItems: f.maxLength}
	if !f.allowEmpty && (s.MinItems == nil || *s.MinItems < 1) {
		s.MinItems = jsonschema.Int(1)
	}
	return s
}
