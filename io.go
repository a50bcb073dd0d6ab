package contracts

import (
	"fmt"
	"reflect"
)

// Reader reads external keys out of an object. Absent keys read as Missing.
type Reader interface {
	Read(key string) any
}

// Writer accumulates a contract's output one key at a time.
type Writer interface {
	Write(key string, v any)
	Data() any
}

// WriterFactory creates a fresh Writer per load or dump call.
type WriterFactory func() Writer

// MapReader reads from a map[string]any.
type MapReader map[string]any

func (r MapReader) Read(key string) any {
	if v, ok := r[key]; ok {
		return v
	}
	return Missing
}

// reflectMapReader reads from any map whose keys are strings.
type reflectMapReader struct{ rv reflect.Value }

func (r reflectMapReader) Read(key string) any {
	v := r.rv.MapIndex(reflect.ValueOf(key).Convert(r.rv.Type().Key()))
	if !v.IsValid() {
		return Missing
	}
	return v.Interface()
}

// StructReader reads exported struct fields by their resolved key. Pointer
// fields read as their target, nil pointers as nil.
type StructReader struct{ rv reflect.Value }

// NewStructReader wraps a struct or pointer to struct.
func NewStructReader(obj any) (*StructReader, bool) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	return &StructReader{rv: rv}, true
}

func (r *StructReader) Read(key string) any {
	idx, ok := keysOf(r.rv.Type())[key]
	if !ok {
		return Missing
	}
	fv := r.rv.FieldByIndex(idx)
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	return fv.Interface()
}

// ReaderFor picks a Reader for obj: maps with string keys and structs are
// supported.
func ReaderFor(obj any) (Reader, error) {
	switch t := obj.(type) {
	case map[string]any:
		return MapReader(t), nil
	case MapReader:
		return t, nil
	case Reader:
		return t, nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return reflectMapReader{rv: rv}, nil
	}
	if sr, ok := NewStructReader(obj); ok {
		return sr, nil
	}
	return nil, fmt.Errorf("contracts: cannot read fields from %T", obj)
}

// isMapping reports whether v is a mapping with string keys.
func isMapping(v any) bool {
	if _, ok := v.(map[string]any); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// MapWriter collects output into a map[string]any.
type MapWriter map[string]any

// NewMapWriter is the default WriterFactory.
func NewMapWriter() Writer { return MapWriter{} }

func (w MapWriter) Write(key string, v any) { w[key] = v }

func (w MapWriter) Data() any { return map[string]any(w) }
