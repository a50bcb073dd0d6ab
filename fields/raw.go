package fields

import (
	"github.com/reoring/contracts"
	"github.com/reoring/contracts/jsonschema"
)

// RawField passes values through unchanged in both directions. Only the
// shared state machine and validators apply.
type RawField struct {
	contracts.Base
}

// Raw returns a field that performs no conversion.
func Raw(opts ...Option) *RawField {
	_, b := newBase("raw", opts)
	return &RawField{Base: b}
}

func identity(v any) (any, error) { return v, nil }

func (f *RawField) Load(v any) (any, error) { return f.LoadWith(v, identity) }

func (f *RawField) Dump(v any) (any, error) { return f.DumpWith(v, identity) }

func (f *RawField) Clone() contracts.Field { return &RawField{Base: f.CloneBase()} }

func (f *RawField) JSONSchema() *jsonschema.Schema { return &jsonschema.Schema{} }
