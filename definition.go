package contracts

import (
	"fmt"
	"strings"
)

// Hooks are the overridable steps of a contract pass. Nil hooks are skipped.
type Hooks struct {
	PreLoad      func(data any) (any, error)
	PostLoad     func(result, original any) (any, error)
	PreLoadMany  func(data any) (any, error)
	PostLoadMany func(result, original any) (any, error)
	PreDump      func(obj any) (any, error)
	PostDump     func(result, original any) (any, error)
	PreDumpMany  func(obj any) (any, error)
	PostDumpMany func(result, original any) (any, error)
	// PostValidate runs after every field loaded successfully. Flat errors are
	// reported under ContractKey unless they name fields.
	PostValidate func(result any) error
}

// merge overlays the non-nil hooks of o onto h.
func (h Hooks) merge(o Hooks) Hooks {
	pick := func(dst *func(any) (any, error), src func(any) (any, error)) {
		if src != nil {
			*dst = src
		}
	}
	pick2 := func(dst *func(any, any) (any, error), src func(any, any) (any, error)) {
		if src != nil {
			*dst = src
		}
	}
	pick(&h.PreLoad, o.PreLoad)
	pick2(&h.PostLoad, o.PostLoad)
	pick(&h.PreLoadMany, o.PreLoadMany)
	pick2(&h.PostLoadMany, o.PostLoadMany)
	pick(&h.PreDump, o.PreDump)
	pick2(&h.PostDump, o.PostDump)
	pick(&h.PreDumpMany, o.PreDumpMany)
	pick2(&h.PostDumpMany, o.PostDumpMany)
	if o.PostValidate != nil {
		h.PostValidate = o.PostValidate
	}
	return h
}

type namedField struct {
	name  string
	field Field
}

// Definition is an immutable, ordered set of field templates plus hooks and
// methods. Contracts clone the templates; a Definition is never bound.
type Definition struct {
	name    string
	fields  []namedField
	hooks   Hooks
	methods map[string]MethodFunc
}

// Name returns the definition's name.
func (d *Definition) Name() string { return d.name }

// FieldNames returns declared field names in order, inherited ones first.
func (d *Definition) FieldNames() []string {
	out := make([]string, len(d.fields))
	for i, nf := range d.fields {
		out[i] = nf.name
	}
	return out
}

// Field returns the unbound template declared under name.
func (d *Definition) Field(name string) (Field, bool) {
	for _, nf := range d.fields {
		if nf.name == name {
			return nf.field, true
		}
	}
	return nil, false
}

// Hooks returns the resolved hooks.
func (d *Definition) Hooks() Hooks { return d.hooks }

// Builder assembles a Definition. The first error sticks and is reported by
// Build.
type Builder struct {
	def *Definition
	err error
}

// Define starts a definition. Fields, hooks and methods of bases are inherited
// in order; later bases override earlier ones.
func Define(name string, bases ...*Definition) *Builder {
	b := &Builder{def: &Definition{name: name, methods: map[string]MethodFunc{}}}
	if strings.TrimSpace(name) == "" {
		b.err = configErrorf("", "definition name must not be empty")
		return b
	}
	for _, base := range bases {
		if base == nil {
			b.err = configErrorf(name, "nil base definition")
			return b
		}
		for _, nf := range base.fields {
			b.put(nf.name, nf.field)
		}
		b.def.hooks = b.def.hooks.merge(base.hooks)
		for k, fn := range base.methods {
			b.def.methods[k] = fn
		}
	}
	return b
}

func (b *Builder) put(name string, f Field) {
	for i := range b.def.fields {
		if b.def.fields[i].name == name {
			b.def.fields[i].field = f
			return
		}
	}
	b.def.fields = append(b.def.fields, namedField{name: name, field: f})
}

// Field declares a field. Redeclaring an inherited name replaces the field in
// its inherited position.
func (b *Builder) Field(name string, f Field) *Builder {
	if b.err != nil {
		return b
	}
	switch {
	case name == "":
		b.err = configErrorf(b.def.name, "field name must not be empty")
	case strings.HasPrefix(name, "_"):
		b.err = configErrorf(b.def.name, "field name %q: names starting with '_' are reserved", name)
	case f == nil:
		b.err = configErrorf(b.def.name, "field %q is nil", name)
	default:
		b.put(name, f)
	}
	return b
}

// Method registers a callable for Method fields.
func (b *Builder) Method(name string, fn MethodFunc) *Builder {
	if b.err != nil {
		return b
	}
	if fn == nil {
		b.err = configErrorf(b.def.name, "method %q is nil", name)
		return b
	}
	b.def.methods[name] = fn
	return b
}

// Hooks overlays the non-nil hooks in h.
func (b *Builder) Hooks(h Hooks) *Builder {
	b.def.hooks = b.def.hooks.merge(h)
	return b
}

func (b *Builder) PreLoad(fn func(data any) (any, error)) *Builder {
	return b.Hooks(Hooks{PreLoad: fn})
}

func (b *Builder) PostLoad(fn func(result, original any) (any, error)) *Builder {
	return b.Hooks(Hooks{PostLoad: fn})
}

func (b *Builder) PreLoadMany(fn func(data any) (any, error)) *Builder {
	return b.Hooks(Hooks{PreLoadMany: fn})
}

func (b *Builder) PostLoadMany(fn func(result, original any) (any, error)) *Builder {
	return b.Hooks(Hooks{PostLoadMany: fn})
}

func (b *Builder) PreDump(fn func(obj any) (any, error)) *Builder {
	return b.Hooks(Hooks{PreDump: fn})
}

func (b *Builder) PostDump(fn func(result, original any) (any, error)) *Builder {
	return b.Hooks(Hooks{PostDump: fn})
}

func (b *Builder) PreDumpMany(fn func(obj any) (any, error)) *Builder {
	return b.Hooks(Hooks{PreDumpMany: fn})
}

func (b *Builder) PostDumpMany(fn func(result, original any) (any, error)) *Builder {
	return b.Hooks(Hooks{PostDumpMany: fn})
}

func (b *Builder) PostValidate(fn func(result any) error) *Builder {
	return b.Hooks(Hooks{PostValidate: fn})
}

// Build returns the definition or the first configuration error.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	d := *b.def
	d.fields = append([]namedField(nil), b.def.fields...)
	d.methods = make(map[string]MethodFunc, len(b.def.methods))
	for k, v := range b.def.methods {
		d.methods[k] = v
	}
	return &d, nil
}

// MustBuild is Build that panics on error. Intended for package-level
// definitions.
func (b *Builder) MustBuild() *Definition {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Definition) String() string {
	return fmt.Sprintf("Definition(%s: %s)", d.name, strings.Join(d.FieldNames(), ", "))
}
