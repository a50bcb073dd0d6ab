package fields

import (
	"sync"

	"github.com/reoring/contracts"
)

// NestedField delegates the whole value to a child contract. The child's
// aggregated error is returned as is.
type NestedField struct {
	contracts.Base

	def     *contracts.Definition
	lazy    func() *contracts.Definition
	many    bool
	only    []string
	exclude []string

	once  sync.Once
	child *contracts.Contract
	err   error
}

// Nested returns a field holding one object, or a sequence of objects with
// Many(true), described by def.
func Nested(def *contracts.Definition, opts ...Option) *NestedField {
	if def == nil {
		panic(&contracts.ConfigError{Subject: "nested", Msg: "definition is required"})
	}
	return newNested(def, nil, opts)
}

// NestedLazy resolves the definition on first use. It allows a definition to
// refer to itself or to one declared later.
func NestedLazy(resolve func() *contracts.Definition, opts ...Option) *NestedField {
	if resolve == nil {
		panic(&contracts.ConfigError{Subject: "nested", Msg: "resolver is required"})
	}
	return newNested(nil, resolve, opts)
}

func newNested(def *contracts.Definition, lazy func() *contracts.Definition, opts []Option) *NestedField {
	s, b := newBase("nested", opts)
	return &NestedField{
		Base:    b,
		def:     def,
		lazy:    lazy,
		many:    s.many,
		only:    s.only,
		exclude: s.exclude,
	}
}

// Bind binds the field. Eager definitions build the child contract here so
// restriction errors surface at construction.
func (f *NestedField) Bind(name string, parent contracts.Parent) error {
	if err := f.Base.Bind(name, parent); err != nil {
		return err
	}
	if f.def != nil {
		_, err := f.Contract()
		return err
	}
	return nil
}

// Restrict narrows the child contract. Paths are relative to it.
func (f *NestedField) Restrict(only, exclude []string) error {
	if f.Bound() {
		return &contracts.ConfigError{Subject: "nested " + f.Name(), Msg: "cannot restrict a bound field"}
	}
	f.only = append(f.only, only...)
	f.exclude = append(f.exclude, exclude...)
	return nil
}

// Many reports whether the field holds a sequence.
func (f *NestedField) Many() bool { return f.many }

// Contract returns the child contract, building it on first use.
func (f *NestedField) Contract() (*contracts.Contract, error) {
	f.once.Do(func() {
		def := f.def
		if def == nil {
			def = f.lazy()
		}
		if def == nil {
			f.err = &contracts.ConfigError{Subject: "nested " + f.Name(), Msg: "resolver returned no definition"}
			return
		}
		child, err := contracts.New(def,
			contracts.WithMany(f.many),
			contracts.WithOnly(f.only...),
			contracts.WithExclude(f.exclude...))
		if err != nil {
			f.err = err
			return
		}
		if owner := f.Owner(); owner != nil {
			if err := child.Bind(f.Name(), owner); err != nil {
				f.err = err
				return
			}
		}
		f.child = child
	})
	return f.child, f.err
}

func (f *NestedField) Load(v any) (any, error) {
	return f.LoadWith(v, func(v any) (any, error) {
		c, err := f.Contract()
		if err != nil {
			return nil, err
		}
		return c.Load(v)
	})
}

func (f *NestedField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) {
		c, err := f.Contract()
		if err != nil {
			return nil, err
		}
		return c.Dump(v)
	})
}

func (f *NestedField) Clone() contracts.Field {
	return &NestedField{
		Base:    f.CloneBase(),
		def:     f.def,
		lazy:    f.lazy,
		many:    f.many,
		only:    append([]string(nil), f.only...),
		exclude: append([]string(nil), f.exclude...),
	}
}
