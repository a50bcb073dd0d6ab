package fields

import (
	"github.com/reoring/contracts"
)

// FunctionField computes values with caller-supplied functions. On dump the
// function receives the whole object being dumped; on load it receives the
// value under the field's key. A nil function makes that direction
// contribute nothing.
type FunctionField struct {
	contracts.Base
	dump func(obj any) (any, error)
	load func(v any) (any, error)
}

// Function returns a function-backed field. At least one of dump and load
// must be set.
func Function(dump func(obj any) (any, error), load func(v any) (any, error), opts ...Option) *FunctionField {
	if dump == nil && load == nil {
		panic(&contracts.ConfigError{Subject: "function", Msg: "at least one of dump and load is required"})
	}
	_, b := newBase("function", opts)
	return &FunctionField{Base: b, dump: dump, load: load}
}

func (f *FunctionField) Load(v any) (any, error) {
	if f.load == nil {
		return contracts.Missing, nil
	}
	return f.LoadWith(v, f.load)
}

func (f *FunctionField) Dump(v any) (any, error) {
	if f.dump == nil {
		return contracts.Missing, nil
	}
	return f.DumpWith(v, f.dump)
}

// DumpObject implements contracts.ObjectDumper.
func (f *FunctionField) DumpObject(obj any) (any, error) { return f.Dump(obj) }

func (f *FunctionField) Clone() contracts.Field {
	return &FunctionField{Base: f.CloneBase(), dump: f.dump, load: f.load}
}

// MethodField is a FunctionField whose functions are looked up by name on
// the owning contract's definition when the field is bound.
type MethodField struct {
	contracts.Base
	dumpName string
	loadName string
	dump     contracts.MethodFunc
	load     contracts.MethodFunc
}

// Method returns a method-backed field. Empty names disable a direction; at
// least one must be set.
func Method(dumpName, loadName string, opts ...Option) *MethodField {
	if dumpName == "" && loadName == "" {
		panic(&contracts.ConfigError{Subject: "method", Msg: "at least one of dump and load method names is required"})
	}
	_, b := newBase("method", opts)
	return &MethodField{Base: b, dumpName: dumpName, loadName: loadName}
}

// Bind resolves the method names against parent. A missing method is a
// configuration error.
func (f *MethodField) Bind(name string, parent contracts.Parent) error {
	if err := f.Base.Bind(name, parent); err != nil {
		return err
	}
	resolve := func(method string) (contracts.MethodFunc, error) {
		if method == "" {
			return nil, nil
		}
		fn, ok := parent.Method(method)
		if !ok || fn == nil {
			return nil, &contracts.ConfigError{Subject: "method " + name, Msg: "contract has no method " + method}
		}
		return fn, nil
	}
	var err error
	if f.dump, err = resolve(f.dumpName); err != nil {
		return err
	}
	f.load, err = resolve(f.loadName)
	return err
}

func (f *MethodField) Load(v any) (any, error) {
	if f.loadName == "" {
		return contracts.Missing, nil
	}
	f.mustBeBound()
	return f.LoadWith(v, f.load)
}

func (f *MethodField) Dump(v any) (any, error) {
	if f.dumpName == "" {
		return contracts.Missing, nil
	}
	f.mustBeBound()
	return f.DumpWith(v, f.dump)
}

func (f *MethodField) mustBeBound() {
	if !f.Bound() {
		panic(&contracts.ConfigError{Subject: "method", Msg: "field used before it was bound to a contract"})
	}
}

// DumpObject implements contracts.ObjectDumper.
func (f *MethodField) DumpObject(obj any) (any, error) { return f.Dump(obj) }

func (f *MethodField) Clone() contracts.Field {
	return &MethodField{Base: f.CloneBase(), dumpName: f.dumpName, loadName: f.loadName}
}
