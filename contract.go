package contracts

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
)

const kindContract = "contract"

// Option configures a Contract instance.
type Option func(*config)

type config struct {
	many      bool
	partial   bool
	only      []string
	exclude   []string
	fieldOpts FieldOptions
	writer    WriterFactory
	logger    *slog.Logger
}

// WithMany makes the contract operate over a sequence of items.
func WithMany(many bool) Option { return func(c *config) { c.many = many } }

// WithPartial suppresses required-field failures anywhere under the contract.
func WithPartial(partial bool) Option { return func(c *config) { c.partial = partial } }

// WithOnly restricts the contract to the given field paths. A dotted path
// ("address.city") keeps the outer field and restricts inside it. An empty
// list means no restriction.
func WithOnly(paths ...string) Option {
	return func(c *config) { c.only = append([]string(nil), paths...) }
}

// WithExclude removes the given field paths. A dotted path excludes inside a
// nested contract and keeps the outer field.
func WithExclude(paths ...string) Option {
	return func(c *config) { c.exclude = append([]string(nil), paths...) }
}

// WithFieldOptions configures the contract's own field behavior when it is
// used as a nested field or loaded from Missing/nil.
func WithFieldOptions(opts FieldOptions) Option { return func(c *config) { c.fieldOpts = opts } }

// WithWriter replaces the output container built by load and dump.
func WithWriter(w WriterFactory) Option {
	return func(c *config) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Restricter is implemented by fields that own a nested contract and accept
// only/exclude paths scoped to it.
type Restricter interface {
	Restrict(only, exclude []string) error
}

// Contract is a bound instance of a Definition. It loads and dumps values and
// is itself a Field, so contracts nest.
type Contract struct {
	Base

	def  *Definition
	opts []Option
	cfg  config

	fields     []Field
	loadFields []Field
	dumpFields []Field
}

// New builds a contract instance from def. Every field template is cloned and
// bound to the new instance.
func New(def *Definition, opts ...Option) (*Contract, error) {
	if def == nil {
		return nil, configErrorf("", "nil definition")
	}
	cfg := config{
		fieldOpts: DefaultFieldOptions(),
		writer:    NewMapWriter,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	base, err := NewBase(kindContract, DefaultMessages(kindContract), cfg.fieldOpts)
	if err != nil {
		return nil, err
	}
	c := &Contract{Base: base, def: def, opts: append([]Option(nil), opts...), cfg: cfg}
	if err := c.init(); err != nil {
		return nil, err
	}
	c.cfg.logger.Debug("contract constructed",
		slog.String("contract", def.name),
		slog.Int("fields", len(c.fields)),
		slog.Bool("many", cfg.many),
		slog.Bool("partial", cfg.partial))
	return c, nil
}

// MustNew is New that panics on configuration errors.
func MustNew(def *Definition, opts ...Option) *Contract {
	c, err := New(def, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// splitPaths separates top-level names from dotted paths keyed by their head.
func splitPaths(paths []string) (top map[string]bool, sub map[string][]string) {
	top, sub = map[string]bool{}, map[string][]string{}
	for _, p := range paths {
		head, rest, dotted := strings.Cut(p, ".")
		if dotted {
			sub[head] = append(sub[head], rest)
			continue
		}
		top[head] = true
	}
	return top, sub
}

func (c *Contract) init() error {
	onlyTop, onlySub := splitPaths(c.cfg.only)
	exclTop, exclSub := splitPaths(c.cfg.exclude)
	for _, set := range []map[string]bool{onlyTop, exclTop} {
		for name := range set {
			if _, ok := c.def.Field(name); !ok {
				return configErrorf(c.def.name, "unknown field %q in only/exclude", name)
			}
		}
	}
	for _, set := range []map[string][]string{onlySub, exclSub} {
		for name := range set {
			if _, ok := c.def.Field(name); !ok {
				return configErrorf(c.def.name, "unknown field %q in only/exclude", name)
			}
		}
	}

	var all, load, dump []Field
	restricted := len(c.cfg.only) > 0
	for _, nf := range c.def.fields {
		_, hasSub := onlySub[nf.name]
		if restricted && !onlyTop[nf.name] && !hasSub {
			continue
		}
		if exclTop[nf.name] {
			continue
		}
		f := nf.field.Clone()
		if so, se := onlySub[nf.name], exclSub[nf.name]; len(so) > 0 || len(se) > 0 {
			r, ok := f.(Restricter)
			if !ok {
				return configErrorf(c.def.name, "field %q has no nested fields to restrict", nf.name)
			}
			if err := r.Restrict(so, se); err != nil {
				return err
			}
		}
		if err := f.Bind(nf.name, c); err != nil {
			return err
		}
		all = append(all, f)
		if !f.IsDumpOnly() {
			load = append(load, f)
		}
		if !f.IsLoadOnly() {
			dump = append(dump, f)
		}
	}
	c.fields, c.loadFields, c.dumpFields = all, load, dump
	return nil
}

// Restrict narrows the field set with scoped only/exclude paths. It must be
// called before the contract is bound.
func (c *Contract) Restrict(only, exclude []string) error {
	if c.Bound() {
		return configErrorf(c.def.name, "cannot restrict a bound contract")
	}
	var extra []Option
	if len(only) > 0 {
		extra = append(extra, WithOnly(only...))
	}
	if len(exclude) > 0 {
		extra = append(extra, WithExclude(append(append([]string(nil), c.cfg.exclude...), exclude...)...))
	}
	prev := c.cfg
	for _, o := range extra {
		o(&c.cfg)
	}
	if err := c.init(); err != nil {
		c.cfg = prev
		return err
	}
	c.opts = append(c.opts, extra...)
	return nil
}

// Definition returns the definition the contract was built from.
func (c *Contract) Definition() *Definition { return c.def }

// Fields returns the active bound fields in declaration order.
func (c *Contract) Fields() []Field { return append([]Field(nil), c.fields...) }

// Lookup returns the active field declared under name.
func (c *Contract) Lookup(name string) (Field, bool) {
	for _, f := range c.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// LoadFieldNames returns the names of fields that participate in load.
func (c *Contract) LoadFieldNames() []string { return names(c.loadFields) }

// DumpFieldNames returns the names of fields that participate in dump.
func (c *Contract) DumpFieldNames() []string { return names(c.dumpFields) }

func names(fs []Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name()
	}
	return out
}

// Many reports whether the contract operates over sequences.
func (c *Contract) Many() bool { return c.cfg.many }

// Partial implements Parent.
func (c *Contract) Partial() bool { return c.cfg.partial }

// Parent implements Parent: the contract this one is nested in, if any.
func (c *Contract) Parent() Parent { return c.Owner() }

// Method implements Parent.
func (c *Contract) Method(name string) (MethodFunc, bool) {
	fn, ok := c.def.methods[name]
	return fn, ok
}

// Clone returns a fresh, unbound instance with the same options.
func (c *Contract) Clone() Field {
	n, err := New(c.def, c.opts...)
	if err != nil {
		// the same options already built c
		panic(err)
	}
	return n
}

// Load converts external data into the internal representation, aggregating
// every field failure into one *ContractError.
func (c *Contract) Load(data any) (any, error) {
	out, err := c.LoadValidated(data, c.convertLoad, c.validate)
	if err != nil {
		if IsValidationError(err) {
			c.cfg.logger.Debug("contract load failed",
				slog.String("contract", c.def.name),
				slog.Int("issues", len(IssuesOf(err))))
		}
		return nil, err
	}
	return out, nil
}

// convertLoad ends with the post-load hook, so validation sees its result.
func (c *Contract) convertLoad(data any) (any, error) {
	if c.cfg.many {
		return c.loadMany(data)
	}
	out, err := c.loadSingle(data)
	if err != nil {
		return nil, err
	}
	return c.postLoad(out, data)
}

// loadSingle reads one mapping through the load fields. A Reader supplied by
// the host is accepted as a mapping.
func (c *Contract) loadSingle(data any) (any, error) {
	if _, ok := data.(Reader); !ok && !isMapping(data) {
		return nil, c.Fail(KindInvalid, "datatype", fmt.Sprintf("%T", data))
	}
	if h := c.def.hooks.PreLoad; h != nil {
		d, err := h(data)
		if err != nil {
			return nil, asContractError(err)
		}
		data = d
	}
	r, err := ReaderFor(data)
	if err != nil {
		return nil, err
	}
	w := c.cfg.writer()
	errs := NewContractError()
	for _, f := range c.loadFields {
		v, err := f.Load(r.Read(f.LoadKey()))
		if err != nil {
			if !IsValidationError(err) {
				return nil, err
			}
			errs.AddFieldError(f.Name(), err)
			continue
		}
		if !IsMissing(v) {
			w.Write(f.Name(), v)
		}
	}
	if errs.Len() > 0 {
		return nil, errs
	}
	return w.Data(), nil
}

func (c *Contract) postLoad(out, original any) (any, error) {
	h := c.def.hooks.PostLoad
	if h == nil {
		return out, nil
	}
	res, err := h(out, original)
	if err != nil {
		return nil, asContractError(err)
	}
	return res, nil
}

func (c *Contract) loadMany(data any) (any, error) {
	original := data
	if h := c.def.hooks.PreLoadMany; h != nil {
		d, err := h(data)
		if err != nil {
			return nil, asContractError(err)
		}
		data = d
	}
	items, ok := sequence(data)
	if !ok {
		return nil, c.Fail(KindNotAList, "input_type", fmt.Sprintf("%T", data))
	}
	out := make([]any, 0, len(items))
	errs := NewContractError()
	for i, item := range items {
		v, err := c.loadItem(item)
		if err != nil {
			if !IsValidationError(err) {
				return nil, err
			}
			errs.AddFieldError(strconv.Itoa(i), err)
			continue
		}
		out = append(out, v)
	}
	if errs.Len() > 0 {
		return nil, errs
	}
	if h := c.def.hooks.PostLoadMany; h != nil {
		res, err := h(out, original)
		if err != nil {
			return nil, asContractError(err)
		}
		return res, nil
	}
	return out, nil
}

// loadItem loads one element in many mode. Each element gets its own
// post-load and post-validate pass so hook errors are keyed by index.
func (c *Contract) loadItem(item any) (any, error) {
	out, err := c.loadSingle(item)
	if err != nil {
		return nil, err
	}
	if out, err = c.postLoad(out, item); err != nil {
		return nil, err
	}
	if err := c.postValidate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// validate is the contract's validation step: its own validators plus the
// post-validate hook, merged into one mapping-shaped error.
func (c *Contract) validate(out any) error {
	errs := NewContractError()
	if err := c.RunValidators(out); err != nil {
		errs.AddError(err)
	}
	if !c.cfg.many {
		if err := c.postValidate(out); err != nil {
			errs.AddError(err)
		}
	}
	if errs.Len() == 0 {
		return nil
	}
	return errs
}

func (c *Contract) postValidate(out any) error {
	h := c.def.hooks.PostValidate
	if h == nil {
		return nil
	}
	err := h(out)
	if err == nil {
		return nil
	}
	errs := NewContractError()
	errs.AddError(err)
	return errs
}

// asContractError shapes a hook's validation error as an aggregate. Other
// errors pass through untouched.
func asContractError(err error) error {
	if !IsValidationError(err) {
		return err
	}
	if ce, ok := err.(*ContractError); ok && len(ce.FieldNames) == 0 {
		return ce
	}
	errs := NewContractError()
	errs.AddError(err)
	return errs
}

// Dump converts internal data for serialization. Nothing is validated and the
// first failure is returned as is.
func (c *Contract) Dump(obj any) (any, error) {
	return c.DumpWith(obj, c.convertDump)
}

func (c *Contract) convertDump(obj any) (any, error) {
	if c.cfg.many {
		return c.dumpMany(obj)
	}
	return c.dumpSingle(obj)
}

func (c *Contract) dumpSingle(obj any) (any, error) {
	original := obj
	if h := c.def.hooks.PreDump; h != nil {
		o, err := h(obj)
		if err != nil {
			return nil, err
		}
		obj = o
	}
	r, err := ReaderFor(obj)
	if err != nil {
		return nil, err
	}
	w := c.cfg.writer()
	for _, f := range c.dumpFields {
		var v any
		if od, ok := f.(ObjectDumper); ok {
			v, err = od.DumpObject(obj)
		} else {
			v, err = f.Dump(r.Read(f.Name()))
		}
		if err != nil {
			return nil, fmt.Errorf("dump %s.%s: %w", c.def.name, f.Name(), err)
		}
		if !IsMissing(v) {
			w.Write(f.DumpKey(), v)
		}
	}
	out := w.Data()
	if h := c.def.hooks.PostDump; h != nil {
		return h(out, original)
	}
	return out, nil
}

func (c *Contract) dumpMany(obj any) (any, error) {
	original := obj
	if h := c.def.hooks.PreDumpMany; h != nil {
		o, err := h(obj)
		if err != nil {
			return nil, err
		}
		obj = o
	}
	items, ok := sequence(obj)
	if !ok {
		return nil, fmt.Errorf("dump %s: expected a sequence, got %T", c.def.name, obj)
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := c.dumpSingle(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if h := c.def.hooks.PostDumpMany; h != nil {
		return h(out, original)
	}
	return out, nil
}

// sequence returns the elements of a slice or array. Strings, byte slices and
// mappings are not sequences of items.
func sequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

// Sequence exposes the sequence check used by many-mode and list fields.
func Sequence(v any) ([]any, bool) { return sequence(v) }
