package contracts

import (
	"errors"
)

// Validator tests an already converted value. It returns nil on success,
// ErrInvalid for a plain "false" outcome, a *ValidationError to contribute
// messages, or a *ContractError to replace the field's whole error shape.
type Validator interface {
	Validate(v any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(v any) error

func (f ValidatorFunc) Validate(v any) error { return f(v) }

// MethodFunc is a named callable exposed by a contract to Method fields.
type MethodFunc func(v any) (any, error)

// Parent is the capability a field needs from its owner: contract-level
// settings and method lookup. Contracts implement it.
type Parent interface {
	// Partial reports whether required-field failures are suppressed.
	Partial() bool
	// Parent returns the enclosing parent, nil at the root.
	Parent() Parent
	// Method looks up a callable registered on the contract definition.
	Method(name string) (MethodFunc, bool)
}

// Field is the unit of conversion between external and internal values.
type Field interface {
	// Load converts an external value, validating it. v may be Missing.
	Load(v any) (any, error)
	// Dump converts an internal value for serialization without validation.
	Dump(v any) (any, error)
	// Bind assigns the field its name and owner. It happens once, before use.
	Bind(name string, parent Parent) error
	// Clone returns an unbound copy owning its own nested state.
	Clone() Field

	Name() string
	LoadKey() string
	DumpKey() string
	IsDumpOnly() bool
	IsLoadOnly() bool
	IsRequired() bool
}

// ObjectDumper is implemented by fields that compute their dumped value from
// the whole source object rather than from a key of it.
type ObjectDumper interface {
	DumpObject(obj any) (any, error)
}

// FieldOptions is the configuration shared by every field kind. Start from
// DefaultFieldOptions: the zero value means "default is nil".
type FieldOptions struct {
	DumpOnly bool
	LoadOnly bool
	// Required defaults to true unless a default is provided.
	Required *bool
	// Default is a literal, or a func() any producer invoked per use. Missing
	// means no default.
	Default any
	// AllowNone defaults to true only when Default is nil.
	AllowNone     *bool
	DumpTo        string
	LoadFrom      string
	ErrorMessages Messages
	Validators    []Validator
}

// DefaultFieldOptions returns options with no default value.
func DefaultFieldOptions() FieldOptions { return FieldOptions{Default: Missing} }

// Base implements the state machine shared by all field kinds. Kinds embed it
// and route Load/Dump through LoadWith/DumpWith.
type Base struct {
	kind       string
	dumpOnly   bool
	loadOnly   bool
	required   bool
	allowNone  bool
	def        any
	dumpTo     string
	loadFrom   string
	messages   Messages
	validators []Validator

	name   string
	parent Parent
	bound  bool
}

// NewBase resolves options against the kind's default messages.
func NewBase(kind string, defaults Messages, opts FieldOptions) (Base, error) {
	if opts.DumpOnly && opts.LoadOnly {
		return Base{}, configErrorf(kind, "dump_only and load_only are mutually exclusive")
	}
	b := Base{
		kind:       kind,
		dumpOnly:   opts.DumpOnly,
		loadOnly:   opts.LoadOnly,
		def:        opts.Default,
		dumpTo:     opts.DumpTo,
		loadFrom:   opts.LoadFrom,
		messages:   defaults.Merge(opts.ErrorMessages),
		validators: append([]Validator(nil), opts.Validators...),
	}
	if opts.Required != nil {
		b.required = *opts.Required
	} else {
		b.required = IsMissing(opts.Default)
	}
	if opts.AllowNone != nil {
		b.allowNone = *opts.AllowNone
	} else {
		b.allowNone = opts.Default == nil
	}
	return b, nil
}

// AddValidator appends a validator after the user-supplied ones.
func (b *Base) AddValidator(v Validator) { b.validators = append(b.validators, v) }

// CloneBase returns an unbound copy.
func (b *Base) CloneBase() Base {
	c := *b
	c.validators = append([]Validator(nil), b.validators...)
	c.name, c.parent, c.bound = "", nil, false
	return c
}

// Bind assigns name and owner. Empty names, nil owners and rebinding are
// configuration errors.
func (b *Base) Bind(name string, parent Parent) error {
	if name == "" {
		return configErrorf(b.kind, "field name must not be empty")
	}
	if parent == nil {
		return configErrorf(b.kind+" "+name, "parent must be a contract")
	}
	if b.bound {
		return configErrorf(b.kind+" "+name, "field is already bound to %q", b.name)
	}
	b.name, b.parent, b.bound = name, parent, true
	return nil
}

func (b *Base) Name() string            { return b.name }
func (b *Base) Kind() string            { return b.kind }
func (b *Base) Bound() bool             { return b.bound }
func (b *Base) Owner() Parent           { return b.parent }
func (b *Base) IsDumpOnly() bool        { return b.dumpOnly }
func (b *Base) IsLoadOnly() bool        { return b.loadOnly }
func (b *Base) IsRequired() bool        { return b.required }
func (b *Base) AllowsNone() bool        { return b.allowNone }
func (b *Base) Messages() Messages      { return b.messages }
func (b *Base) HasDefault() bool        { return !IsMissing(b.def) }
func (b *Base) Validators() []Validator { return b.validators }

// LoadKey is the external key read on load: load_from, else the name.
func (b *Base) LoadKey() string {
	if b.loadFrom != "" {
		return b.loadFrom
	}
	return b.name
}

// DumpKey is the external key written on dump: dump_to, else the name.
func (b *Base) DumpKey() string {
	if b.dumpTo != "" {
		return b.dumpTo
	}
	return b.name
}

// Root walks the owner chain to the top-level contract. Unowned fields return
// nil. The walk is recomputed per call so nothing is cached across callers.
func (b *Base) Root() Parent {
	p := b.parent
	if p == nil {
		return nil
	}
	for next := p.Parent(); next != nil; next = next.Parent() {
		p = next
	}
	return p
}

// GetDefault returns the default value, invoking a producer if configured.
func (b *Base) GetDefault() any {
	if fn, ok := b.def.(func() any); ok {
		return fn()
	}
	return b.def
}

// DefaultLiteral returns the default when it is a plain value rather than
// Missing or a producer.
func (b *Base) DefaultLiteral() (any, bool) {
	if IsMissing(b.def) {
		return nil, false
	}
	if _, producer := b.def.(func() any); producer {
		return nil, false
	}
	return b.def, true
}

// Fail builds the error for kind with template parameters given as
// key/value pairs. An unknown kind panics with a ConfigError.
func (b *Base) Fail(kind string, kv ...any) error {
	return b.messages.Fail(b.kind, kind, kv...)
}

// LoadWith runs the load state machine with convert as the type-specific step
// and the field's validators as the validation step.
func (b *Base) LoadWith(v any, convert func(any) (any, error)) (any, error) {
	return b.LoadValidated(v, convert, b.RunValidators)
}

// LoadValidated is LoadWith with a custom validation step.
func (b *Base) LoadValidated(v any, convert func(any) (any, error), validate func(any) error) (any, error) {
	if IsMissing(v) {
		if root := b.Root(); root != nil && root.Partial() {
			return Missing, nil
		}
		if b.required {
			return nil, b.Fail(KindRequired)
		}
		return b.GetDefault(), nil
	}
	if v == nil {
		if b.allowNone {
			return nil, nil
		}
		return nil, b.Fail(KindNull)
	}
	out, err := convert(v)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DumpWith runs the dump state machine: Missing dumps the default, nil dumps
// nil, anything else goes through convert. Validators never run on dump.
func (b *Base) DumpWith(v any, convert func(any) (any, error)) (any, error) {
	if IsMissing(v) {
		return b.GetDefault(), nil
	}
	if v == nil {
		return nil, nil
	}
	return convert(v)
}

// RunValidators runs every validator in order and aggregates their failures
// into one error. A mapping-shaped failure is returned alone, immediately.
func (b *Base) RunValidators(v any) error {
	if len(b.validators) == 0 {
		return nil
	}
	var agg *ValidationError
	for _, val := range b.validators {
		err := val.Validate(v)
		if err == nil {
			continue
		}
		var ce *ContractError
		if errors.As(err, &ce) {
			return ce
		}
		var ve *ValidationError
		switch {
		case errors.Is(err, ErrInvalid):
			ve = b.messages.Fail(b.kind, KindValidatorFailed)
		case errors.As(err, &ve):
		default:
			ve = NewValidationError(err.Error())
		}
		if agg == nil {
			agg = &ValidationError{}
		}
		agg.append(ve)
	}
	if agg == nil {
		return nil
	}
	return agg
}
