// Package fields provides the concrete field kinds: Raw, String, Integer,
// Float, Boolean, Date, DateTime, UUID, List, Nested, Function and Method.
//
// Constructors take functional options and panic with *contracts.ConfigError
// when the options are contradictory, so a bad declaration fails at package
// init rather than on the first load.
package fields

import (
	"time"

	"github.com/reoring/contracts"
)

// Option configures a field.
type Option func(*settings)

type settings struct {
	contracts.FieldOptions

	minValue       any
	maxValue       any
	minLength      *int
	maxLength      *int
	allowBlank     bool
	trimWhitespace bool
	allowEmpty     bool
	dumpFormat     string
	timezone       *time.Location

	many    bool
	only    []string
	exclude []string
}

func newSettings(opts []Option) settings {
	s := settings{
		FieldOptions:   contracts.DefaultFieldOptions(),
		trimWhitespace: true,
		allowEmpty:     true,
		dumpFormat:     FormatHexVerbose,
	}
	for _, o := range opts {
		if o != nil {
			o(&s)
		}
	}
	return s
}

// newBase resolves options for a kind, panicking on configuration errors.
func newBase(kind string, opts []Option) (settings, contracts.Base) {
	s := newSettings(opts)
	b, err := contracts.NewBase(kind, contracts.DefaultMessages(kind), s.FieldOptions)
	if err != nil {
		panic(err)
	}
	return s, b
}

// Required overrides whether a missing value is an error.
func Required(required bool) Option {
	return func(s *settings) { s.Required = &required }
}

// Default sets the value used when the input is missing. A func() any is
// invoked on each use.
func Default(v any) Option {
	return func(s *settings) { s.Default = v }
}

// AllowNone overrides whether nil is accepted.
func AllowNone(allow bool) Option {
	return func(s *settings) { s.AllowNone = &allow }
}

// DumpOnly excludes the field from load.
func DumpOnly() Option { return func(s *settings) { s.DumpOnly = true } }

// LoadOnly excludes the field from dump.
func LoadOnly() Option { return func(s *settings) { s.LoadOnly = true } }

// DumpTo renames the key written on dump.
func DumpTo(key string) Option { return func(s *settings) { s.DumpTo = key } }

// LoadFrom renames the key read on load.
func LoadFrom(key string) Option { return func(s *settings) { s.LoadFrom = key } }

// ErrorMessages overrides message templates per error kind.
func ErrorMessages(m contracts.Messages) Option {
	return func(s *settings) { s.ErrorMessages = s.ErrorMessages.Merge(m) }
}

// Validators appends validators run after conversion.
func Validators(vs ...contracts.Validator) Option {
	return func(s *settings) { s.Validators = append(s.Validators, vs...) }
}

// Validate appends plain functions as validators.
func Validate(fns ...func(v any) error) Option {
	return func(s *settings) {
		for _, fn := range fns {
			s.Validators = append(s.Validators, contracts.ValidatorFunc(fn))
		}
	}
}

// MinValue sets an inclusive lower bound for Integer and Float.
func MinValue(v any) Option { return func(s *settings) { s.minValue = v } }

// MaxValue sets an inclusive upper bound for Integer and Float.
func MaxValue(v any) Option { return func(s *settings) { s.maxValue = v } }

// MinLength sets a minimum length for String and List.
func MinLength(n int) Option { return func(s *settings) { s.minLength = &n } }

// MaxLength sets a maximum length for String and List.
func MaxLength(n int) Option { return func(s *settings) { s.maxLength = &n } }

// AllowBlank accepts the empty string.
func AllowBlank(allow bool) Option { return func(s *settings) { s.allowBlank = allow } }

// TrimWhitespace controls trimming of surrounding whitespace (default true).
func TrimWhitespace(trim bool) Option { return func(s *settings) { s.trimWhitespace = trim } }

// AllowEmpty controls whether an empty list is accepted (default true).
func AllowEmpty(allow bool) Option { return func(s *settings) { s.allowEmpty = allow } }

// DumpFormat selects the UUID rendering: FormatHexVerbose, FormatHex or
// FormatInt.
func DumpFormat(format string) Option { return func(s *settings) { s.dumpFormat = format } }

// DefaultTimezone is attached to naive timestamps parsed by DateTime.
func DefaultTimezone(loc *time.Location) Option { return func(s *settings) { s.timezone = loc } }

// Many makes a Nested field hold a sequence of objects.
func Many(many bool) Option { return func(s *settings) { s.many = many } }

// Only restricts the fields of a Nested contract.
func Only(paths ...string) Option {
	return func(s *settings) { s.only = append(s.only, paths...) }
}

// Exclude removes fields from a Nested contract.
func Exclude(paths ...string) Option {
	return func(s *settings) { s.exclude = append(s.exclude, paths...) }
}
