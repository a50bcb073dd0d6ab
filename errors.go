package contracts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ContractKey is the reserved key under which errors that do not belong to a
// specific field are collected. It never clashes with a declared field name
// because field names starting with an underscore are rejected by Define.
const ContractKey = "_contract"

// Error kinds used by the built-in fields (exported for IDE completion).
const (
	KindRequired        = "required"
	KindNull            = "null"
	KindValidatorFailed = "validator_failed"
	KindInvalid         = "invalid"
	KindBlank           = "blank"
	KindMinLength       = "min_length"
	KindMaxLength       = "max_length"
	KindMinValue        = "min_value"
	KindMaxValue        = "max_value"
	KindNotAList        = "not_a_list"
	KindEmpty           = "empty"
	KindDate            = "date"
	KindDatetime        = "datetime"
	KindMaxStringLength = "max_string_length"
	KindChoice          = "choice"
)

// ErrInvalid is returned by a validator to report a plain "false" outcome. The
// field converts it into a validator_failed error using its own messages.
var ErrInvalid = errors.New("contracts: invalid value")

// ValidationError is a recoverable, input-caused error carrying a flat, ordered
// list of messages. A message is either a string or a structured
// map[string]any (for machine-readable codes).
type ValidationError struct {
	// FieldNames attributes the messages to fields when the error is added to a
	// ContractError. Empty means the error belongs to the contract itself.
	FieldNames []string

	msgs  []any
	kinds []string
}

// NewValidationError builds a ValidationError from messages. Slices and
// nested ValidationErrors are flattened in order.
func NewValidationError(msgs ...any) *ValidationError {
	e := &ValidationError{}
	for _, m := range msgs {
		switch t := m.(type) {
		case *ValidationError:
			e.append(t)
		case []any:
			e.append(NewValidationError(t...))
		case []string:
			for _, s := range t {
				e.msgs = append(e.msgs, s)
				e.kinds = append(e.kinds, "")
			}
		case nil:
		default:
			e.msgs = append(e.msgs, t)
			e.kinds = append(e.kinds, "")
		}
	}
	return e
}

// newKindError builds a single-message error tagged with the error kind.
func newKindError(kind string, msg any) *ValidationError {
	return &ValidationError{msgs: []any{msg}, kinds: []string{kind}}
}

func (e *ValidationError) append(other *ValidationError) {
	e.msgs = append(e.msgs, other.msgs...)
	e.kinds = append(e.kinds, other.kinds...)
}

func (e *ValidationError) clone() *ValidationError {
	return &ValidationError{
		msgs:  append([]any(nil), e.msgs...),
		kinds: append([]string(nil), e.kinds...),
	}
}

// Messages returns a copy of the message list.
func (e *ValidationError) Messages() []any { return append([]any(nil), e.msgs...) }

// Kinds returns the error kinds parallel to Messages. Messages built without a
// kind report an empty string.
func (e *ValidationError) Kinds() []string { return append([]string(nil), e.kinds...) }

// Kind returns the kind of the first message.
func (e *ValidationError) Kind() string {
	if len(e.kinds) == 0 {
		return ""
	}
	return e.kinds[0]
}

// Len returns the number of messages.
func (e *ValidationError) Len() int { return len(e.msgs) }

func (e *ValidationError) Error() string { return e.Issues().Error() }

// Issues flattens the error into issues at the root path.
func (e *ValidationError) Issues() Issues { return e.issuesAt("") }

func (e *ValidationError) issuesAt(path string) Issues {
	out := make(Issues, 0, len(e.msgs))
	for i, m := range e.msgs {
		out = append(out, issueFor(path, e.kinds[i], m))
	}
	return out
}

// ContractError is the aggregated, mapping-shaped validation error: an ordered
// mapping from field name (or list index) to either a flat message list or a
// nested ContractError.
type ContractError struct {
	// FieldNames places the whole mapping under these names when the error is
	// added to another ContractError.
	FieldNames []string

	keys    []string
	entries map[string]*errorEntry
}

type errorEntry struct {
	flat   *ValidationError
	nested *ContractError
}

// NewContractError returns an empty aggregate.
func NewContractError() *ContractError {
	return &ContractError{entries: map[string]*errorEntry{}}
}

// AddError merges err into the aggregate. Mapping-shaped errors are merged key
// by key, concatenating message lists on key collision; flat errors go under
// their FieldNames, or under ContractKey when they have none. Errors that are
// neither are recorded by their text under ContractKey.
func (e *ContractError) AddError(err error) {
	if err == nil {
		return
	}
	var ce *ContractError
	var ve *ValidationError
	switch {
	case errors.As(err, &ce):
		if len(ce.FieldNames) == 0 {
			e.mergeFrom(ce)
			return
		}
		for _, name := range ce.FieldNames {
			e.mergeNested(name, ce)
		}
	case errors.As(err, &ve):
		if len(ve.FieldNames) == 0 {
			e.appendFlat(ContractKey, ve)
			return
		}
		for _, name := range ve.FieldNames {
			e.appendFlat(name, ve)
		}
	default:
		e.appendFlat(ContractKey, NewValidationError(err.Error()))
	}
}

// AddFieldError records err under name regardless of err's own FieldNames.
func (e *ContractError) AddFieldError(name string, err error) {
	if err == nil {
		return
	}
	var ce *ContractError
	var ve *ValidationError
	switch {
	case errors.As(err, &ce):
		e.mergeNested(name, ce)
	case errors.As(err, &ve):
		e.appendFlat(name, ve)
	default:
		e.appendFlat(name, NewValidationError(err.Error()))
	}
}

func (e *ContractError) entry(key string) *errorEntry {
	if e.entries == nil {
		e.entries = map[string]*errorEntry{}
	}
	ent, ok := e.entries[key]
	if !ok {
		ent = &errorEntry{}
		e.entries[key] = ent
		e.keys = append(e.keys, key)
	}
	return ent
}

func (e *ContractError) appendFlat(key string, ve *ValidationError) {
	ent := e.entry(key)
	switch {
	case ent.nested != nil:
		ent.nested.appendFlat(ContractKey, ve)
	case ent.flat != nil:
		ent.flat.append(ve)
	default:
		ent.flat = ve.clone()
	}
}

func (e *ContractError) mergeNested(key string, child *ContractError) {
	ent := e.entry(key)
	if ent.nested == nil {
		ent.nested = NewContractError()
		if ent.flat != nil {
			ent.nested.appendFlat(ContractKey, ent.flat)
			ent.flat = nil
		}
	}
	ent.nested.mergeFrom(child)
}

func (e *ContractError) mergeFrom(src *ContractError) {
	for _, k := range src.keys {
		ent := src.entries[k]
		if ent.flat != nil {
			e.appendFlat(k, ent.flat)
		}
		if ent.nested != nil {
			e.mergeNested(k, ent.nested)
		}
	}
}

// Len returns the number of keys.
func (e *ContractError) Len() int { return len(e.keys) }

// Keys returns the keys in insertion order.
func (e *ContractError) Keys() []string { return append([]string(nil), e.keys...) }

// Field returns the error recorded under key: a *ValidationError for a flat
// entry, a *ContractError for a nested one, or nil.
func (e *ContractError) Field(key string) error {
	ent, ok := e.entries[key]
	if !ok {
		return nil
	}
	if ent.nested != nil {
		return ent.nested
	}
	return ent.flat
}

// Messages renders the aggregate as plain values: flat entries become []any
// and nested entries become map[string]any, recursively.
func (e *ContractError) Messages() map[string]any {
	out := make(map[string]any, len(e.keys))
	for _, k := range e.keys {
		ent := e.entries[k]
		if ent.nested != nil {
			out[k] = ent.nested.Messages()
			continue
		}
		out[k] = ent.flat.Messages()
	}
	return out
}

func (e *ContractError) Error() string { return e.Issues().Error() }

// Issues flattens the aggregate into issues with JSON Pointer paths.
func (e *ContractError) Issues() Issues { return e.issuesAt("") }

func (e *ContractError) issuesAt(base string) Issues {
	var out Issues
	for _, k := range e.keys {
		ent := e.entries[k]
		p := base
		if k != ContractKey {
			p = joinPointer(base, k)
		}
		if ent.nested != nil {
			out = append(out, ent.nested.issuesAt(p)...)
			continue
		}
		out = append(out, ent.flat.issuesAt(p)...)
	}
	return out
}

// Issue is a single flattened validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // Error kind; empty when the message was built without one.
	Message string
	// Detail carries a structured message verbatim.
	Detail map[string]any
}

// Issues is a flattened list of validation entries that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", iss[i].Path, iss[i].Message)
	}
	if n := len(iss); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

func issueFor(path, kind string, msg any) Issue {
	if path == "" {
		path = "/"
	}
	it := Issue{Path: path, Code: kind}
	switch t := msg.(type) {
	case string:
		it.Message = t
	case map[string]any:
		it.Detail = t
		if s, ok := t["message"].(string); ok {
			it.Message = s
		} else {
			it.Message = renderDetail(t)
		}
		if it.Code == "" {
			if c, ok := t["code"]; ok {
				it.Code = fmt.Sprint(c)
			}
		}
	default:
		it.Message = fmt.Sprint(t)
	}
	return it
}

func renderDetail(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

// IsValidationError reports whether err is a ValidationError or ContractError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	var ce *ContractError
	return errors.As(err, &ve) || errors.As(err, &ce)
}

// MessagesOf returns the plain message shape of a validation error: []any for
// a flat error, map[string]any for an aggregate, nil otherwise.
func MessagesOf(err error) any {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Messages()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages()
	}
	return nil
}

// IssuesOf flattens a validation error; other errors yield nil.
func IssuesOf(err error) Issues {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Issues()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues()
	}
	return nil
}

// ConfigError reports a programming error: an unbound field, an unknown
// error-message key, an invalid option or a missing method. It is never part
// of a validation aggregate.
type ConfigError struct {
	Subject string // the field, contract or option concerned
	Msg     string
}

func (e *ConfigError) Error() string {
	if e.Subject == "" {
		return "contracts: " + e.Msg
	}
	return "contracts: " + e.Subject + ": " + e.Msg
}

func configErrorf(subject, format string, args ...any) *ConfigError {
	return &ConfigError{Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
