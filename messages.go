package contracts

import (
	"fmt"
	"strings"

	"github.com/reoring/contracts/i18n"
)

// Messages maps an error kind to its message: a template string with {param}
// placeholders, or a structured map[string]any whose string values are
// templates. Structured messages are reported verbatim (after formatting) so
// callers can attach machine-readable codes.
type Messages map[string]any

// DefaultMessages resolves the templates shared by every field plus those of
// the given scopes, later scopes overriding earlier ones.
func DefaultMessages(scopes ...string) Messages {
	m := Messages{}
	for _, scope := range append([]string{"field"}, scopes...) {
		for k, v := range i18n.Scope(scope) {
			m[k] = v
		}
	}
	return m
}

// Merge returns a copy of m overlaid with over.
func (m Messages) Merge(over Messages) Messages {
	out := make(Messages, len(m)+len(over))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Fail builds the ValidationError for kind. owner names the field kind in the
// panic raised when kind has no message: that is a programming error, not a
// data error.
func (m Messages) Fail(owner, kind string, kv ...any) *ValidationError {
	tmpl, ok := m[kind]
	if !ok {
		panic(configErrorf(owner, "validation failed but error key %q does not exist in the error messages", kind))
	}
	return newKindError(kind, FormatMessage(tmpl, params(kv)))
}

func params(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	p := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		p[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return p
}

// FormatMessage fills {param} placeholders of a template. Structured messages
// are copied with their string values formatted.
func FormatMessage(tmpl any, p map[string]any) any {
	switch t := tmpl.(type) {
	case string:
		return formatString(t, p)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			if s, ok := v.(string); ok {
				out[k] = formatString(s, p)
				continue
			}
			out[k] = v
		}
		return out
	default:
		return tmpl
	}
}

func formatString(s string, p map[string]any) string {
	if len(p) == 0 || !strings.Contains(s, "{") {
		return s
	}
	pairs := make([]string, 0, len(p)*2)
	for k, v := range p {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
