// Package schema builds contract definitions from declarative YAML (or JSON)
// documents:
//
//	contracts:
//	  User:
//	    extends: [Base]
//	    fields:
//	      id: {type: integer, min_value: 1}
//	      tags: {type: list, child: string}
//	      address: {type: nested, contract: Address}
//
// Nested references resolve lazily, so a contract may refer to itself.
package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/fields"
	"github.com/reoring/contracts/validate"
)

// Types lists the field types a schema may use.
var Types = []string{"raw", "string", "integer", "float", "boolean", "date", "datetime", "uuid", "list", "nested"}

// Registry holds the definitions declared by one schema document.
type Registry struct {
	specs map[string]*contractSpec
	order []string
	defs  map[string]*contracts.Definition
}

// Parse reads a schema document and builds every definition in it. Unknown
// types, unknown references and cyclic extends are configuration errors.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &contracts.ConfigError{Subject: "schema", Msg: err.Error()}
	}
	r := &Registry{
		specs: make(map[string]*contractSpec, len(doc.contracts)),
		defs:  make(map[string]*contracts.Definition, len(doc.contracts)),
	}
	for _, c := range doc.contracts {
		r.specs[c.name] = c
		r.order = append(r.order, c.name)
	}
	for _, name := range r.order {
		if _, err := r.build(name, nil); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseFile is Parse over the contents of path.
func ParseFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Names returns the contract names in declaration order.
func (r *Registry) Names() []string { return append([]string(nil), r.order...) }

// Definition returns the named definition.
func (r *Registry) Definition(name string) (*contracts.Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Contract builds a contract instance for the named definition.
func (r *Registry) Contract(name string, opts ...contracts.Option) (*contracts.Contract, error) {
	d, ok := r.defs[name]
	if !ok {
		return nil, &contracts.ConfigError{Subject: "schema", Msg: fmt.Sprintf("unknown contract %q (have %s)", name, strings.Join(r.sortedNames(), ", "))}
	}
	return contracts.New(d, opts...)
}

func (r *Registry) sortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}

// build returns the definition for name, building its bases first. stack
// holds the extends chain being resolved.
func (r *Registry) build(name string, stack []string) (*contracts.Definition, error) {
	if d, ok := r.defs[name]; ok {
		return d, nil
	}
	for _, s := range stack {
		if s == name {
			return nil, &contracts.ConfigError{Subject: "schema " + name, Msg: "cyclic extends: " + strings.Join(append(stack, name), " -> ")}
		}
	}
	spec, ok := r.specs[name]
	if !ok {
		return nil, &contracts.ConfigError{Subject: "schema", Msg: fmt.Sprintf("unknown contract %q", name)}
	}
	stack = append(stack, name)

	bases := make([]*contracts.Definition, 0, len(spec.extends))
	for _, b := range spec.extends {
		if _, ok := r.specs[b]; !ok {
			return nil, &contracts.ConfigError{Subject: "schema " + name, Msg: fmt.Sprintf("extends unknown contract %q", b)}
		}
		bd, err := r.build(b, stack)
		if err != nil {
			return nil, err
		}
		bases = append(bases, bd)
	}

	builder := contracts.Define(name, bases...)
	for _, f := range spec.fields {
		field, err := r.field(name+"."+f.name, f.spec)
		if err != nil {
			return nil, err
		}
		builder.Field(f.name, field)
	}
	d, err := builder.Build()
	if err != nil {
		return nil, err
	}
	r.defs[name] = d
	return d, nil
}

// field builds one field. Field constructors panic on contradictory options;
// the panic is turned back into an error here.
func (r *Registry) field(path string, s *fieldSpec) (f contracts.Field, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ce, ok := rec.(*contracts.ConfigError)
			if !ok {
				panic(rec)
			}
			f, err = nil, &contracts.ConfigError{Subject: "schema " + path, Msg: ce.Subject + ": " + ce.Msg}
		}
	}()

	opts, err := r.options(path, s)
	if err != nil {
		return nil, err
	}
	switch s.Type {
	case "raw":
		return fields.Raw(opts...), nil
	case "string":
		return fields.String(opts...), nil
	case "integer":
		return fields.Integer(opts...), nil
	case "float":
		return fields.Float(opts...), nil
	case "boolean":
		return fields.Boolean(opts...), nil
	case "date":
		return fields.Date(opts...), nil
	case "datetime":
		return fields.DateTime(opts...), nil
	case "uuid":
		return fields.UUID(opts...), nil
	case "list":
		if s.Child == nil {
			return nil, &contracts.ConfigError{Subject: "schema " + path, Msg: "list requires child"}
		}
		child, err := r.field(path+"[]", s.Child)
		if err != nil {
			return nil, err
		}
		return fields.List(child, opts...), nil
	case "nested":
		ref := s.Contract
		if _, ok := r.specs[ref]; !ok {
			return nil, &contracts.ConfigError{Subject: "schema " + path, Msg: fmt.Sprintf("nested references unknown contract %q", ref)}
		}
		return fields.NestedLazy(func() *contracts.Definition { return r.defs[ref] }, opts...), nil
	case "":
		return nil, &contracts.ConfigError{Subject: "schema " + path, Msg: "type is required"}
	}
	return nil, &contracts.ConfigError{Subject: "schema " + path, Msg: fmt.Sprintf("unknown type %q (want one of %s)", s.Type, strings.Join(Types, ", "))}
}

func (r *Registry) options(path string, s *fieldSpec) ([]fields.Option, error) {
	var opts []fields.Option
	if s.Required != nil {
		opts = append(opts, fields.Required(*s.Required))
	}
	if s.hasDefault {
		opts = append(opts, fields.Default(s.def))
	}
	if s.AllowNone != nil {
		opts = append(opts, fields.AllowNone(*s.AllowNone))
	}
	if s.DumpOnly {
		opts = append(opts, fields.DumpOnly())
	}
	if s.LoadOnly {
		opts = append(opts, fields.LoadOnly())
	}
	if s.DumpTo != "" {
		opts = append(opts, fields.DumpTo(s.DumpTo))
	}
	if s.LoadFrom != "" {
		opts = append(opts, fields.LoadFrom(s.LoadFrom))
	}
	if len(s.ErrorMessages) > 0 {
		m := make(contracts.Messages, len(s.ErrorMessages))
		for k, v := range s.ErrorMessages {
			m[k] = v
		}
		opts = append(opts, fields.ErrorMessages(m))
	}
	if s.MinValue != nil {
		opts = append(opts, fields.MinValue(s.MinValue))
	}
	if s.MaxValue != nil {
		opts = append(opts, fields.MaxValue(s.MaxValue))
	}
	if s.MinLength != nil {
		opts = append(opts, fields.MinLength(*s.MinLength))
	}
	if s.MaxLength != nil {
		opts = append(opts, fields.MaxLength(*s.MaxLength))
	}
	if s.AllowBlank {
		opts = append(opts, fields.AllowBlank(true))
	}
	if s.TrimWhitespace != nil {
		opts = append(opts, fields.TrimWhitespace(*s.TrimWhitespace))
	}
	if s.AllowEmpty != nil {
		opts = append(opts, fields.AllowEmpty(*s.AllowEmpty))
	}
	if s.Format != "" {
		opts = append(opts, fields.DumpFormat(s.Format))
	}
	if s.Timezone != "" {
		loc, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return nil, &contracts.ConfigError{Subject: "schema " + path, Msg: err.Error()}
		}
		opts = append(opts, fields.DefaultTimezone(loc))
	}
	if len(s.Choices) > 0 {
		choices, err := coerceChoices(s.Type, s.Choices)
		if err != nil {
			return nil, &contracts.ConfigError{Subject: "schema " + path, Msg: err.Error()}
		}
		opts = append(opts, fields.Validators(validate.OneOf(choices...)))
	}
	if s.Many {
		opts = append(opts, fields.Many(true))
	}
	if len(s.Only) > 0 {
		opts = append(opts, fields.Only(s.Only...))
	}
	if len(s.Exclude) > 0 {
		opts = append(opts, fields.Exclude(s.Exclude...))
	}
	return opts, nil
}

// coerceChoices converts YAML scalars to the Go type the field loads, so that
// `choices: [1, 2]` matches a float field.
func coerceChoices(typ string, in []any) ([]any, error) {
	out := make([]any, len(in))
	for i, c := range in {
		var err error
		switch typ {
		case "integer":
			out[i], err = fields.ToInt(c)
		case "float":
			out[i], err = fields.ToFloat(c)
		default:
			out[i] = c
		}
		if err != nil {
			return nil, fmt.Errorf("choice %v: %w", c, err)
		}
	}
	return out, nil
}
