package contracts

import (
	"github.com/reoring/contracts/jsonschema"
)

// SchemaProvider is implemented by fields that describe their load-side value
// as JSON Schema.
type SchemaProvider interface {
	JSONSchema() *jsonschema.Schema
}

// nestedContract is implemented by fields that hold a child contract.
type nestedContract interface {
	Contract() (*Contract, error)
}

// elementField is implemented by fields over a sequence of child values.
type elementField interface {
	Child() Field
}

// JSONSchema projects the load side of the contract. Recursive definitions are
// cut at the first repetition with an unconstrained object.
func (c *Contract) JSONSchema() *jsonschema.Schema {
	s := c.projectContract(map[*Definition]bool{})
	s.Schema = jsonschema.Draft
	s.Title = c.def.name
	return s
}

func (c *Contract) projectContract(seen map[*Definition]bool) *jsonschema.Schema {
	obj := &jsonschema.Schema{Type: "object"}
	if !seen[c.def] {
		seen[c.def] = true
		obj.Properties = map[string]*jsonschema.Schema{}
		for _, f := range c.loadFields {
			obj.Properties[f.LoadKey()] = projectField(f, seen)
			if f.IsRequired() {
				obj.Required = append(obj.Required, f.LoadKey())
			}
		}
		delete(seen, c.def)
	}
	if c.cfg.many {
		return &jsonschema.Schema{Type: "array", Items: obj}
	}
	return obj
}

func projectField(f Field, seen map[*Definition]bool) *jsonschema.Schema {
	var s *jsonschema.Schema
	switch t := f.(type) {
	case *Contract:
		s = t.projectContract(seen)
	case nestedContract:
		if child, err := t.Contract(); err == nil && child != nil {
			s = child.projectContract(seen)
		} else {
			s = &jsonschema.Schema{Type: "object"}
		}
	case SchemaProvider:
		s = t.JSONSchema()
		if el, ok := f.(elementField); ok && s.Items == nil {
			s.Items = projectField(el.Child(), seen)
		}
	default:
		s = &jsonschema.Schema{}
	}
	if b, ok := f.(interface {
		AllowsNone() bool
		DefaultLiteral() (any, bool)
	}); ok {
		if b.AllowsNone() {
			s.Nullable()
		}
		if v, ok := b.DefaultLiteral(); ok {
			s.Default = v
		}
	}
	return s
}
