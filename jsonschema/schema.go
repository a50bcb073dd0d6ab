package jsonschema

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema  string `json:"$schema,omitempty"`
	Title   string `json:"title,omitempty"`
	Type    any    `json:"type,omitempty"` // string, or []string when nullable
	Format  string `json:"format,omitempty"`
	Default any    `json:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty"`

	// String
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`
}

// Draft is the dialect written into root schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Nullable widens s.Type to also accept null.
func (s *Schema) Nullable() *Schema {
	switch t := s.Type.(type) {
	case string:
		if t != "" && t != "null" {
			s.Type = []string{t, "null"}
		}
	case []string:
		for _, x := range t {
			if x == "null" {
				return s
			}
		}
		s.Type = append(t, "null")
	}
	return s
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
