package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fieldSpec is one entry under a contract's fields mapping.
type fieldSpec struct {
	Type           string            `yaml:"type"`
	Required       *bool             `yaml:"required"`
	AllowNone      *bool             `yaml:"allow_none"`
	DumpOnly       bool              `yaml:"dump_only"`
	LoadOnly       bool              `yaml:"load_only"`
	DumpTo         string            `yaml:"dump_to"`
	LoadFrom       string            `yaml:"load_from"`
	ErrorMessages  map[string]string `yaml:"error_messages"`
	MinValue       any               `yaml:"min_value"`
	MaxValue       any               `yaml:"max_value"`
	MinLength      *int              `yaml:"min_length"`
	MaxLength      *int              `yaml:"max_length"`
	AllowBlank     bool              `yaml:"allow_blank"`
	TrimWhitespace *bool             `yaml:"trim_whitespace"`
	AllowEmpty     *bool             `yaml:"allow_empty"`
	Format         string            `yaml:"format"`
	Timezone       string            `yaml:"timezone"`
	Choices        []any             `yaml:"choices"`
	Child          *fieldSpec        `yaml:"child"`
	Contract       string            `yaml:"contract"`
	Many           bool              `yaml:"many"`
	Only           []string          `yaml:"only"`
	Exclude        []string          `yaml:"exclude"`

	// default is decoded by hand: an explicit null must stay distinguishable
	// from an absent key.
	hasDefault bool
	def        any
}

var fieldKeys = map[string]bool{
	"type": true, "required": true, "default": true, "allow_none": true,
	"dump_only": true, "load_only": true, "dump_to": true, "load_from": true,
	"error_messages": true, "min_value": true, "max_value": true,
	"min_length": true, "max_length": true, "allow_blank": true,
	"trim_whitespace": true, "allow_empty": true, "format": true,
	"timezone": true, "choices": true, "child": true, "contract": true,
	"many": true, "only": true, "exclude": true,
}

func (s *fieldSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		// shorthand: `name: string`
		s.Type = n.Value
		return nil
	}
	pairs, err := mappingPairs(n)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		key := p[0].Value
		if !fieldKeys[key] {
			return fmt.Errorf("line %d: unknown field option %q", p[0].Line, key)
		}
		if key == "default" {
			s.hasDefault = true
			if err := p[1].Decode(&s.def); err != nil {
				return err
			}
		}
	}
	type plain fieldSpec
	return n.Decode((*plain)(s))
}

type namedSpec struct {
	name string
	line int
	spec *fieldSpec
}

type contractSpec struct {
	name    string
	line    int
	extends []string
	fields  []namedSpec
}

func (c *contractSpec) UnmarshalYAML(n *yaml.Node) error {
	pairs, err := mappingPairs(n)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		switch p[0].Value {
		case "extends":
			if p[1].Kind == yaml.ScalarNode {
				c.extends = []string{p[1].Value}
				continue
			}
			if err := p[1].Decode(&c.extends); err != nil {
				return err
			}
		case "fields":
			fps, err := mappingPairs(p[1])
			if err != nil {
				return err
			}
			for _, fp := range fps {
				fs := &fieldSpec{}
				if err := fp[1].Decode(fs); err != nil {
					return err
				}
				c.fields = append(c.fields, namedSpec{name: fp[0].Value, line: fp[0].Line, spec: fs})
			}
		default:
			return fmt.Errorf("line %d: unknown contract option %q", p[0].Line, p[0].Value)
		}
	}
	return nil
}

// document is the top level of a schema file.
type document struct {
	contracts []*contractSpec
}

func (d *document) UnmarshalYAML(n *yaml.Node) error {
	pairs, err := mappingPairs(n)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p[0].Value != "contracts" {
			return fmt.Errorf("line %d: unknown top-level key %q", p[0].Line, p[0].Value)
		}
		cps, err := mappingPairs(p[1])
		if err != nil {
			return err
		}
		for _, cp := range cps {
			c := &contractSpec{name: cp[0].Value, line: cp[0].Line}
			if err := cp[1].Decode(c); err != nil {
				return err
			}
			d.contracts = append(d.contracts, c)
		}
	}
	return nil
}

// mappingPairs returns the key/value nodes of a mapping in document order.
// A null node is an empty mapping.
func mappingPairs(n *yaml.Node) ([][2]*yaml.Node, error) {
	for n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make([][2]*yaml.Node, 0, len(n.Content)/2)
	seen := map[string]int{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if first, dup := seen[k.Value]; dup {
			return nil, fmt.Errorf("line %d: duplicate key %q (first at line %d)", k.Line, k.Value, first)
		}
		seen[k.Value] = k.Line
		out = append(out, [2]*yaml.Node{k, n.Content[i+1]})
	}
	return out, nil
}
