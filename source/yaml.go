package source

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/contracts/internal/engine"
)

// yamlTokens replays the first document of a YAML stream as engine tokens,
// so duplicate-key and depth enforcement apply to YAML exactly as to JSON.
type yamlTokens struct {
	toks []engine.Token
	pos  int
}

func newYAMLTokens(r io.Reader) (engine.TokenSource, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			// an empty document is null
			return &yamlTokens{toks: []engine.Token{{Kind: engine.KindNull, Offset: -1}}}, nil
		}
		return nil, err
	}
	s := &yamlTokens{}
	s.walk(&root)
	if len(s.toks) == 0 {
		s.toks = append(s.toks, engine.Token{Kind: engine.KindNull, Offset: -1})
	}
	return s, nil
}

func (s *yamlTokens) NextToken() (engine.Token, error) {
	if s.pos >= len(s.toks) {
		return engine.Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

// Location reports the line of the next token.
func (s *yamlTokens) Location() int64 {
	if s.pos < len(s.toks) {
		return s.toks[s.pos].Offset
	}
	return -1
}

func (s *yamlTokens) emit(n *yaml.Node, t engine.Token) {
	t.Offset = int64(n.Line)
	s.toks = append(s.toks, t)
}

func (s *yamlTokens) walk(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			s.walk(n.Content[0])
		}
	case yaml.AliasNode:
		s.walk(n.Alias)
	case yaml.MappingNode:
		s.emit(n, engine.Token{Kind: engine.KindBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			s.emit(n.Content[i], engine.Token{Kind: engine.KindKey, String: n.Content[i].Value})
			s.walk(n.Content[i+1])
		}
		s.emit(n, engine.Token{Kind: engine.KindEndObject})
	case yaml.SequenceNode:
		s.emit(n, engine.Token{Kind: engine.KindBeginArray})
		for _, c := range n.Content {
			s.walk(c)
		}
		s.emit(n, engine.Token{Kind: engine.KindEndArray})
	case yaml.ScalarNode:
		s.emit(n, scalarToken(n))
	}
}

// scalarToken resolves a scalar by its tag. Integers are rewritten in decimal
// so that hex, octal and underscore forms read as plain numbers.
func scalarToken(n *yaml.Node) engine.Token {
	switch n.ShortTag() {
	case "!!null":
		return engine.Token{Kind: engine.KindNull}
	case "!!bool":
		return engine.Token{Kind: engine.KindBool, Bool: strings.EqualFold(n.Value, "true")}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return engine.Token{Kind: engine.KindNumber, Number: strconv.FormatInt(i, 10)}
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return engine.Token{Kind: engine.KindNumber, Number: strconv.FormatFloat(f, 'g', -1, 64)}
		}
	}
	return engine.Token{Kind: engine.KindString, String: n.Value}
}
