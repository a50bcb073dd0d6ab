package source

import (
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/contracts/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type jsonFrame struct {
	kind         containerKind
	expectingKey bool
}

// jsonTokens adapts a go-json token decoder to engine.TokenSource. go-json
// reports object keys as plain strings, so the container stack tells keys
// from values.
type jsonTokens struct {
	dec   *gojson.Decoder
	stack []jsonFrame
}

func newJSONTokens(r io.Reader) engine.TokenSource {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return &jsonTokens{dec: dec}
}

func (s *jsonTokens) Location() int64 { return -1 }

func (s *jsonTokens) NextToken() (engine.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return engine.Token{}, err
	}
	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, jsonFrame{kind: kindObject, expectingKey: true})
			return engine.Token{Kind: engine.KindBeginObject, Offset: -1}, nil
		case '[':
			s.stack = append(s.stack, jsonFrame{kind: kindArray})
			return engine.Token{Kind: engine.KindBeginArray, Offset: -1}, nil
		case '}':
			s.pop()
			return engine.Token{Kind: engine.KindEndObject, Offset: -1}, nil
		case ']':
			s.pop()
			return engine.Token{Kind: engine.KindEndArray, Offset: -1}, nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return engine.Token{Kind: engine.KindKey, String: v, Offset: -1}, nil
		}
		s.valueDone()
		return engine.Token{Kind: engine.KindString, String: v, Offset: -1}, nil
	case bool:
		s.valueDone()
		return engine.Token{Kind: engine.KindBool, Bool: v, Offset: -1}, nil
	case gojson.Number:
		s.valueDone()
		return engine.Token{Kind: engine.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.valueDone()
		return engine.Token{Kind: engine.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	}
	s.valueDone()
	return engine.Token{Kind: engine.KindNull, Offset: -1}, nil
}

func (s *jsonTokens) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

// valueDone marks the enclosing object as waiting for its next key.
func (s *jsonTokens) valueDone() {
	if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject {
		s.stack[n-1].expectingKey = true
	}
}
