// Package engine turns a stream of JSON-like tokens into plain Go values
// (map[string]any, []any, string, bool, nil and numbers) that contracts can
// read. Format drivers live in package source.
package engine

import (
	"encoding/json"
	"io"
	"strconv"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token is a single streaming token. Offset is -1 when the driver cannot
// report input positions.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is the interface a format driver implements.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// NumberMode selects how number tokens are materialized.
type NumberMode int

const (
	// NumberJSON keeps the literal as json.Number, so large integers survive.
	NumberJSON NumberMode = iota
	// NumberFloat64 parses every number as float64.
	NumberFloat64
)

// Decode builds a value from src. The source must hold exactly one value;
// trailing tokens are rejected.
func Decode(src TokenSource, mode NumberMode) (any, error) {
	d := decoder{src: src, mode: mode}
	tok, err := src.NextToken()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := d.value(tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, &SyntaxError{Offset: src.Location(), Msg: "unexpected data after top-level value"}
	}
	return v, nil
}

// SyntaxError reports a malformed token sequence.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Offset < 0 {
		return "syntax error: " + e.Msg
	}
	return "syntax error at offset " + strconv.FormatInt(e.Offset, 10) + ": " + e.Msg
}

type decoder struct {
	src  TokenSource
	mode NumberMode
}

func (d decoder) next() (Token, error) {
	tok, err := d.src.NextToken()
	if err == io.EOF {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}

func (d decoder) value(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.object()
	case KindBeginArray:
		return d.array()
	case KindString:
		return tok.String, nil
	case KindNumber:
		return d.number(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, &SyntaxError{Offset: tok.Offset, Msg: "unexpected token"}
	}
}

func (d decoder) number(s string) (any, error) {
	if d.mode == NumberFloat64 {
		return strconv.ParseFloat(s, 64)
	}
	return json.Number(s), nil
}

func (d decoder) object() (any, error) {
	m := make(map[string]any)
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, &SyntaxError{Offset: tok.Offset, Msg: "expected object key"}
		}
		vt, err := d.next()
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func (d decoder) array() (any, error) {
	arr := []any{}
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
