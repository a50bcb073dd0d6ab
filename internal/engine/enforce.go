package engine

import (
	"strconv"
	"strings"
)

// DuplicatePolicy controls how repeated object keys are treated.
type DuplicatePolicy int

const (
	// DupError rejects a document that repeats a key within one object.
	DupError DuplicatePolicy = iota
	// DupIgnore keeps the last occurrence.
	DupIgnore
)

// ParseDuplicatePolicy maps "error" and "ignore" to a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return DupError, true
	case "ignore":
		return DupIgnore, true
	}
	return DupError, false
}

// EnforceOptions controls runtime enforcement.
type EnforceOptions struct {
	OnDuplicate DuplicatePolicy
	// MaxDepth bounds container nesting; zero means unlimited.
	MaxDepth int
}

// Issue codes reported by enforcement.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeMaxDepth     = "max_depth"
)

// IssueError is returned when enforcement rejects the input. Path is a JSON
// Pointer to the offending key or container.
type IssueError struct {
	Code    string
	Path    string
	Message string
}

func (e *IssueError) Error() string { return e.Path + ": " + e.Message }

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind       containerKind
	path       string
	keys       map[string]struct{}
	pendingKey string
	hasKey     bool
	nextIndex  int
}

// Enforce wraps inner so that duplicate keys and excessive nesting fail as
// soon as the offending token is read.
func Enforce(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcing{inner: inner, opt: opt}
}

type enforcing struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcing) Location() int64 { return e.inner.Location() }

func (e *enforcing) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		path := e.valuePath()
		if e.opt.MaxDepth > 0 && len(e.stack)+1 > e.opt.MaxDepth {
			return Token{}, &IssueError{Code: CodeMaxDepth, Path: rooted(path), Message: "max depth " + strconv.Itoa(e.opt.MaxDepth) + " exceeded"}
		}
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f.kind = kindObject
			f.keys = map[string]struct{}{}
		}
		e.stack = append(e.stack, f)
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate == DupError {
				return Token{}, &IssueError{
					Code:    CodeDuplicateKey,
					Path:    joinPointer(top.path, tok.String),
					Message: "key '" + tok.String + "' duplicated",
				}
			}
			top.keys[tok.String] = struct{}{}
			top.pendingKey, top.hasKey = tok.String, true
		}
	default:
		e.valuePath()
	}
	return tok, nil
}

// valuePath returns the pointer of the value about to be read and advances
// the enclosing container's position.
func (e *enforcing) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	p := top.path
	if top.hasKey {
		p = joinPointer(top.path, top.pendingKey)
		top.pendingKey, top.hasKey = "", false
	}
	return p
}

func rooted(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
