// Package source decodes JSON and YAML documents into the plain values a
// contract loads: map[string]any, []any, string, bool, nil and json.Number.
//
// Both formats go through the same token pipeline, so duplicate keys and
// excessive nesting are rejected the same way for either.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/internal/engine"
)

// Format names a document format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml (or yml) and auto. The empty string is auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, yaml or auto)", s)
}

// DetectFormat picks a format from a file name. Anything that is not .yaml or
// .yml is treated as JSON.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Options controls decoding.
type Options struct {
	Format Format
	// MaxDepth bounds container nesting; zero means unlimited.
	MaxDepth int
	// AllowDuplicateKeys keeps the last value of a repeated key instead of
	// failing.
	AllowDuplicateKeys bool
}

// Error is an input rejected by enforcement. It flattens to a single issue.
type Error struct {
	Code    string
	Path    string
	Message string
}

func (e *Error) Error() string { return e.Path + ": " + e.Message }

// Issues renders the error in the shape of validation issues.
func (e *Error) Issues() contracts.Issues {
	return contracts.Issues{{Path: e.Path, Code: e.Code, Message: e.Message}}
}

// Decode reads one document from r. FormatAuto sniffs the first significant
// byte: '{', '[' or '"' mean JSON, anything else YAML.
func Decode(r io.Reader, opts Options) (any, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		format = sniff(b)
		r = bytes.NewReader(b)
	}

	var src engine.TokenSource
	switch format {
	case FormatJSON:
		src = newJSONTokens(r)
	case FormatYAML:
		ys, err := newYAMLTokens(r)
		if err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		src = ys
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	policy := engine.DupError
	if opts.AllowDuplicateKeys {
		policy = engine.DupIgnore
	}
	src = engine.Enforce(src, engine.EnforceOptions{OnDuplicate: policy, MaxDepth: opts.MaxDepth})

	v, err := engine.Decode(src, engine.NumberJSON)
	if err != nil {
		var ie *engine.IssueError
		if errors.As(err, &ie) {
			return nil, &Error{Code: ie.Code, Path: ie.Path, Message: ie.Message}
		}
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return v, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(b []byte, opts Options) (any, error) {
	return Decode(bytes.NewReader(b), opts)
}

// ReadFile decodes the file at path. With FormatAuto the format comes from
// the file extension. The path "-" reads standard input.
func ReadFile(path string, opts Options) (any, error) {
	if path == "-" {
		return Decode(os.Stdin, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if opts.Format == "" || opts.Format == FormatAuto {
		opts.Format = DetectFormat(path)
	}
	return Decode(f, opts)
}

func sniff(b []byte) Format {
	t := bytes.TrimLeft(b, " \t\r\n\ufeff")
	if len(t) > 0 && (t[0] == '{' || t[0] == '[' || t[0] == '"') {
		return FormatJSON
	}
	return FormatYAML
}
