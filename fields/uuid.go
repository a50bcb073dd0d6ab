package fields

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/jsonschema"
)

// UUID dump formats.
const (
	FormatHexVerbose = "hex_verbose"
	FormatHex        = "hex"
	FormatInt        = "int"
)

// UUIDField converts values to uuid.UUID.
type UUIDField struct {
	contracts.Base
	format string
}

// UUID returns a UUID field. Load accepts the hyphenated form, the 32 digit
// hex form and uuid.UUID values. An unknown DumpFormat panics.
func UUID(opts ...Option) *UUIDField {
	s, b := newBase("uuid", opts)
	switch s.dumpFormat {
	case FormatHexVerbose, FormatHex, FormatInt:
	default:
		panic(&contracts.ConfigError{
			Subject: "uuid",
			Msg:     fmt.Sprintf("dump format must be one of %s, %s, %s; got %q", FormatHexVerbose, FormatHex, FormatInt, s.dumpFormat),
		})
	}
	return &UUIDField{Base: b, format: s.dumpFormat}
}

func (f *UUIDField) Load(v any) (any, error) {
	return f.LoadWith(v, func(v any) (any, error) {
		if id, ok := parseUUID(v); ok {
			return id, nil
		}
		return nil, f.Fail(contracts.KindInvalid, "value", repr(v))
	})
}

func parseUUID(v any) (uuid.UUID, bool) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, true
	case [16]byte:
		return uuid.UUID(t), true
	case string:
		s := strings.TrimSpace(t)
		// uuid.Parse also accepts urn: and braced forms; only the
		// hyphenated and compact spellings are valid here.
		if len(s) != 36 && len(s) != 32 {
			return uuid.Nil, false
		}
		id, err := uuid.Parse(s)
		return id, err == nil
	}
	return uuid.Nil, false
}

// Dump renders per the configured format. Strings are parsed first; anything
// that is not a UUID is an error.
func (f *UUIDField) Dump(v any) (any, error) {
	return f.DumpWith(v, func(v any) (any, error) {
		id, ok := parseUUID(v)
		if !ok {
			return nil, fmt.Errorf("dump uuid: %v is not a valid UUID", repr(v))
		}
		switch f.format {
		case FormatHex:
			return hex.EncodeToString(id[:]), nil
		case FormatInt:
			return new(big.Int).SetBytes(id[:]), nil
		default:
			return id.String(), nil
		}
	})
}

func (f *UUIDField) Clone() contracts.Field {
	return &UUIDField{Base: f.CloneBase(), format: f.format}
}

func (f *UUIDField) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Format: "uuid"}
}
