package fields_test

import (
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/fields"
)

func TestBoolean_Load(t *testing.T) {
	f := fields.Boolean()
	for _, v := range []any{"True", "true", "TRUE", "t", "1", 1, 1.0, json.Number("1"), true} {
		got, err := f.Load(v)
		require.NoError(t, err, "%#v", v)
		assert.Equal(t, true, got, "%#v", v)
	}
	for _, v := range []any{"False", "false", "FALSE", "F", "0", 0, json.Number("0"), false} {
		got, err := f.Load(v)
		require.NoError(t, err, "%#v", v)
		assert.Equal(t, false, got, "%#v", v)
	}
}

func TestBoolean_LoadInvalid(t *testing.T) {
	f := fields.Boolean()
	_, err := f.Load("foo")
	assert.Equal(t, []any{`"foo" is not a valid boolean.`}, contracts.MessagesOf(err))

	_, err = f.Load([]any{})
	assert.Equal(t, []any{"[] is not a valid boolean."}, contracts.MessagesOf(err))

	_, err = f.Load(2)
	assert.True(t, contracts.IsValidationError(err))
}

func TestBoolean_Dump(t *testing.T) {
	f := fields.Boolean()
	for _, v := range []any{"True", "true", "TRUE", "1", "other", 1, 2, true} {
		got, err := f.Dump(v)
		require.NoError(t, err, "%#v", v)
		assert.Equal(t, true, got, "%#v", v)
	}
	for _, v := range []any{"False", "false", "FALSE", "0", "", 0, false} {
		got, err := f.Dump(v)
		require.NoError(t, err, "%#v", v)
		assert.Equal(t, false, got, "%#v", v)
	}

	_, err := f.Dump([]any{})
	assert.Error(t, err)
	_, err = f.Dump(map[string]any{})
	assert.Error(t, err)
	assert.False(t, contracts.IsValidationError(err))
}

func TestInteger_Load(t *testing.T) {
	f := fields.Integer()
	for in, want := range map[any]int{"3": 3, " 12 ": 12, 7: 7, 3.7: 3, int64(9): 9, json.Number("42"): 42, true: 1} {
		got, err := f.Load(in)
		require.NoError(t, err, "%#v", in)
		assert.Equal(t, want, got, "%#v", in)
	}

	_, err := f.Load("abc")
	assert.Equal(t, []any{"A valid integer is required."}, contracts.MessagesOf(err))

	_, err = f.Load(strings.Repeat("9", 4301))
	assert.Equal(t, []any{"String value too large."}, contracts.MessagesOf(err))

	_, err = f.Load([]any{1})
	assert.Equal(t, []any{"A valid integer is required."}, contracts.MessagesOf(err))
}

func TestInteger_MinMax(t *testing.T) {
	f := fields.Integer(fields.MinValue(1), fields.MaxValue(3))
	for _, v := range []any{1, 2, 3, "3"} {
		_, err := f.Load(v)
		assert.NoError(t, err, "%#v", v)
	}

	_, err := f.Load(0)
	assert.Equal(t, []any{"Must be at least 1."}, contracts.MessagesOf(err))
	var ve *contracts.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, contracts.KindMinValue, ve.Kind())

	_, err = f.Load(4)
	assert.Equal(t, []any{"Must be at most 3."}, contracts.MessagesOf(err))
}

func TestInteger_Dump(t *testing.T) {
	f := fields.Integer()
	got, err := f.Dump("5")
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	// dump trusts its input: no range check, raw conversion errors
	got, err = fields.Integer(fields.MaxValue(1)).Dump(10)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	_, err = f.Dump("abc")
	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr))
	assert.False(t, contracts.IsValidationError(err))
}

func TestFloat_Load(t *testing.T) {
	f := fields.Float()
	for in, want := range map[any]float64{"1": 1, "0": 0, 1: 1, 0: 0, 1.0: 1, float32(0.5): 0.5, json.Number("2.25"): 2.25} {
		got, err := f.Load(in)
		require.NoError(t, err, "%#v", in)
		assert.Equal(t, want, got, "%#v", in)
	}

	_, err := f.Load("abc")
	assert.Equal(t, []any{"A valid number is required."}, contracts.MessagesOf(err))
}

func TestFloat_MinMax(t *testing.T) {
	f := fields.Float(fields.MinValue(1), fields.MaxValue(3))
	for _, v := range []any{1.0, 3.0} {
		got, err := f.Load(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := f.Load(0.9)
	assert.Equal(t, []any{"Must be at least 1."}, contracts.MessagesOf(err))
	_, err = f.Load(3.1)
	assert.Equal(t, []any{"Must be at most 3."}, contracts.MessagesOf(err))
}

func TestFloat_Dump(t *testing.T) {
	f := fields.Float()
	for in, want := range map[any]float64{"1": 1, "0": 0, 1: 1, 0: 0} {
		got, err := f.Dump(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := f.Dump("abc")
	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr))
}

func TestString_Load(t *testing.T) {
	f := fields.String()
	got, err := f.Load(" abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	got, err = f.Load(5)
	require.NoError(t, err)
	assert.Equal(t, "5", got)

	got, err = f.Load(json.Number("1.50"))
	require.NoError(t, err)
	assert.Equal(t, "1.50", got)

	_, err = f.Load(map[string]any{})
	assert.Equal(t, []any{"Not a valid string."}, contracts.MessagesOf(err))

	got, err = fields.String(fields.TrimWhitespace(false)).Load(" abc ")
	require.NoError(t, err)
	assert.Equal(t, " abc ", got)
}

type label struct{ name string }

func (l label) String() string { return l.name }

func TestString_Stringer(t *testing.T) {
	f := fields.String()
	got, err := f.Load(label{name: "gold"})
	require.NoError(t, err)
	assert.Equal(t, "gold", got)

	got, err = f.Load(&label{name: "silver"})
	require.NoError(t, err)
	assert.Equal(t, "silver", got)

	var none *label
	assert.NotPanics(t, func() {
		_, err = f.Load(none)
	})
	assert.Equal(t, []any{"Not a valid string."}, contracts.MessagesOf(err))

	dumped, err := f.Dump(none)
	require.NoError(t, err)
	assert.Equal(t, "<nil>", dumped)
}

func TestString_Blank(t *testing.T) {
	_, err := fields.String().Load("")
	assert.Equal(t, []any{"This field may not be blank."}, contracts.MessagesOf(err))

	_, err = fields.String().Load("   ")
	assert.Equal(t, []any{"This field may not be blank."}, contracts.MessagesOf(err))

	got, err := fields.String(fields.AllowBlank(true)).Load("")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = fields.String(fields.AllowNone(true)).Load("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = fields.String(fields.AllowNone(true), fields.AllowBlank(true)).Load("")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestString_Length(t *testing.T) {
	f := fields.String(fields.MinLength(2), fields.MaxLength(3))
	_, err := f.Load("a")
	assert.Equal(t, []any{"Shorter than minimum length 2."}, contracts.MessagesOf(err))

	_, err = f.Load("abcd")
	assert.Equal(t, []any{"Longer than maximum length 3."}, contracts.MessagesOf(err))

	got, err := f.Load("héé")
	require.NoError(t, err, "length counts runes")
	assert.Equal(t, "héé", got)
}

func TestString_Dump(t *testing.T) {
	f := fields.String()
	for in, want := range map[any]string{"x": "x", 5: "5", true: "true", " pad ": " pad "} {
		got, err := f.Dump(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := f.Dump([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "[1 2]", got)
}

func TestRoundTrip(t *testing.T) {
	id := uuid.MustParse("825d7aeb-05a9-45b5-a5b7-05df87923cda")
	cases := []struct {
		field contracts.Field
		value any
	}{
		{fields.String(), "abc"},
		{fields.Integer(), 42},
		{fields.Float(), 1.5},
		{fields.Boolean(), true},
		{fields.UUID(), id},
		{fields.Raw(), map[string]any{"k": []any{1}}},
	}
	for _, tc := range cases {
		dumped, err := tc.field.Dump(tc.value)
		require.NoError(t, err)
		loaded, err := tc.field.Load(dumped)
		require.NoError(t, err)
		assert.Equal(t, tc.value, loaded)
	}
}

const (
	canonicalID = "825d7aeb-05a9-45b5-a5b7-05df87923cda"
	compactID   = "825d7aeb05a945b5a5b705df87923cda"
)

func TestUUID_Load(t *testing.T) {
	f := fields.UUID()
	a, err := f.Load(canonicalID)
	require.NoError(t, err)
	b, err := f.Load(compactID)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, uuid.MustParse(canonicalID), a)

	c, err := f.Load(uuid.MustParse(canonicalID))
	require.NoError(t, err)
	assert.Equal(t, a, c)

	for _, bad := range []any{"xyz", "urn:uuid:" + canonicalID, "{" + canonicalID + "}", 12} {
		_, err := f.Load(bad)
		assert.True(t, contracts.IsValidationError(err), "%#v", bad)
	}
	_, err = f.Load("xyz")
	assert.Equal(t, []any{`"xyz" is not a valid UUID.`}, contracts.MessagesOf(err))
}

func TestUUID_Dump(t *testing.T) {
	got, err := fields.UUID().Dump(compactID)
	require.NoError(t, err)
	assert.Equal(t, canonicalID, got)

	got, err = fields.UUID(fields.DumpFormat(fields.FormatHex)).Dump(canonicalID)
	require.NoError(t, err)
	assert.Equal(t, compactID, got)

	got, err = fields.UUID(fields.DumpFormat(fields.FormatInt)).Dump(uuid.MustParse(canonicalID))
	require.NoError(t, err)
	want, _ := new(big.Int).SetString(compactID, 16)
	assert.Equal(t, 0, want.Cmp(got.(*big.Int)))

	_, err = fields.UUID().Dump("bad")
	assert.Error(t, err)
	assert.False(t, contracts.IsValidationError(err))
}

func TestUUID_UnknownDumpFormatPanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, contracts.IsConfigError(err))
		assert.Contains(t, err.Error(), `"urn"`)
	}()
	fields.UUID(fields.DumpFormat("urn"))
}

func TestRaw_PassThrough(t *testing.T) {
	v := []any{1, "a"}
	got, err := fields.Raw().Load(v)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}
