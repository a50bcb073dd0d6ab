package validate_test

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/fields"
	"github.com/reoring/contracts/validate"
)

func TestRange(t *testing.T) {
	r := validate.Range(1, 3.5, contracts.DefaultMessages("float"))
	for _, v := range []any{1, 2.2, 3.5, json.Number("3"), big.NewInt(2), uint8(3)} {
		assert.NoError(t, r.Validate(v), "%#v", v)
	}

	err := r.Validate(0)
	assert.Equal(t, []any{"Must be at least 1."}, contracts.MessagesOf(err))
	err = r.Validate(json.Number("3.6"))
	assert.Equal(t, []any{"Must be at most 3.5."}, contracts.MessagesOf(err))

	// non-numeric values are left to the field's conversion
	assert.NoError(t, r.Validate("abc"))

	open := validate.Range(nil, 0, contracts.DefaultMessages("integer"))
	assert.NoError(t, open.Validate(-1e9))
	assert.Error(t, open.Validate(1))
}

func TestLength(t *testing.T) {
	lo, hi := 1, 2
	l := validate.Length(&lo, &hi, contracts.DefaultMessages("string"))
	assert.NoError(t, l.Validate("ab"))
	assert.NoError(t, l.Validate("日本"))
	assert.NoError(t, l.Validate(map[string]int{"a": 1}))
	assert.NoError(t, l.Validate(42))

	var ve *contracts.ValidationError
	require.True(t, errors.As(l.Validate([]any{}), &ve))
	assert.Equal(t, contracts.KindMinLength, ve.Kind())
	assert.Equal(t, []any{"Shorter than minimum length 1."}, ve.Messages())

	assert.Equal(t, []any{"Longer than maximum length 2."}, contracts.MessagesOf(l.Validate("abc")))

	onlyMax := validate.Length(nil, &hi, contracts.DefaultMessages("list"))
	assert.NoError(t, onlyMax.Validate([]int{}))
}

func TestOneOf(t *testing.T) {
	v := validate.OneOf("admin", "member", 3)
	assert.NoError(t, v.Validate("admin"))
	assert.NoError(t, v.Validate(3))

	err := v.Validate("guest")
	assert.Equal(t, []any{`"guest" is not a valid choice.`}, contracts.MessagesOf(err))

	// no cross-type matching
	assert.Error(t, v.Validate(int64(3)))
	assert.Error(t, v.Validate(3.0))
}

func TestPredicate(t *testing.T) {
	even := validate.Predicate(func(v any) bool { return v.(int)%2 == 0 })
	assert.NoError(t, even.Validate(2))
	assert.ErrorIs(t, even.Validate(3), contracts.ErrInvalid)

	f := fields.Integer(fields.Validators(even, validate.OneOf(2, 4)))
	_, err := f.Load("3")
	assert.Equal(t, []any{"Invalid value.", "3 is not a valid choice."}, contracts.MessagesOf(err))

	f = fields.Integer(fields.Validators(even), fields.ErrorMessages(contracts.Messages{
		contracts.KindValidatorFailed: "Must be even.",
	}))
	_, err = f.Load(5)
	assert.Equal(t, []any{"Must be even."}, contracts.MessagesOf(err))
}
