package contracts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/contracts"
)

type label string

func TestReaderFor(t *testing.T) {
	r, err := contracts.ReaderFor(map[string]any{"a": 1, "n": nil})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Read("a"))
	assert.Nil(t, r.Read("n"))
	assert.True(t, contracts.IsMissing(r.Read("b")))

	r, err = contracts.ReaderFor(map[label]int{"a": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Read("a"))
	assert.True(t, contracts.IsMissing(r.Read("b")))

	_, err = contracts.ReaderFor(42)
	assert.Error(t, err)

	_, err = contracts.ReaderFor(map[int]any{1: "x"})
	assert.Error(t, err)

	var nilUser *user
	_, err = contracts.ReaderFor(nilUser)
	assert.Error(t, err)
}

func TestStructReader(t *testing.T) {
	mail := "a@b.c"
	r, ok := contracts.NewStructReader(&user{
		Contact: Contact{Email: &mail},
		ID:      9,
		Secret:  "hidden",
		Address: &address{City: "Kyiv"},
	})
	require.True(t, ok)
	assert.Equal(t, 9, r.Read("id"))
	assert.Equal(t, "a@b.c", r.Read("email"), "promoted pointer fields read as their target")
	assert.Equal(t, address{City: "Kyiv"}, r.Read("address"))
	assert.True(t, contracts.IsMissing(r.Read("Secret")))
	assert.True(t, contracts.IsMissing(r.Read("-")))

	r, ok = contracts.NewStructReader(address{Street: "s"})
	require.True(t, ok)
	assert.Equal(t, "s", r.Read("street"))
	assert.Equal(t, "", r.Read("city"))
	assert.True(t, contracts.IsMissing(r.Read("City")))

	_, ok = contracts.NewStructReader("nope")
	assert.False(t, ok)
}

func TestSequence(t *testing.T) {
	items, ok := contracts.Sequence([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, items)

	items, ok = contracts.Sequence([2]string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, items)

	for _, v := range []any{"text", []byte("raw"), map[string]any{}, 3, nil} {
		_, ok := contracts.Sequence(v)
		assert.False(t, ok, "%T", v)
	}
}

func TestMapWriter(t *testing.T) {
	w := contracts.NewMapWriter()
	w.Write("a", 1)
	w.Write("a", 2)
	w.Write("b", nil)
	assert.Equal(t, map[string]any{"a": 2, "b": nil}, w.Data())
}
