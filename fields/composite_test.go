package fields_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/fields"
)

var pointDef = contracts.Define("Point").
	Field("x", fields.Integer()).
	Field("y", fields.Integer()).
	Field("label", fields.String(fields.Required(false))).
	MustBuild()

func TestList_Load(t *testing.T) {
	f := fields.List(fields.Integer())
	got, err := f.Load([]any{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, got)

	got, err = f.Load([]int{4, 5})
	require.NoError(t, err)
	assert.Equal(t, []any{4, 5}, got)

	got, err = f.Load([]any{})
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)
}

func TestList_CollectsEveryBadIndex(t *testing.T) {
	f := fields.List(fields.Integer())
	_, err := f.Load([]any{1, 2, "error"})
	var ce *contracts.ContractError
	require.True(t, errors.As(err, &ce), "got %T", err)
	assert.Equal(t, map[string]any{"2": []any{"A valid integer is required."}}, ce.Messages())

	_, err = f.Load([]any{"x", 1, "y"})
	assert.Equal(t, map[string]any{
		"0": []any{"A valid integer is required."},
		"2": []any{"A valid integer is required."},
	}, contracts.MessagesOf(err))

	_, err = f.Load([]any{1, nil})
	assert.Equal(t, map[string]any{"1": []any{"This field may not be null."}}, contracts.MessagesOf(err))
}

func TestList_NotAList(t *testing.T) {
	f := fields.List(fields.String())
	cases := map[any]string{
		"abc": `Expected a list of items but got type "string".`,
		5:     `Expected a list of items but got type "int".`,
	}
	for in, msg := range cases {
		_, err := f.Load(in)
		assert.Equal(t, []any{msg}, contracts.MessagesOf(err), "%#v", in)
	}
	_, err := f.Load(map[string]any{"a": 1})
	var ve *contracts.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, contracts.KindNotAList, ve.Kind())
}

func TestList_EmptyAndLength(t *testing.T) {
	_, err := fields.List(fields.String(), fields.AllowEmpty(false)).Load([]any{})
	assert.Equal(t, []any{"This list may not be empty."}, contracts.MessagesOf(err))

	f := fields.List(fields.String(), fields.MinLength(2), fields.MaxLength(3))
	_, err = f.Load([]any{"a"})
	assert.Equal(t, []any{"Shorter than minimum length 2."}, contracts.MessagesOf(err))
	_, err = f.Load([]any{"a", "b", "c", "d"})
	assert.Equal(t, []any{"Longer than maximum length 3."}, contracts.MessagesOf(err))
}

func TestList_Dump(t *testing.T) {
	f := fields.List(fields.Integer())
	got, err := f.Dump([]any{"1", 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, got)

	got, err = fields.List(fields.String()).Dump(map[string]int{"b": 1, "a": 2})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "a", "b"}, got)

	_, err = f.Dump([]any{1, "x"})
	require.Error(t, err)
	assert.False(t, contracts.IsValidationError(err))
	assert.True(t, strings.HasPrefix(err.Error(), "index 1:"), err.Error())

	_, err = f.Dump(42)
	assert.Error(t, err)
}

func TestList_OfNested(t *testing.T) {
	f := fields.List(fields.Nested(pointDef))
	_, err := f.Load([]any{
		map[string]any{"x": 1, "y": 2},
		map[string]any{"x": "a"},
	})
	assert.Equal(t, map[string]any{
		"1": map[string]any{
			"x": []any{"A valid integer is required."},
			"y": []any{"This field is required."},
		},
	}, contracts.MessagesOf(err))
	iss := contracts.IssuesOf(err)
	require.Len(t, iss, 2)
	assert.Equal(t, "/1/x", iss[0].Path)
}

func TestList_ClonesChildTemplate(t *testing.T) {
	child := fields.Integer()
	a := fields.List(child)
	b := fields.List(child)
	assert.NotSame(t, a.Child(), b.Child())
	assert.NotSame(t, child, a.Child())
}

func TestNested_Load(t *testing.T) {
	f := fields.Nested(pointDef)
	got, err := f.Load(map[string]any{"x": "1", "y": 2, "z": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, got)

	_, err = f.Load(map[string]any{"x": 1})
	var ce *contracts.ContractError
	require.True(t, errors.As(err, &ce), "the child's aggregate is returned as is")
	assert.Equal(t, map[string]any{"y": []any{"This field is required."}}, ce.Messages())

	_, err = f.Load("nope")
	assert.Equal(t, []any{"Invalid data. Expected a dictionary, but got string."}, contracts.MessagesOf(err))

	_, err = f.Load(nil)
	assert.Equal(t, []any{"This field may not be null."}, contracts.MessagesOf(err))
}

func TestNested_ManyAndRestrictions(t *testing.T) {
	f := fields.Nested(pointDef, fields.Many(true), fields.Only("x", "label"))
	assert.True(t, f.Many())
	got, err := f.Load([]any{map[string]any{"x": 1}, map[string]any{"x": 2, "y": "ignored"}})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"x": 1}, map[string]any{"x": 2}}, got)

	dumped, err := fields.Nested(pointDef, fields.Exclude("label")).Dump(map[string]any{"x": 1, "y": 2, "label": "p"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, dumped)

	c, err := fields.Nested(pointDef, fields.Only("nope")).Contract()
	assert.Nil(t, c)
	assert.True(t, contracts.IsConfigError(err))
}

func TestNested_BindBuildsEagerChild(t *testing.T) {
	def := contracts.Define("Shape").
		Field("origin", fields.Nested(pointDef, fields.Only("missing"))).
		MustBuild()
	_, err := contracts.New(def)
	assert.True(t, contracts.IsConfigError(err))
}

func TestNested_Lazy(t *testing.T) {
	var tree *contracts.Definition
	tree = contracts.Define("Tree").
		Field("name", fields.String()).
		Field("kids", fields.NestedLazy(func() *contracts.Definition { return tree },
			fields.Many(true), fields.Default(func() any { return []any{} }))).
		MustBuild()
	c := contracts.MustNew(tree)

	got, err := c.Load(map[string]any{
		"name": "root",
		"kids": []any{map[string]any{"name": "a"}, map[string]any{"name": ""}},
	})
	assert.Nil(t, got)
	assert.Equal(t, map[string]any{
		"kids": map[string]any{"1": map[string]any{"name": []any{"This field may not be blank."}}},
	}, contracts.MessagesOf(err))

	got, err = c.Load(map[string]any{"name": "leaf"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "leaf", "kids": []any{}}, got)

	broken := fields.NestedLazy(func() *contracts.Definition { return nil })
	_, err = broken.Load(map[string]any{})
	assert.True(t, contracts.IsConfigError(err))
}

func TestNested_RestrictAfterBind(t *testing.T) {
	f := fields.Nested(pointDef)
	require.NoError(t, f.Restrict([]string{"x"}, nil))
	require.NoError(t, f.Bind("p", contracts.MustNew(pointDef)))
	assert.True(t, contracts.IsConfigError(f.Restrict(nil, []string{"y"})))

	c, err := f.Contract()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, c.LoadFieldNames())
}

func TestConstructorsPanicOnMisuse(t *testing.T) {
	for name, fn := range map[string]func(){
		"list":     func() { fields.List(nil) },
		"nested":   func() { fields.Nested(nil) },
		"lazy":     func() { fields.NestedLazy(nil) },
		"function": func() { fields.Function(nil, nil) },
		"method":   func() { fields.Method("", "") },
		"options":  func() { fields.Raw(fields.DumpOnly(), fields.LoadOnly()) },
	} {
		assert.Panics(t, fn, name)
	}
}

func TestFunction(t *testing.T) {
	f := fields.Function(
		func(obj any) (any, error) { return len(obj.(map[string]any)), nil },
		func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, contracts.NewValidationError("Expected text.")
			}
			return strings.ToUpper(s), nil
		},
	)
	got, err := f.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", got)

	_, err = f.Load(1)
	assert.Equal(t, []any{"Expected text."}, contracts.MessagesOf(err))

	got, err = f.DumpObject(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	dumpOnly := fields.Function(func(any) (any, error) { return "x", nil }, nil)
	got, err = dumpOnly.Load("anything")
	require.NoError(t, err)
	assert.True(t, contracts.IsMissing(got))

	loadOnly := fields.Function(nil, func(v any) (any, error) { return v, nil })
	got, err = loadOnly.Dump(map[string]any{})
	require.NoError(t, err)
	assert.True(t, contracts.IsMissing(got))
}

func TestMethod_UnboundPanics(t *testing.T) {
	f := fields.Method("", "parse")
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, contracts.IsConfigError(err))
	}()
	_, _ = f.Load("x")
}

func TestMethod_BindResolves(t *testing.T) {
	def := contracts.Define("Temp").
		Field("celsius", fields.Float()).
		Field("fahrenheit", fields.Method("toF", "")).
		Method("toF", func(obj any) (any, error) {
			c, err := fields.ToFloat(obj.(map[string]any)["celsius"])
			if err != nil {
				return nil, err
			}
			return c*9/5 + 32, nil
		}).
		MustBuild()
	c := contracts.MustNew(def)
	out, err := c.Dump(map[string]any{"celsius": 100})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"celsius": 100.0, "fahrenheit": 212.0}, out)

	f := fields.Method("nope", "")
	err = f.Bind("x", c)
	assert.True(t, contracts.IsConfigError(err))
}
