package fields_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/fields"
)

func date(y int, m time.Month, d int) fields.LocalDate {
	return fields.LocalDate{Year: y, Month: m, Day: d}
}

func TestDate_Load(t *testing.T) {
	f := fields.Date()
	cases := map[any]fields.LocalDate{
		"2001-01":             date(2001, 1, 1),
		"2001-01-20":          date(2001, 1, 20),
		"20010120":            date(2001, 1, 20),
		"2001-01-20T01:00:00": date(2001, 1, 20),
		date(2001, 1, 20):     date(2001, 1, 20),
		time.Date(2001, 1, 20, 12, 0, 0, 0, time.UTC): date(2001, 1, 20),
	}
	for in, want := range cases {
		got, err := f.Load(in)
		require.NoError(t, err, "%v", in)
		assert.Equal(t, want, got, "%v", in)
	}
}

func TestDate_LoadInvalid(t *testing.T) {
	f := fields.Date()
	for _, in := range []any{"", "abc", "2001-13-01", "2001-01-32", 20010120} {
		_, err := f.Load(in)
		require.Error(t, err, "%#v", in)
		assert.True(t, contracts.IsValidationError(err), "%#v", in)
	}
	_, err := f.Load("abc")
	assert.Equal(t, []any{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD, YYYYMMDD, YYYY-MM."},
		contracts.MessagesOf(err))
}

func TestDate_Dump(t *testing.T) {
	f := fields.Date()
	got, err := f.Dump(date(2001, 1, 20))
	require.NoError(t, err)
	assert.Equal(t, "2001-01-20", got)

	got, err = f.Dump(time.Date(2001, 1, 20, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2001-01-20", got)

	for _, in := range []any{"2001-01-20", "abc"} {
		_, err := f.Dump(in)
		assert.True(t, errors.Is(err, fields.ErrNotTemporal), "%#v", in)
	}
}

func TestDateTime_Load(t *testing.T) {
	f := fields.DateTime()
	cases := map[string]time.Time{
		"2001-01-01":              time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		"2001-01-01 13:00":        time.Date(2001, 1, 1, 13, 0, 0, 0, time.UTC),
		"2001-01-01T13:00:01":     time.Date(2001, 1, 1, 13, 0, 1, 0, time.UTC),
		"2001-01-01T13:00:01.001": time.Date(2001, 1, 1, 13, 0, 1, int(time.Millisecond), time.UTC),
		"2001-01-01T13:00Z":       time.Date(2001, 1, 1, 13, 0, 0, 0, time.UTC),
		"2001-01-01T13:00+00:00":  time.Date(2001, 1, 1, 13, 0, 0, 0, time.UTC),
		"2001-01-01T15:00+02:00":  time.Date(2001, 1, 1, 13, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := f.Load(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got.(time.Time)), "%s: got %v", in, got)
	}

	native := time.Date(2001, 1, 1, 13, 0, 0, 0, time.UTC)
	got, err := f.Load(native)
	require.NoError(t, err)
	assert.Equal(t, native, got)
}

func TestDateTime_DefaultTimezone(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	f := fields.DateTime(fields.DefaultTimezone(jst))

	got, err := f.Load("2001-01-01T13:00")
	require.NoError(t, err)
	tm := got.(time.Time)
	assert.True(t, time.Date(2001, 1, 1, 13, 0, 0, 0, jst).Equal(tm))

	dumped, err := f.Dump(tm)
	require.NoError(t, err)
	assert.Equal(t, "2001-01-01T13:00:00+09:00", dumped)

	// explicit offsets win over the default zone
	got, err = f.Load("2001-01-01T13:00Z")
	require.NoError(t, err)
	assert.True(t, time.Date(2001, 1, 1, 13, 0, 0, 0, time.UTC).Equal(got.(time.Time)))
}

func TestDateTime_LoadInvalid(t *testing.T) {
	f := fields.DateTime()
	for _, in := range []any{"", "abc", "2001-13-01", "2001-01-32", 20010120} {
		_, err := f.Load(in)
		var ve *contracts.ValidationError
		require.True(t, errors.As(err, &ve), "%#v", in)
		assert.Equal(t, contracts.KindInvalid, ve.Kind(), "%#v", in)
	}

	_, err := f.Load(date(2001, 1, 1))
	var ve *contracts.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, contracts.KindDate, ve.Kind())
	assert.Equal(t, []any{"Expected a datetime but got a date."}, ve.Messages())
}

func TestDateTime_Dump(t *testing.T) {
	f := fields.DateTime()
	got, err := f.Dump(time.Date(2001, 1, 1, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2001-01-01T13:00:00+00:00", got)

	got, err = f.Dump(time.Date(2001, 1, 1, 13, 0, 0, 500_000_000, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2001-01-01T13:00:00.5+00:00", got)

	loaded, err := f.Load("2001-01-01T13:00")
	require.NoError(t, err)
	got, err = f.Dump(loaded)
	require.NoError(t, err)
	assert.Equal(t, "2001-01-01T13:00:00+00:00", got)

	for _, in := range []any{"2001-01-01T13:00:00", 123} {
		_, err := f.Dump(in)
		assert.True(t, errors.Is(err, fields.ErrNotTemporal), "%#v", in)
	}
}

func TestLocalDate(t *testing.T) {
	d := date(987, time.March, 4)
	assert.Equal(t, "0987-03-04", d.String())
	assert.Equal(t, time.Date(987, 3, 4, 0, 0, 0, 0, time.UTC), d.In(time.UTC))
	assert.Equal(t, d, fields.DateOf(d.In(time.UTC)))
}
