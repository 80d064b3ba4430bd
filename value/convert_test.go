package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDriverValueNull(t *testing.T) {
	v, err := FromDriverValue(nil, KindInt64)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.Equal(t, KindInt64, v.Kind())
}

func TestFromDriverValueScalars(t *testing.T) {
	t.Run("bool from bool", func(t *testing.T) {
		v, err := FromDriverValue(true, KindBool)
		require.NoError(t, err)
		b, _ := v.Bool()
		assert.True(t, b)
	})

	t.Run("bool from int64", func(t *testing.T) {
		v, err := FromDriverValue(int64(1), KindBool)
		require.NoError(t, err)
		b, _ := v.Bool()
		assert.True(t, b)
	})

	t.Run("signed int within range", func(t *testing.T) {
		v, err := FromDriverValue(int64(100), KindInt8)
		require.NoError(t, err)
		i, _ := v.Int8()
		assert.Equal(t, int8(100), i)
	})

	t.Run("signed int out of range", func(t *testing.T) {
		_, err := FromDriverValue(int64(1000), KindInt8)
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})

	t.Run("unsigned int negative fails", func(t *testing.T) {
		_, err := FromDriverValue(int64(-1), KindUint32)
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})

	t.Run("float from int64", func(t *testing.T) {
		v, err := FromDriverValue(int64(7), KindFloat64)
		require.NoError(t, err)
		f, _ := v.Float64()
		assert.Equal(t, 7.0, f)
	})

	t.Run("string from bytes", func(t *testing.T) {
		v, err := FromDriverValue([]byte("hi"), KindString)
		require.NoError(t, err)
		s, _ := v.Str()
		assert.Equal(t, "hi", s)
	})

	t.Run("bytes from string", func(t *testing.T) {
		v, err := FromDriverValue("raw", KindBytes)
		require.NoError(t, err)
		b, _ := v.Bytes()
		assert.Equal(t, []byte("raw"), b)
	})

	t.Run("json passthrough", func(t *testing.T) {
		v, err := FromDriverValue([]byte(`{"a":1}`), KindJSON)
		require.NoError(t, err)
		b, _ := v.Bytes()
		assert.JSONEq(t, `{"a":1}`, string(b))
	})

	t.Run("decimal from string", func(t *testing.T) {
		v, err := FromDriverValue("3.50", KindDecimal)
		require.NoError(t, err)
		d, _ := v.Decimal()
		assert.Equal(t, "3.5", d.String())
	})

	t.Run("decimal parse failure", func(t *testing.T) {
		_, err := FromDriverValue("not-a-number", KindDecimal)
		assert.Error(t, err)
	})

	t.Run("big decimal from string", func(t *testing.T) {
		v, err := FromDriverValue("1/3", KindBigDecimal)
		require.NoError(t, err)
		r, _ := v.BigDecimal()
		assert.Equal(t, "1/3", r.RatString())
	})

	t.Run("time from time.Time", func(t *testing.T) {
		now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
		v, err := FromDriverValue(now, KindTime)
		require.NoError(t, err)
		got, _ := v.Time()
		assert.True(t, now.Equal(got))
	})

	t.Run("naive date time from time.Time", func(t *testing.T) {
		now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
		v, err := FromDriverValue(now, KindNaiveDateTime)
		require.NoError(t, err)
		_, err = v.NaiveDateTime()
		assert.NoError(t, err)
	})

	t.Run("uuid from string", func(t *testing.T) {
		v, err := FromDriverValue("123e4567-e89b-12d3-a456-426614174000", KindUUID)
		require.NoError(t, err)
		_, err = v.UUID()
		assert.NoError(t, err)
	})

	t.Run("uuid parse failure", func(t *testing.T) {
		_, err := FromDriverValue("not-a-uuid", KindUUID)
		assert.Error(t, err)
	})

	t.Run("ip net from cidr string", func(t *testing.T) {
		v, err := FromDriverValue("10.0.0.0/24", KindIPNet)
		require.NoError(t, err)
		p, _ := v.IPNet()
		assert.Equal(t, 24, p.Bits())
	})

	t.Run("ip net from bare address", func(t *testing.T) {
		v, err := FromDriverValue("10.0.0.1", KindIPNet)
		require.NoError(t, err)
		p, _ := v.IPNet()
		assert.Equal(t, 32, p.Bits())
	})

	t.Run("unsupported kind", func(t *testing.T) {
		_, err := FromDriverValue(int64(1), KindArray)
		var unsupported *UnsupportedError
		assert.ErrorAs(t, err, &unsupported)
	})
}

func TestToDriverValueNull(t *testing.T) {
	raw, err := ToDriverValue(Null(KindString))
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestToDriverValueScalars(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		raw, err := ToDriverValue(NewBool(true))
		require.NoError(t, err)
		assert.Equal(t, true, raw)
	})

	t.Run("int64", func(t *testing.T) {
		raw, err := ToDriverValue(NewInt64(42))
		require.NoError(t, err)
		assert.Equal(t, int64(42), raw)
	})

	t.Run("uint32 widens to int64", func(t *testing.T) {
		raw, err := ToDriverValue(NewUint32(7))
		require.NoError(t, err)
		assert.Equal(t, int64(7), raw)
	})

	t.Run("uint64 overflow fails", func(t *testing.T) {
		_, err := ToDriverValue(NewUint64(18446744073709551615))
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})

	t.Run("string", func(t *testing.T) {
		raw, err := ToDriverValue(NewString("hi"))
		require.NoError(t, err)
		assert.Equal(t, "hi", raw)
	})

	t.Run("bytes", func(t *testing.T) {
		raw, err := ToDriverValue(NewBytes([]byte("raw")))
		require.NoError(t, err)
		assert.Equal(t, []byte("raw"), raw)
	})
}

func TestDriverValueRoundTrip(t *testing.T) {
	kinds := []struct {
		kind Kind
		raw  any
	}{
		{KindInt64, int64(42)},
		{KindUint32, int64(7)},
		{KindFloat64, 3.25},
		{KindString, "hello"},
		{KindBytes, []byte("raw")},
	}
	for _, tc := range kinds {
		v, err := FromDriverValue(tc.raw, tc.kind)
		require.NoError(t, err)
		back, err := ToDriverValue(v)
		require.NoError(t, err)
		assert.Equal(t, tc.raw, back)
	}
}
