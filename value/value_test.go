package value

import (
	"math/big"
	"net/netip"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValueConstructorsRoundTrip(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		v := NewBool(true)
		assert.Equal(t, KindBool, v.Kind())
		b, err := v.Bool()
		assert.NoError(t, err)
		assert.True(t, b)
	})

	t.Run("int64", func(t *testing.T) {
		v := NewInt64(-42)
		i, err := v.Int64()
		assert.NoError(t, err)
		assert.Equal(t, int64(-42), i)
	})

	t.Run("uint32", func(t *testing.T) {
		v := NewUint32(7)
		u, err := v.Uint32()
		assert.NoError(t, err)
		assert.Equal(t, uint32(7), u)
	})

	t.Run("float64", func(t *testing.T) {
		v := NewFloat64(3.25)
		f, err := v.Float64()
		assert.NoError(t, err)
		assert.Equal(t, 3.25, f)
	})

	t.Run("string", func(t *testing.T) {
		v := NewString("hello")
		s, err := v.Str()
		assert.NoError(t, err)
		assert.Equal(t, "hello", s)
	})

	t.Run("bytes", func(t *testing.T) {
		v := NewBytes([]byte("raw"))
		b, err := v.Bytes()
		assert.NoError(t, err)
		assert.Equal(t, []byte("raw"), b)
	})

	t.Run("json", func(t *testing.T) {
		v, err := NewJSON(map[string]int{"a": 1})
		assert.NoError(t, err)
		b, err := v.Bytes()
		assert.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(b))
	})

	t.Run("decimal", func(t *testing.T) {
		d := decimal.NewFromFloat(1.5)
		v := NewDecimal(d)
		got, err := v.Decimal()
		assert.NoError(t, err)
		assert.True(t, d.Equal(got))
	})

	t.Run("big decimal", func(t *testing.T) {
		r := big.NewRat(1, 3)
		v := NewBigDecimal(r)
		got, err := v.BigDecimal()
		assert.NoError(t, err)
		assert.Equal(t, 0, r.Cmp(got))
	})

	t.Run("time", func(t *testing.T) {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		v := NewTime(now)
		got, err := v.Time()
		assert.NoError(t, err)
		assert.True(t, now.Equal(got))
	})

	t.Run("naive date time", func(t *testing.T) {
		dt := civil.DateTimeOf(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
		v := NewNaiveDateTime(dt)
		got, err := v.NaiveDateTime()
		assert.NoError(t, err)
		assert.Equal(t, dt, got)
	})

	t.Run("naive date", func(t *testing.T) {
		d := civil.DateOf(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
		v := NewNaiveDate(d)
		got, err := v.NaiveDate()
		assert.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("uuid", func(t *testing.T) {
		id := uuid.New()
		v := NewUUID(id)
		got, err := v.UUID()
		assert.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("ip net", func(t *testing.T) {
		p := netip.MustParsePrefix("10.0.0.0/24")
		v := NewIPNet(p)
		got, err := v.IPNet()
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("array", func(t *testing.T) {
		elems := []Value{NewInt64(1), NewInt64(2), NewInt64(3)}
		v := NewArray(KindInt64, elems)
		assert.Equal(t, KindInt64, v.ElemKind())
		got, err := v.Array()
		assert.NoError(t, err)
		assert.Equal(t, elems, got)
	})
}

func TestValueNull(t *testing.T) {
	v := Null(KindString)
	assert.True(t, v.IsNull())
	assert.Equal(t, KindString, v.Kind())

	_, err := v.Str()
	assert.ErrorIs(t, err, ErrNull)
}

func TestValueWrongKindAccessor(t *testing.T) {
	v := NewString("x")
	_, err := v.Int64()
	var mismatch *TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, KindString, mismatch.Kind)
}

func TestValueIntegerNarrowing(t *testing.T) {
	t.Run("fits", func(t *testing.T) {
		v := NewInt64(100)
		i8, err := v.Int8()
		assert.NoError(t, err)
		assert.Equal(t, int8(100), i8)
	})

	t.Run("overflow fails rather than truncates", func(t *testing.T) {
		v := NewInt64(1000)
		_, err := v.Int8()
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})

	t.Run("unsigned base rejects negative", func(t *testing.T) {
		v := NewInt64(-1)
		_, err := v.Uint64()
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})

	t.Run("uint64 overflow on signed widen", func(t *testing.T) {
		v := NewUint64(18446744073709551615) // math.MaxUint64
		_, err := v.Int64()
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})
}

func TestValueFloat32Narrowing(t *testing.T) {
	t.Run("fits", func(t *testing.T) {
		v := NewFloat64(1.5)
		f, err := v.Float32()
		assert.NoError(t, err)
		assert.Equal(t, float32(1.5), f)
	})

	t.Run("precision loss fails", func(t *testing.T) {
		v := NewFloat64(1.0000000000000002)
		_, err := v.Float32()
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})
}

func TestValueString(t *testing.T) {
	t.Run("null renders kind", func(t *testing.T) {
		assert.Equal(t, "NULL(int64)", Null(KindInt64).String())
	})

	t.Run("string kind renders raw", func(t *testing.T) {
		assert.Equal(t, "hello", NewString("hello").String())
	})

	t.Run("bool kind renders as text", func(t *testing.T) {
		assert.Equal(t, "true", NewBool(true).String())
	})

	t.Run("int kind renders as text", func(t *testing.T) {
		assert.Equal(t, "42", NewInt64(42).String())
	})
}
