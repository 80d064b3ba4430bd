package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/netip"
	"strconv"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	bigrat "math/big"
)

// ErrNull is returned by typed accessors when called on a null Value.
// Callers that need to distinguish "absent" from "wrong type" should check
// IsNull before calling a typed accessor.
var ErrNull = errors.New("value: value is null")

// Value is a tagged union capable of holding exactly one instance of any SQL
// value this engine round-trips: the supported scalar kinds, plus the
// Postgres-only array composite. A Value is immutable once constructed.
type Value struct {
	kind     Kind
	null     bool
	elemKind Kind // only meaningful when kind == KindArray

	b     bool
	i     int64  // backing store for all signed-integer kinds
	u     uint64 // backing store for all unsigned-integer kinds
	f     float64
	s     string
	bs    []byte
	other any // decimal.Decimal, *big.Rat, time.Time, civil.DateTime, civil.Date, uuid.UUID, netip.Prefix, []Value
}

// Kind reports which variant of the union v currently holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v represents SQL NULL for its kind.
func (v Value) IsNull() bool { return v.null }

// Null returns a NULL Value tagged with the given kind. The kind is
// preserved so that a NULL column value can still be round-tripped through
// the same conversion and Arrow-encoding paths as a non-null one.
func Null(k Kind) Value { return Value{kind: k, null: true} }

// NewBool returns a bool Value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt64 returns an int64 Value.
func NewInt64(i int64) Value { return Value{kind: KindInt64, i: i} }

// NewInt32 returns an int32 Value.
func NewInt32(i int32) Value { return Value{kind: KindInt32, i: int64(i)} }

// NewInt16 returns an int16 Value.
func NewInt16(i int16) Value { return Value{kind: KindInt16, i: int64(i)} }

// NewInt8 returns an int8 Value.
func NewInt8(i int8) Value { return Value{kind: KindInt8, i: int64(i)} }

// NewUint64 returns a uint64 Value.
func NewUint64(u uint64) Value { return Value{kind: KindUint64, u: u} }

// NewUint32 returns a uint32 Value.
func NewUint32(u uint32) Value { return Value{kind: KindUint32, u: uint64(u)} }

// NewUint16 returns a uint16 Value.
func NewUint16(u uint16) Value { return Value{kind: KindUint16, u: uint64(u)} }

// NewUint8 returns a uint8 Value.
func NewUint8(u uint8) Value { return Value{kind: KindUint8, u: uint64(u)} }

// NewFloat64 returns a float64 Value.
func NewFloat64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// NewFloat32 returns a float32 Value.
func NewFloat32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }

// NewString returns a string Value.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewBytes returns a bytes Value.
func NewBytes(b []byte) Value { return Value{kind: KindBytes, bs: b} }

// NewJSONRaw returns a JSON Value from already-marshaled bytes.
func NewJSONRaw(raw []byte) Value { return Value{kind: KindJSON, bs: raw} }

// NewJSON marshals v and returns a JSON Value.
func NewJSON(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return NewJSONRaw(raw), nil
}

// NewDecimal returns a fixed-precision decimal Value backed by shopspring/decimal.
func NewDecimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, other: d} }

// NewBigDecimal returns an arbitrary-precision decimal Value backed by math/big.Rat,
// for columns whose precision/scale exceeds what shopspring/decimal represents losslessly.
func NewBigDecimal(r *bigrat.Rat) Value { return Value{kind: KindBigDecimal, other: r} }

// NewTime returns a timezone-aware instant Value.
func NewTime(t time.Time) Value { return Value{kind: KindTime, other: t} }

// NewNaiveDateTime returns a timezone-less date/time Value.
func NewNaiveDateTime(dt civil.DateTime) Value { return Value{kind: KindNaiveDateTime, other: dt} }

// NewNaiveDate returns a date-only Value.
func NewNaiveDate(d civil.Date) Value { return Value{kind: KindNaiveDate, other: d} }

// NewUUID returns a UUID Value.
func NewUUID(id uuid.UUID) Value { return Value{kind: KindUUID, other: id} }

// NewIPNet returns a network-address Value (Postgres inet/cidr).
func NewIPNet(p netip.Prefix) Value { return Value{kind: KindIPNet, other: p} }

// NewArray returns a Postgres array Value. All elements must share elemKind;
// NewArray does not validate this - callers are expected to build arrays
// from a single typed column, where it holds by construction.
func NewArray(elemKind Kind, vs []Value) Value {
	return Value{kind: KindArray, elemKind: elemKind, other: vs}
}

// ElemKind returns the element kind of an array Value.
func (v Value) ElemKind() Kind { return v.elemKind }

// Bool returns the bool held by v.
func (v Value) Bool() (bool, error) {
	if v.null {
		return false, ErrNull
	}
	if v.kind != KindBool {
		return false, NewTypeMismatchError(v.kind, "bool")
	}
	return v.b, nil
}

// signedBase returns v's integer magnitude as an int64 regardless of whether
// it is backed by a signed or unsigned kind, failing if an unsigned value
// would overflow int64.
func (v Value) signedBase() (int64, error) {
	if v.null {
		return 0, ErrNull
	}
	if !v.kind.isInteger() {
		return 0, NewTypeMismatchError(v.kind, "integer")
	}
	if v.kind.isSigned() {
		return v.i, nil
	}
	if v.u > math.MaxInt64 {
		return 0, NewOutOfRangeError(v.u, v.kind, KindInt64)
	}
	return int64(v.u), nil
}

// Int64 returns v's value widened/narrowed losslessly to int64, or an error
// if v is not an integer kind or an unsigned value would overflow.
func (v Value) Int64() (int64, error) { return v.signedBase() }

// Int32 returns v's value narrowed to int32, failing rather than truncating
// if it does not fit.
func (v Value) Int32() (int32, error) {
	i, err := v.signedBase()
	if err != nil {
		return 0, err
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, NewOutOfRangeError(i, v.kind, KindInt32)
	}
	return int32(i), nil
}

// Int16 returns v's value narrowed to int16.
func (v Value) Int16() (int16, error) {
	i, err := v.signedBase()
	if err != nil {
		return 0, err
	}
	if i < math.MinInt16 || i > math.MaxInt16 {
		return 0, NewOutOfRangeError(i, v.kind, KindInt16)
	}
	return int16(i), nil
}

// Int8 returns v's value narrowed to int8.
func (v Value) Int8() (int8, error) {
	i, err := v.signedBase()
	if err != nil {
		return 0, err
	}
	if i < math.MinInt8 || i > math.MaxInt8 {
		return 0, NewOutOfRangeError(i, v.kind, KindInt8)
	}
	return int8(i), nil
}

// unsignedBase returns v's integer magnitude as a uint64, failing if v is
// signed and negative.
func (v Value) unsignedBase() (uint64, error) {
	if v.null {
		return 0, ErrNull
	}
	if !v.kind.isInteger() {
		return 0, NewTypeMismatchError(v.kind, "integer")
	}
	if !v.kind.isSigned() {
		return v.u, nil
	}
	if v.i < 0 {
		return 0, NewOutOfRangeError(v.i, v.kind, KindUint64)
	}
	return uint64(v.i), nil
}

// Uint64 returns v's value as a uint64.
func (v Value) Uint64() (uint64, error) { return v.unsignedBase() }

// Uint32 returns v's value narrowed to uint32.
func (v Value) Uint32() (uint32, error) {
	u, err := v.unsignedBase()
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, NewOutOfRangeError(u, v.kind, KindUint32)
	}
	return uint32(u), nil
}

// Uint16 returns v's value narrowed to uint16.
func (v Value) Uint16() (uint16, error) {
	u, err := v.unsignedBase()
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint16 {
		return 0, NewOutOfRangeError(u, v.kind, KindUint16)
	}
	return uint16(u), nil
}

// Uint8 returns v's value narrowed to uint8.
func (v Value) Uint8() (uint8, error) {
	u, err := v.unsignedBase()
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint8 {
		return 0, NewOutOfRangeError(u, v.kind, KindUint8)
	}
	return uint8(u), nil
}

// Float64 returns v's value as a float64.
func (v Value) Float64() (float64, error) {
	if v.null {
		return 0, ErrNull
	}
	if !v.kind.isFloat() {
		return 0, NewTypeMismatchError(v.kind, "float")
	}
	return v.f, nil
}

// Float32 returns v's value narrowed to float32, failing if precision would be lost.
func (v Value) Float32() (float32, error) {
	f, err := v.Float64()
	if err != nil {
		return 0, err
	}
	f32 := float32(f)
	if float64(f32) != f {
		return 0, NewOutOfRangeError(f, v.kind, KindFloat32)
	}
	return f32, nil
}

// Str returns v's string.
func (v Value) Str() (string, error) {
	if v.null {
		return "", ErrNull
	}
	if v.kind != KindString {
		return "", NewTypeMismatchError(v.kind, "string")
	}
	return v.s, nil
}

// String renders v for logging and debugging. It is not a data accessor;
// use the typed accessors (Str, Int64, ...) to read v's value.
func (v Value) String() string {
	if v.null {
		return "NULL(" + v.kind.String() + ")"
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindBytes:
		return fmt.Sprintf("0x%x", v.bs)
	case KindJSON:
		return string(v.bs)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		if v.kind.isSigned() {
			return strconv.FormatInt(v.i, 10)
		}
		if v.kind.isInteger() {
			return strconv.FormatUint(v.u, 10)
		}
		if v.kind.isFloat() {
			return strconv.FormatFloat(v.f, 'g', -1, 64)
		}
		return fmt.Sprintf("%v", v.other)
	}
}

// Bytes returns v's raw bytes (works for KindBytes and KindJSON).
func (v Value) Bytes() ([]byte, error) {
	if v.null {
		return nil, ErrNull
	}
	if v.kind != KindBytes && v.kind != KindJSON {
		return nil, NewTypeMismatchError(v.kind, "bytes")
	}
	return v.bs, nil
}

// Decimal returns v's fixed-precision decimal.
func (v Value) Decimal() (decimal.Decimal, error) {
	if v.null {
		return decimal.Decimal{}, ErrNull
	}
	if v.kind != KindDecimal {
		return decimal.Decimal{}, NewTypeMismatchError(v.kind, "decimal")
	}
	return v.other.(decimal.Decimal), nil
}

// BigDecimal returns v's arbitrary-precision decimal.
func (v Value) BigDecimal() (*bigrat.Rat, error) {
	if v.null {
		return nil, ErrNull
	}
	if v.kind != KindBigDecimal {
		return nil, NewTypeMismatchError(v.kind, "big_decimal")
	}
	return v.other.(*bigrat.Rat), nil
}

// Time returns v's timezone-aware instant.
func (v Value) Time() (time.Time, error) {
	if v.null {
		return time.Time{}, ErrNull
	}
	if v.kind != KindTime {
		return time.Time{}, NewTypeMismatchError(v.kind, "time")
	}
	return v.other.(time.Time), nil
}

// NaiveDateTime returns v's timezone-less date/time.
func (v Value) NaiveDateTime() (civil.DateTime, error) {
	if v.null {
		return civil.DateTime{}, ErrNull
	}
	if v.kind != KindNaiveDateTime {
		return civil.DateTime{}, NewTypeMismatchError(v.kind, "naive_date_time")
	}
	return v.other.(civil.DateTime), nil
}

// NaiveDate returns v's date-only value.
func (v Value) NaiveDate() (civil.Date, error) {
	if v.null {
		return civil.Date{}, ErrNull
	}
	if v.kind != KindNaiveDate {
		return civil.Date{}, NewTypeMismatchError(v.kind, "naive_date")
	}
	return v.other.(civil.Date), nil
}

// UUID returns v's UUID.
func (v Value) UUID() (uuid.UUID, error) {
	if v.null {
		return uuid.UUID{}, ErrNull
	}
	if v.kind != KindUUID {
		return uuid.UUID{}, NewTypeMismatchError(v.kind, "uuid")
	}
	return v.other.(uuid.UUID), nil
}

// IPNet returns v's network address/prefix.
func (v Value) IPNet() (netip.Prefix, error) {
	if v.null {
		return netip.Prefix{}, ErrNull
	}
	if v.kind != KindIPNet {
		return netip.Prefix{}, NewTypeMismatchError(v.kind, "ip_net")
	}
	return v.other.(netip.Prefix), nil
}

// Array returns v's element Values.
func (v Value) Array() ([]Value, error) {
	if v.null {
		return nil, ErrNull
	}
	if v.kind != KindArray {
		return nil, NewTypeMismatchError(v.kind, "array")
	}
	return v.other.([]Value), nil
}
