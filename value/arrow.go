package value

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"
)

// arrowAllocator is the shared allocator used when building Arrow arrays for
// egress. A single allocator is safe for concurrent use; arrow-go pools and
// reference-counts buffers internally.
var arrowAllocator = memory.NewGoAllocator()

// FromArrowArray decodes the element at index i of arr into a Value of the
// given kind. It is the ingress half of the Arrow bridge: a caller accepting
// a RecordReader (e.g. a bulk-load table scan) walks each column with this
// function instead of hand-rolling a type switch per Arrow type.
func FromArrowArray(arr arrow.Array, i int, kind Kind) (Value, error) {
	if arr.IsNull(i) {
		return Null(kind), nil
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return NewBool(a.Value(i)), nil
	case *array.Int8:
		return Value{kind: KindInt8, i: int64(a.Value(i))}, nil
	case *array.Int16:
		return Value{kind: KindInt16, i: int64(a.Value(i))}, nil
	case *array.Int32:
		return Value{kind: KindInt32, i: int64(a.Value(i))}, nil
	case *array.Int64:
		return Value{kind: KindInt64, i: a.Value(i)}, nil
	case *array.Uint8:
		return Value{kind: KindUint8, u: uint64(a.Value(i))}, nil
	case *array.Uint16:
		return Value{kind: KindUint16, u: uint64(a.Value(i))}, nil
	case *array.Uint32:
		return Value{kind: KindUint32, u: uint64(a.Value(i))}, nil
	case *array.Uint64:
		return Value{kind: KindUint64, u: a.Value(i)}, nil
	case *array.Float32:
		return Value{kind: KindFloat32, f: float64(a.Value(i))}, nil
	case *array.Float64:
		return Value{kind: KindFloat64, f: a.Value(i)}, nil
	case *array.String:
		return NewString(a.Value(i)), nil
	case *array.LargeString:
		return NewString(a.Value(i)), nil
	case *array.Binary:
		return decodeBinary(a.Value(i), kind), nil
	case *array.Decimal128:
		return decodeDecimal128(a.Value(i), a.DataType().(*arrow.Decimal128Type).Scale), nil
	case *array.Decimal256:
		return decodeDecimal256(a.Value(i), a.DataType().(*arrow.Decimal256Type).Scale), nil
	case *array.Timestamp:
		dt := a.DataType().(*arrow.TimestampType)
		t, err := a.Value(i).ToTime(dt.Unit)
		if err != nil {
			return Value{}, fmt.Errorf("value: decoding arrow timestamp: %w", err)
		}
		if kind == KindNaiveDateTime {
			return FromDriverValue(t, KindNaiveDateTime)
		}
		return NewTime(t), nil
	case *array.Date32:
		return FromDriverValue(a.Value(i).ToTime(), kind)
	case *array.Date64:
		return FromDriverValue(a.Value(i).ToTime(), kind)
	default:
		return Value{}, NewUnsupportedError(kind, fmt.Sprintf("arrow type %T", arr))
	}
}

func decodeBinary(raw []byte, kind Kind) Value {
	if kind == KindJSON {
		return NewJSONRaw(raw)
	}
	return NewBytes(raw)
}

func decodeDecimal128(n decimal128.Num, scale int32) Value {
	d := decimal.NewFromBigInt(n.BigInt(), -scale)
	return NewDecimal(d)
}

func decodeDecimal256(n decimal256.Num, scale int32) Value {
	r := new(big.Rat).SetFrac(n.BigInt(), pow10(scale))
	return NewBigDecimal(r)
}

// pow10 returns 10^scale as a big.Int, treating a negative scale as zero.
func pow10(scale int32) *big.Int {
	if scale < 0 {
		scale = 0
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
}

// scaledBigInt returns d's unscaled coefficient rescaled to exactly `scale`
// fractional digits, via its fixed-point string representation rather than
// relying on a specific internal decimal.Decimal layout.
func scaledBigInt(d decimal.Decimal, scale int32) *big.Int {
	s := d.StringFixed(scale)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = strings.Replace(s, ".", "", 1)
	n := new(big.Int)
	n.SetString(s, 10)
	if neg {
		n.Neg(n)
	}
	return n
}

// scaledBigRat returns r rescaled to an integer coefficient at `scale`
// fractional digits, truncating toward zero if r has more precision than scale allows.
func scaledBigRat(r *big.Rat, scale int32) *big.Int {
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(pow10(scale)))
	return new(big.Int).Quo(scaled.Num(), scaled.Denom())
}

// ToArrowBuilder appends v to an Arrow array builder. The builder's
// concrete type must match v's Kind (Int64Builder for KindInt64, etc);
// callers construct the builder from the column's declared Arrow type.
func ToArrowBuilder(b array.Builder, v Value) error {
	if v.IsNull() {
		b.AppendNull()
		return nil
	}
	switch bb := b.(type) {
	case *array.BooleanBuilder:
		val, err := v.Bool()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Int8Builder:
		val, err := v.Int8()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Int16Builder:
		val, err := v.Int16()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Int32Builder:
		val, err := v.Int32()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Int64Builder:
		val, err := v.Int64()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Uint8Builder:
		val, err := v.Uint8()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Uint16Builder:
		val, err := v.Uint16()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Uint32Builder:
		val, err := v.Uint32()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Uint64Builder:
		val, err := v.Uint64()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Float32Builder:
		val, err := v.Float32()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Float64Builder:
		val, err := v.Float64()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.StringBuilder:
		switch v.Kind() {
		case KindString:
			val, err := v.Str()
			if err != nil {
				return err
			}
			bb.Append(val)
		default:
			return NewTypeMismatchError(v.Kind(), "string")
		}
	case *array.BinaryBuilder:
		val, err := v.Bytes()
		if err != nil {
			return err
		}
		bb.Append(val)
	case *array.Decimal128Builder:
		d, err := v.Decimal()
		if err != nil {
			return err
		}
		dt := bb.Type().(*arrow.Decimal128Type)
		n, err := decimal128.FromBigInt(scaledBigInt(d, dt.Scale))
		if err != nil {
			return fmt.Errorf("value: encoding decimal128: %w", err)
		}
		bb.Append(n)
	case *array.Decimal256Builder:
		r, err := v.BigDecimal()
		if err != nil {
			return err
		}
		dt := bb.Type().(*arrow.Decimal256Type)
		n := decimal256.FromBigInt(scaledBigRat(r, dt.Scale))
		bb.Append(n)
	case *array.TimestampBuilder:
		t, err := arrowTimeOf(v)
		if err != nil {
			return err
		}
		dt := bb.Type().(*arrow.TimestampType)
		ts, err := arrow.TimestampFromTime(t, dt.Unit)
		if err != nil {
			return fmt.Errorf("value: encoding arrow timestamp: %w", err)
		}
		bb.Append(ts)
	default:
		return NewUnsupportedError(v.Kind(), fmt.Sprintf("arrow builder %T", b))
	}
	return nil
}

// NewArrowBuilder returns a fresh builder for the given Arrow column type,
// using the package's shared allocator.
func NewArrowBuilder(dt arrow.DataType) array.Builder {
	return array.NewBuilder(arrowAllocator, dt)
}

func arrowTimeOf(v Value) (time.Time, error) {
	switch v.Kind() {
	case KindTime:
		return v.Time()
	case KindNaiveDateTime:
		dt, err := v.NaiveDateTime()
		if err != nil {
			return time.Time{}, err
		}
		return dt.In(time.UTC), nil
	default:
		return time.Time{}, NewTypeMismatchError(v.Kind(), "time")
	}
}
