package value

import (
	"fmt"
	"math"
	"net/netip"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	bigrat "math/big"
)

// FromDriverValue decodes a raw value produced by database/sql (which
// normalizes driver.Value to one of int64, float64, bool, []byte, string,
// time.Time, or nil) into a Value of the given kind. The conversion never
// silently narrows: an integer column whose stored value does not fit the
// declared kind's width returns an OutOfRangeError rather than truncating.
func FromDriverValue(raw any, kind Kind) (Value, error) {
	if raw == nil {
		return Null(kind), nil
	}
	switch kind {
	case KindBool:
		return fromBool(raw)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return fromSignedInt(raw, kind)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return fromUnsignedInt(raw, kind)
	case KindFloat32, KindFloat64:
		return fromFloat(raw, kind)
	case KindString:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		return NewString(s), nil
	case KindBytes:
		b, err := asBytes(raw)
		if err != nil {
			return Value{}, err
		}
		return NewBytes(b), nil
	case KindJSON:
		b, err := asBytes(raw)
		if err != nil {
			return Value{}, err
		}
		return NewJSONRaw(b), nil
	case KindDecimal:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, fmt.Errorf("value: parsing decimal %q: %w", s, err)
		}
		return NewDecimal(d), nil
	case KindBigDecimal:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		r, ok := new(bigrat.Rat).SetString(s)
		if !ok {
			return Value{}, fmt.Errorf("value: parsing big decimal %q", s)
		}
		return NewBigDecimal(r), nil
	case KindTime:
		t, err := asTime(raw)
		if err != nil {
			return Value{}, err
		}
		return NewTime(t), nil
	case KindNaiveDateTime:
		t, err := asTime(raw)
		if err != nil {
			return Value{}, err
		}
		return NewNaiveDateTime(civil.DateTimeOf(t)), nil
	case KindNaiveDate:
		t, err := asTime(raw)
		if err != nil {
			return Value{}, err
		}
		return NewNaiveDate(civil.DateOf(t)), nil
	case KindUUID:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return Value{}, fmt.Errorf("value: parsing uuid %q: %w", s, err)
		}
		return NewUUID(id), nil
	case KindIPNet:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		p, err := parseIPNet(s)
		if err != nil {
			return Value{}, err
		}
		return NewIPNet(p), nil
	default:
		return Value{}, NewUnsupportedError(kind, "FromDriverValue")
	}
}

func parseIPNet(s string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return p, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("value: parsing ip/network %q: %w", s, err)
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func fromBool(raw any) (Value, error) {
	switch r := raw.(type) {
	case bool:
		return NewBool(r), nil
	case int64:
		return NewBool(r != 0), nil
	default:
		return Value{}, fmt.Errorf("value: cannot decode %T as bool", raw)
	}
}

func fromSignedInt(raw any, kind Kind) (Value, error) {
	i, err := asInt64(raw)
	if err != nil {
		return Value{}, err
	}
	var lo, hi int64
	switch kind {
	case KindInt8:
		lo, hi = math.MinInt8, math.MaxInt8
	case KindInt16:
		lo, hi = math.MinInt16, math.MaxInt16
	case KindInt32:
		lo, hi = math.MinInt32, math.MaxInt32
	default:
		lo, hi = math.MinInt64, math.MaxInt64
	}
	if i < lo || i > hi {
		return Value{}, NewOutOfRangeError(i, KindInt64, kind)
	}
	return Value{kind: kind, i: i}, nil
}

func fromUnsignedInt(raw any, kind Kind) (Value, error) {
	i, err := asInt64(raw)
	if err != nil {
		return Value{}, err
	}
	if i < 0 {
		return Value{}, NewOutOfRangeError(i, KindInt64, kind)
	}
	u := uint64(i)
	var hi uint64
	switch kind {
	case KindUint8:
		hi = math.MaxUint8
	case KindUint16:
		hi = math.MaxUint16
	case KindUint32:
		hi = math.MaxUint32
	default:
		hi = math.MaxUint64
	}
	if u > hi {
		return Value{}, NewOutOfRangeError(u, KindUint64, kind)
	}
	return Value{kind: kind, u: u}, nil
}

func fromFloat(raw any, kind Kind) (Value, error) {
	var f float64
	switch r := raw.(type) {
	case float64:
		f = r
	case int64:
		f = float64(r)
	default:
		return Value{}, fmt.Errorf("value: cannot decode %T as float", raw)
	}
	if kind == KindFloat32 {
		f32 := float32(f)
		if float64(f32) != f {
			return Value{}, NewOutOfRangeError(f, KindFloat64, KindFloat32)
		}
	}
	return Value{kind: kind, f: f}, nil
}

func asInt64(raw any) (int64, error) {
	switch r := raw.(type) {
	case int64:
		return r, nil
	case int:
		return int64(r), nil
	case []byte:
		var i int64
		if _, err := fmt.Sscanf(string(r), "%d", &i); err != nil {
			return 0, fmt.Errorf("value: cannot decode %q as integer", r)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("value: cannot decode %T as integer", raw)
	}
}

func asString(raw any) (string, error) {
	switch r := raw.(type) {
	case string:
		return r, nil
	case []byte:
		return string(r), nil
	case time.Time:
		return r.Format(time.RFC3339Nano), nil
	default:
		return "", fmt.Errorf("value: cannot decode %T as string", raw)
	}
}

func asBytes(raw any) ([]byte, error) {
	switch r := raw.(type) {
	case []byte:
		return r, nil
	case string:
		return []byte(r), nil
	default:
		return nil, fmt.Errorf("value: cannot decode %T as bytes", raw)
	}
}

func asTime(raw any) (time.Time, error) {
	switch r := raw.(type) {
	case time.Time:
		return r, nil
	case string:
		return time.Parse(time.RFC3339Nano, r)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(r))
	default:
		return time.Time{}, fmt.Errorf("value: cannot decode %T as time", raw)
	}
}

// ToDriverValue encodes v as a value suitable for binding as a query argument
// via database/sql.
func ToDriverValue(v Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return v.i, nil
	case KindUint8, KindUint16, KindUint32:
		return int64(v.u), nil
	case KindUint64:
		if v.u > math.MaxInt64 {
			return nil, NewOutOfRangeError(v.u, KindUint64, KindInt64)
		}
		return int64(v.u), nil
	case KindFloat32, KindFloat64:
		return v.f, nil
	case KindString:
		return v.s, nil
	case KindBytes, KindJSON:
		return v.bs, nil
	case KindDecimal:
		d, _ := v.Decimal()
		return d.String(), nil
	case KindBigDecimal:
		r, _ := v.BigDecimal()
		return r.RatString(), nil
	case KindTime:
		t, _ := v.Time()
		return t, nil
	case KindNaiveDateTime:
		dt, _ := v.NaiveDateTime()
		return dt.String(), nil
	case KindNaiveDate:
		d, _ := v.NaiveDate()
		return d.String(), nil
	case KindUUID:
		id, _ := v.UUID()
		return id.String(), nil
	case KindIPNet:
		p, _ := v.IPNet()
		return p.String(), nil
	default:
		return nil, NewUnsupportedError(v.kind, "ToDriverValue")
	}
}
