// Package value implements the tagged-union scalar type that flows through
// every layer of the engine: column metadata, query arguments, driver rows,
// ActiveModel fields, and Arrow batches all exchange values as value.Value
// rather than as bare Go interface{} or database/sql.driver.Value, so that a
// narrowing conversion or a NULL is caught at the boundary instead of
// surfacing as a silently wrong number three calls later.
package value

// Kind identifies which variant of the tagged union a Value currently holds.
type Kind uint8

const (
	// KindInvalid is the zero value of Kind; a Value with this Kind has
	// never been constructed through one of the New* functions.
	KindInvalid Kind = iota

	KindBool

	KindInt8
	KindInt16
	KindInt32
	KindInt64

	KindUint8
	KindUint16
	KindUint32
	KindUint64

	KindFloat32
	KindFloat64

	KindString
	KindBytes
	KindJSON

	// KindDecimal holds a fixed-precision decimal backed by shopspring/decimal.
	KindDecimal
	// KindBigDecimal holds an arbitrary-precision decimal backed by math/big.Rat,
	// for columns whose declared precision/scale exceeds what shopspring/decimal
	// can represent losslessly.
	KindBigDecimal

	// KindTime holds a timezone-aware instant (time.Time).
	KindTime
	// KindNaiveDateTime holds a timezone-less civil date/time (golang-sql/civil),
	// for columns declared without a timezone (e.g. MySQL DATETIME, Postgres
	// "timestamp without time zone").
	KindNaiveDateTime
	// KindNaiveDate holds a civil.Date with no time-of-day component.
	KindNaiveDate

	KindUUID
	// KindIPNet holds a net/netip address or prefix, for Postgres inet/cidr columns.
	KindIPNet

	// KindArray holds a homogeneous slice of Values, valid only for
	// Postgres-family backends whose driver supports native array columns.
	KindArray
)

// String returns a human-readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindJSON:
		return "json"
	case KindDecimal:
		return "decimal"
	case KindBigDecimal:
		return "big_decimal"
	case KindTime:
		return "time"
	case KindNaiveDateTime:
		return "naive_date_time"
	case KindNaiveDate:
		return "naive_date"
	case KindUUID:
		return "uuid"
	case KindIPNet:
		return "ip_net"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// isInteger reports whether k is one of the signed or unsigned integer kinds.
func (k Kind) isInteger() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
	return false
}

// isSigned reports whether k is a signed integer kind.
func (k Kind) isSigned() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// isFloat reports whether k is a floating point kind.
func (k Kind) isFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}
