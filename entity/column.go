// Package entity holds the reflective metadata the rest of the engine
// builds on: which tables and columns exist, their declared SQL types, their
// primary keys, and the relations between them. None of it is produced by
// code generation - entities are assembled at init time via New and
// its builder methods, the same way the query and ActiveModel layers expect.
package entity

import "github.com/syssam/velox/value"

// ColumnType identifies the SQL type a column was declared with. Several
// ColumnTypes can map to the same value.Kind (Char, Varchar and Text all
// decode to value.KindString); the distinction matters for drivers that
// need the declared width or for descriptive tooling.
type ColumnType uint8

const (
	ColumnTypeInvalid ColumnType = iota

	ColumnTypeBoolean

	ColumnTypeTinyInt
	ColumnTypeSmallInt
	ColumnTypeInt
	ColumnTypeBigInt
	ColumnTypeTinyUnsigned
	ColumnTypeSmallUnsigned
	ColumnTypeUnsigned
	ColumnTypeBigUnsigned

	ColumnTypeFloat
	ColumnTypeDouble

	ColumnTypeDecimal
	ColumnTypeBigDecimal

	ColumnTypeChar
	ColumnTypeVarchar
	ColumnTypeText
	ColumnTypeTinyText
	ColumnTypeMediumText
	ColumnTypeLongText

	ColumnTypeBinary
	ColumnTypeVarBinary
	ColumnTypeBlob

	ColumnTypeJSON
	ColumnTypeJSONB

	ColumnTypeDate
	ColumnTypeTime
	ColumnTypeDateTime
	ColumnTypeTimestamp
	ColumnTypeTimestampWithTimeZone

	ColumnTypeUUID
	ColumnTypeUUIDText

	ColumnTypeINet
	ColumnTypeCIDR

	ColumnTypeArray

	ColumnTypeEnum
	ColumnTypeCustom
)

// String renders the ColumnType's canonical SQL spelling, used by the
// query builder and by log/debug output.
func (c ColumnType) String() string {
	switch c {
	case ColumnTypeBoolean:
		return "boolean"
	case ColumnTypeTinyInt:
		return "tinyint"
	case ColumnTypeSmallInt:
		return "smallint"
	case ColumnTypeInt:
		return "int"
	case ColumnTypeBigInt:
		return "bigint"
	case ColumnTypeTinyUnsigned:
		return "tinyint unsigned"
	case ColumnTypeSmallUnsigned:
		return "smallint unsigned"
	case ColumnTypeUnsigned:
		return "int unsigned"
	case ColumnTypeBigUnsigned:
		return "bigint unsigned"
	case ColumnTypeFloat:
		return "float"
	case ColumnTypeDouble:
		return "double"
	case ColumnTypeDecimal:
		return "decimal"
	case ColumnTypeBigDecimal:
		return "numeric"
	case ColumnTypeChar:
		return "char"
	case ColumnTypeVarchar:
		return "varchar"
	case ColumnTypeText:
		return "text"
	case ColumnTypeTinyText:
		return "tinytext"
	case ColumnTypeMediumText:
		return "mediumtext"
	case ColumnTypeLongText:
		return "longtext"
	case ColumnTypeBinary:
		return "binary"
	case ColumnTypeVarBinary:
		return "varbinary"
	case ColumnTypeBlob:
		return "blob"
	case ColumnTypeJSON:
		return "json"
	case ColumnTypeJSONB:
		return "jsonb"
	case ColumnTypeDate:
		return "date"
	case ColumnTypeTime:
		return "time"
	case ColumnTypeDateTime:
		return "datetime"
	case ColumnTypeTimestamp:
		return "timestamp"
	case ColumnTypeTimestampWithTimeZone:
		return "timestamptz"
	case ColumnTypeUUID:
		return "uuid"
	case ColumnTypeUUIDText:
		return "uuid_text"
	case ColumnTypeINet:
		return "inet"
	case ColumnTypeCIDR:
		return "cidr"
	case ColumnTypeArray:
		return "array"
	case ColumnTypeEnum:
		return "enum"
	case ColumnTypeCustom:
		return "custom"
	default:
		return "invalid"
	}
}

// Kind returns the value.Kind used to decode/encode columns of this type.
func (c ColumnType) Kind() value.Kind {
	switch c {
	case ColumnTypeBoolean:
		return value.KindBool
	case ColumnTypeTinyInt:
		return value.KindInt8
	case ColumnTypeSmallInt:
		return value.KindInt16
	case ColumnTypeInt:
		return value.KindInt32
	case ColumnTypeBigInt:
		return value.KindInt64
	case ColumnTypeTinyUnsigned:
		return value.KindUint8
	case ColumnTypeSmallUnsigned:
		return value.KindUint16
	case ColumnTypeUnsigned:
		return value.KindUint32
	case ColumnTypeBigUnsigned:
		return value.KindUint64
	case ColumnTypeFloat:
		return value.KindFloat32
	case ColumnTypeDouble:
		return value.KindFloat64
	case ColumnTypeDecimal:
		return value.KindDecimal
	case ColumnTypeBigDecimal:
		return value.KindBigDecimal
	case ColumnTypeChar, ColumnTypeVarchar, ColumnTypeText,
		ColumnTypeTinyText, ColumnTypeMediumText, ColumnTypeLongText,
		ColumnTypeUUIDText, ColumnTypeEnum:
		return value.KindString
	case ColumnTypeBinary, ColumnTypeVarBinary, ColumnTypeBlob:
		return value.KindBytes
	case ColumnTypeJSON, ColumnTypeJSONB:
		return value.KindJSON
	case ColumnTypeDate:
		return value.KindNaiveDate
	case ColumnTypeDateTime:
		return value.KindNaiveDateTime
	case ColumnTypeTimestamp:
		return value.KindNaiveDateTime
	case ColumnTypeTimestampWithTimeZone:
		return value.KindTime
	case ColumnTypeUUID:
		return value.KindUUID
	case ColumnTypeINet, ColumnTypeCIDR:
		return value.KindIPNet
	case ColumnTypeArray:
		return value.KindArray
	default:
		return value.KindInvalid
	}
}

// Column describes a single table column: its SQL identity, declared type,
// nullability and any default.
type Column struct {
	Name          string
	Type          ColumnType
	ArrayElemType ColumnType // meaningful only when Type == ColumnTypeArray
	Nullable      bool
	Unique        bool
	AutoIncrement bool
	Default       *value.Value
	Comment       string
	// EnumValues lists the permitted values for ColumnTypeEnum columns.
	EnumValues []string
}

// Col is shorthand for building a non-nullable Column.
func Col(name string, t ColumnType) Column {
	return Column{Name: name, Type: t}
}

// AsNullable returns a copy of c marked nullable.
func (c Column) AsNullable() Column {
	c.Nullable = true
	return c
}

// AsUnique returns a copy of c marked unique.
func (c Column) AsUnique() Column {
	c.Unique = true
	return c
}

// AsAutoIncrement returns a copy of c marked auto-increment (only meaningful
// for integer primary key columns).
func (c Column) AsAutoIncrement() Column {
	c.AutoIncrement = true
	return c
}

// WithDefault returns a copy of c with the given default value.
func (c Column) WithDefault(v value.Value) Column {
	c.Default = &v
	return c
}
