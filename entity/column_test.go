package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/velox/value"
)

func TestColumnTypeKind(t *testing.T) {
	cases := []struct {
		ct   ColumnType
		want value.Kind
	}{
		{ColumnTypeBoolean, value.KindBool},
		{ColumnTypeTinyInt, value.KindInt8},
		{ColumnTypeSmallInt, value.KindInt16},
		{ColumnTypeInt, value.KindInt32},
		{ColumnTypeBigInt, value.KindInt64},
		{ColumnTypeTinyUnsigned, value.KindUint8},
		{ColumnTypeSmallUnsigned, value.KindUint16},
		{ColumnTypeUnsigned, value.KindUint32},
		{ColumnTypeBigUnsigned, value.KindUint64},
		{ColumnTypeFloat, value.KindFloat32},
		{ColumnTypeDouble, value.KindFloat64},
		{ColumnTypeDecimal, value.KindDecimal},
		{ColumnTypeBigDecimal, value.KindBigDecimal},
		{ColumnTypeVarchar, value.KindString},
		{ColumnTypeText, value.KindString},
		{ColumnTypeUUIDText, value.KindString},
		{ColumnTypeEnum, value.KindString},
		{ColumnTypeBinary, value.KindBytes},
		{ColumnTypeBlob, value.KindBytes},
		{ColumnTypeJSON, value.KindJSON},
		{ColumnTypeJSONB, value.KindJSON},
		{ColumnTypeDate, value.KindNaiveDate},
		{ColumnTypeDateTime, value.KindNaiveDateTime},
		{ColumnTypeTimestamp, value.KindNaiveDateTime},
		{ColumnTypeTimestampWithTimeZone, value.KindTime},
		{ColumnTypeUUID, value.KindUUID},
		{ColumnTypeINet, value.KindIPNet},
		{ColumnTypeCIDR, value.KindIPNet},
		{ColumnTypeArray, value.KindArray},
		{ColumnTypeInvalid, value.KindInvalid},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.ct.Kind(), "ColumnType %s", tc.ct)
	}
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "bigint", ColumnTypeBigInt.String())
	assert.Equal(t, "timestamptz", ColumnTypeTimestampWithTimeZone.String())
	assert.Equal(t, "invalid", ColumnType(255).String())
}

func TestColumnBuilders(t *testing.T) {
	c := Col("email", ColumnTypeVarchar)
	assert.False(t, c.Nullable)
	assert.False(t, c.Unique)
	assert.False(t, c.AutoIncrement)

	nullable := c.AsNullable()
	assert.True(t, nullable.Nullable)
	assert.False(t, c.Nullable, "AsNullable must not mutate the receiver")

	unique := c.AsUnique()
	assert.True(t, unique.Unique)
	assert.False(t, c.Unique, "AsUnique must not mutate the receiver")

	autoInc := Col("id", ColumnTypeBigInt).AsAutoIncrement()
	assert.True(t, autoInc.AutoIncrement)

	def := value.NewInt64(0)
	withDefault := c.WithDefault(def)
	if assert.NotNil(t, withDefault.Default) {
		assert.True(t, def.Kind() == withDefault.Default.Kind())
	}
	assert.Nil(t, c.Default, "WithDefault must not mutate the receiver")
}
