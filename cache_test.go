package velox_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velox"
)

func TestCacheKeyString(t *testing.T) {
	k := velox.CacheKey{Table: "users", Operation: "select", Predicates: "id=1", OrderBy: "id"}
	assert.Equal(t, "users:select:id=1:id", k.String())
}

func TestEncodeDecodeCachedRows(t *testing.T) {
	rows := velox.CachedRows{
		Columns: []string{"id", "name"},
		Rows: [][]any{
			{int64(1), "ariel"},
			{int64(2), "kai"},
		},
	}

	data, err := velox.EncodeCachedRows(rows)
	require.NoError(t, err)

	got, err := velox.DecodeCachedRows(data)
	require.NoError(t, err)
	assert.Equal(t, rows.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.EqualValues(t, rows.Rows[0][0], got.Rows[0][0])
	assert.Equal(t, rows.Rows[0][1], got.Rows[0][1])
}

func TestDecodeCachedRowsRejectsGarbage(t *testing.T) {
	_, err := velox.DecodeCachedRows([]byte("not msgpack"))
	assert.Error(t, err)
}
