package velox

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the interface for caching query results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey generates a cache key for a query.
type CacheKey struct {
	Table      string
	Operation  string
	Predicates string
	OrderBy    string
	Limit      int
	Offset     int
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Table + ":" + k.Operation + ":" + k.Predicates + ":" + k.OrderBy
}

// CachedRows is the payload stored under a CacheKey: a select result set
// serialized independent of any particular Go struct, since the engine has
// no generated per-entity types to decode into.
type CachedRows struct {
	Columns []string
	Rows    [][]any
}

// EncodeCachedRows serializes a result set for Cache.Set. msgpack is used
// instead of encoding/json so []byte/time.Time/decimal-shaped values round
// trip without the lossy detours JSON forces on them (numbers as
// float64, no byte-slice or timestamp type).
func EncodeCachedRows(rows CachedRows) ([]byte, error) {
	b, err := msgpack.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("velox: encoding cached rows: %w", err)
	}
	return b, nil
}

// DecodeCachedRows deserializes a payload previously written by
// EncodeCachedRows.
func DecodeCachedRows(data []byte) (CachedRows, error) {
	var rows CachedRows
	if err := msgpack.Unmarshal(data, &rows); err != nil {
		return CachedRows{}, fmt.Errorf("velox: decoding cached rows: %w", err)
	}
	return rows, nil
}
