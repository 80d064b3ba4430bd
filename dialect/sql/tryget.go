package sql

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	bigrat "math/big"

	"github.com/syssam/velox/entity"
	"github.com/syssam/velox/value"
)

// ErrTryGetNull is the sentinel TryGet wraps into a *TryGetError when the
// requested column holds SQL NULL. A NULL and a legitimate Go zero value are
// otherwise indistinguishable once decoded, so callers needing to tell them
// apart check errors.Is(err, ErrTryGetNull) (or use FromQueryResultOptional,
// which makes that check for an entire row at once).
var ErrTryGetNull = errors.New("dialect/sql: column is null")

// TryGetError wraps a TryGet/FromQueryResult decode failure: a missing
// column, a NULL in a non-optional destination (wrapping ErrTryGetNull), or
// a value.FromDriverValue/typed-accessor conversion error.
type TryGetError struct {
	Prefix string
	Column string
	Err    error
}

func (e *TryGetError) Error() string {
	return fmt.Sprintf("dialect/sql: try_get %s%s: %v", e.Prefix, e.Column, e.Err)
}
func (e *TryGetError) Unwrap() error { return e.Err }

// NewTryGetError returns a new TryGetError.
func NewTryGetError(prefix, column string, err error) *TryGetError {
	return &TryGetError{Prefix: prefix, Column: column, Err: err}
}

// IsTryGetError returns true if err is a TryGetError.
func IsTryGetError(err error) bool {
	if err == nil {
		return false
	}
	var e *TryGetError
	return errors.As(err, &e)
}

// RawRow is a single already-scanned result row, keyed by column name exactly
// as projected by the query (including any "A_"/"B_"-style join prefix).
// Decoding here always operates over a RawRow rather than a live *Rows,
// since database/sql requires scanning every column of a row in one Scan
// call - there is no way to re-read a single column lazily afterward.
type RawRow map[string]any

// ScanRawRows scans every row of rows into a RawRow keyed by column name,
// the snapshot TryGet/FromQueryResult decode against.
func ScanRawRows(rows *Rows) ([]RawRow, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: reading columns: %w", err)
	}
	var out []RawRow
	for rows.Next() {
		raws := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range raws {
			dests[i] = &raws[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scanning row: %w", err)
		}
		row := make(RawRow, len(columns))
		for i, col := range columns {
			row[col] = raws[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TryGet decodes the column named prefix+column out of row as a value.Value
// of the given kind, then extracts it as T. It returns a *TryGetError
// wrapping ErrTryGetNull if the column is SQL NULL, and a *TryGetError
// wrapping the underlying conversion error for any other decode failure -
// the Null/DbErr split a row decoder is expected to make.
func TryGet[T any](row RawRow, prefix, column string, kind value.Kind) (T, error) {
	var zero T
	raw, ok := row[prefix+column]
	if !ok {
		return zero, NewTryGetError(prefix, column, fmt.Errorf("column not present in result set"))
	}
	v, err := value.FromDriverValue(raw, kind)
	if err != nil {
		return zero, NewTryGetError(prefix, column, err)
	}
	if v.IsNull() {
		return zero, NewTryGetError(prefix, column, ErrTryGetNull)
	}
	t, err := extractAs[T](v)
	if err != nil {
		return zero, NewTryGetError(prefix, column, err)
	}
	return t, nil
}

// extractAs pulls the Go type T out of v via its typed accessor. T must be
// one of the concrete Go types a value.Value can hold, or value.Value itself
// (a passthrough, for callers that want the tagged union rather than a bare
// Go value).
func extractAs[T any](v value.Value) (T, error) {
	var zero T
	var a any
	var err error
	switch any(zero).(type) {
	case bool:
		a, err = v.Bool()
	case int64:
		a, err = v.Int64()
	case int32:
		a, err = v.Int32()
	case int16:
		a, err = v.Int16()
	case int8:
		a, err = v.Int8()
	case uint64:
		a, err = v.Uint64()
	case uint32:
		a, err = v.Uint32()
	case uint16:
		a, err = v.Uint16()
	case uint8:
		a, err = v.Uint8()
	case float64:
		a, err = v.Float64()
	case float32:
		a, err = v.Float32()
	case string:
		a, err = v.Str()
	case []byte:
		a, err = v.Bytes()
	case decimal.Decimal:
		a, err = v.Decimal()
	case *bigrat.Rat:
		a, err = v.BigDecimal()
	case time.Time:
		a, err = v.Time()
	case civil.DateTime:
		a, err = v.NaiveDateTime()
	case civil.Date:
		a, err = v.NaiveDate()
	case uuid.UUID:
		a, err = v.UUID()
	case netip.Prefix:
		a, err = v.IPNet()
	case value.Value:
		a, err = v, error(nil)
	default:
		return zero, fmt.Errorf("unsupported destination type %T", zero)
	}
	if err != nil {
		return zero, err
	}
	return a.(T), nil
}

// FromQueryResult decodes row into a map of column name -> value.Value for
// every column ent declares, using prefix ("A_", "B_", ...) to disambiguate
// a joined query's columns. It fails with a *TryGetError wrapping
// ErrTryGetNull if a non-nullable column comes back NULL.
func FromQueryResult(row RawRow, prefix string, ent *entity.Entity) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(ent.Columns()))
	for _, col := range ent.Columns() {
		raw, ok := row[prefix+col.Name]
		if !ok {
			return nil, NewTryGetError(prefix, col.Name, fmt.Errorf("column not present in result set"))
		}
		v, err := value.FromDriverValue(raw, col.Type.Kind())
		if err != nil {
			return nil, NewTryGetError(prefix, col.Name, err)
		}
		if v.IsNull() && !col.Nullable {
			return nil, NewTryGetError(prefix, col.Name, ErrTryGetNull)
		}
		out[col.Name] = v
	}
	return out, nil
}

// FromQueryResultOptional is FromQueryResult, but returns (nil, nil) instead
// of an error when a non-nullable column is NULL - the convention used when
// row may represent "no matching related row" rather than a genuine decode
// failure (the right-hand side of a LEFT JOIN with no match).
func FromQueryResultOptional(row RawRow, prefix string, ent *entity.Entity) (map[string]value.Value, error) {
	out, err := FromQueryResult(row, prefix, ent)
	if err != nil {
		if errors.Is(err, ErrTryGetNull) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}
