package sql

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// ScanSlice, ScanOne and ScanPairs bind query results straight into arbitrary
// caller-declared structs via struct tags - useful for ad hoc queries that
// aren't reading a full entity.Entity's columns. They cannot tell a NULL
// column apart from a real Go zero value on a plain (non-pointer,
// non-sql.Scanner) destination field, since there is no wider type to carry
// that distinction in. Code that needs the NULL/zero distinction - reading
// entity-declared columns, in particular - should decode with
// TryGet/FromQueryResult/FromQueryResultOptional instead, which decode
// through value.Value and make that distinction explicit.

// ScanSlice scans the rows into v, which must be a pointer to a slice of
// struct (or *struct) values. Destination fields are matched to result
// columns by their `sql:"column_name"` struct tag, falling back to the
// field name converted to snake_case. Entities in this project are declared at runtime
// rather than generated, so there is no generated Scan method per entity;
// this reflective scanner is what stands in its place.
func ScanSlice[T any](rows *Rows, v *[]T) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("dialect/sql: reading columns: %w", err)
	}
	for rows.Next() {
		var zero T
		rv := reflect.New(reflect.TypeOf(zero))
		dests, err := scanDests(rv.Elem(), columns)
		if err != nil {
			return err
		}
		if err := rows.Scan(dests...); err != nil {
			return fmt.Errorf("dialect/sql: scanning row: %w", err)
		}
		*v = append(*v, rv.Elem().Interface().(T))
	}
	return rows.Err()
}

// ScanOne scans exactly one row directly into dest (as database/sql.Rows.Scan would).
// It returns sql.ErrNoRows if the result set is empty.
func ScanOne(rows *Rows, dest ...any) error {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	return rows.Scan(dest...)
}

// scanDests builds a []any of addressable field pointers on rv (a struct
// value), ordered to match columns.
func scanDests(rv reflect.Value, columns []string) ([]any, error) {
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("dialect/sql: ScanSlice requires a slice of struct, got %s", rv.Kind())
	}
	rt := rv.Type()
	byName := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("sql")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = toSnakeCase(f.Name)
		}
		byName[tag] = i
	}
	dests := make([]any, len(columns))
	var discard any = new(any)
	for i, col := range columns {
		idx, ok := byName[col]
		if !ok {
			dests[i] = discard
			continue
		}
		dests[i] = rv.Field(idx).Addr().Interface()
	}
	return dests, nil
}

// ScanPairs scans the rows of a two-entity LEFT JOIN - columns prefixed
// "A_" for the left entity and "B_" for the right, the convention the
// sqlgraph join builder projects columns under - into (L, *R) pairs. R is
// nil for a row whose presenceColumn (the right entity's primary key,
// without its "B_" prefix) scanned NULL.
func ScanPairs[L, R any](rows *Rows, presenceColumn string) ([]Pair[L, R], error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: reading columns: %w", err)
	}
	var out []Pair[L, R]
	for rows.Next() {
		raws := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range raws {
			dests[i] = &raws[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scanning joined row: %w", err)
		}
		var lVal L
		var rVal R
		lrv := reflect.ValueOf(&lVal).Elem()
		rrv := reflect.ValueOf(&rVal).Elem()
		present := false
		for i, col := range columns {
			switch {
			case strings.HasPrefix(col, "A_"):
				setFieldByTag(lrv, strings.TrimPrefix(col, "A_"), raws[i])
			case strings.HasPrefix(col, "B_"):
				name := strings.TrimPrefix(col, "B_")
				if name == presenceColumn && raws[i] != nil {
					present = true
				}
				setFieldByTag(rrv, name, raws[i])
			}
		}
		p := Pair[L, R]{L: lVal}
		if present {
			p.R = &rVal
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Pair is a left model with its optional right-side match, the shape
// ScanPairs produces for a single LEFT JOIN between two entities.
type Pair[L, R any] struct {
	L L
	R *R
}

// setFieldByTag assigns raw into the struct field of rv tagged sql:"col"
// (or whose snake_case name matches col), converting numeric/string types
// as needed. Unmatched columns are silently skipped. A NULL raw is given its
// only two representable forms: a nil pointer field, or an sql.Scanner field
// (Scan is called with nil, same as database/sql itself would) - any other
// field kind has no way to record "was NULL" and is left at its current
// (zero) value.
func setFieldByTag(rv reflect.Value, col string, raw any) {
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("sql")
		if tag == "" {
			tag = toSnakeCase(f.Name)
		}
		if tag != col {
			continue
		}
		field := rv.Field(i)
		if field.CanAddr() {
			if scanner, ok := field.Addr().Interface().(sql.Scanner); ok {
				_ = scanner.Scan(raw)
				return
			}
		}
		if raw == nil {
			if field.Kind() == reflect.Ptr {
				field.Set(reflect.Zero(field.Type()))
			}
			return
		}
		if field.Kind() == reflect.Ptr {
			ev := reflect.New(field.Type().Elem())
			setScalarField(ev.Elem(), raw)
			field.Set(ev)
			return
		}
		setScalarField(field, raw)
		return
	}
}

// setScalarField assigns raw into field by direct assignment or conversion,
// the non-NULL, non-Scanner, non-pointer case setFieldByTag falls back to.
func setScalarField(field reflect.Value, raw any) {
	rawVal := reflect.ValueOf(raw)
	switch {
	case rawVal.Type().AssignableTo(field.Type()):
		field.Set(rawVal)
	case rawVal.Type().ConvertibleTo(field.Type()):
		field.Set(rawVal.Convert(field.Type()))
	}
}

// toSnakeCase converts an exported Go field name (CamelCase) to snake_case
// for matching against conventional SQL column names.
func toSnakeCase(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
