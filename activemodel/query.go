package activemodel

import (
	"context"
	"fmt"

	"github.com/syssam/velox/dialect"
	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/entity"

	veloxerr "github.com/syssam/velox"
)

// FindByPrimaryKey reads the row of e identified by pkValues (one value per
// entity.PrimaryKeyColumns(), in that order) and returns it as an
// Unchanged ActiveModel. It fails with a *NotFoundError wrapping ErrNotFound
// if no such row exists.
func FindByPrimaryKey(ctx context.Context, ex dialect.ExecQuerier, d string, e *entity.Entity, pkValues ...any) (*ActiveModel, error) {
	pkCols := e.PrimaryKeyColumns()
	if len(pkCols) == 0 {
		return nil, fmt.Errorf("activemodel: %s: entity has no primary key", e.Name)
	}
	if len(pkValues) != len(pkCols) {
		return nil, fmt.Errorf("activemodel: %s: expected %d primary key value(s), got %d", e.Name, len(pkCols), len(pkValues))
	}
	preds := make([]*sql.Predicate, len(pkCols))
	for i, col := range pkCols {
		preds[i] = sql.EQ(col, pkValues[i])
	}
	var pred *sql.Predicate
	if len(preds) == 1 {
		pred = preds[0]
	} else {
		pred = sql.And(preds...)
	}
	return FindOneBy(ctx, ex, d, e, pred)
}

// FindOneBy runs SELECT * FROM e.Table WHERE pred and returns exactly one
// matching row as an ActiveModel. It fails with a *NotFoundError wrapping
// ErrNotFound for zero matches, and a *NotSingularError wrapping
// ErrNotSingular for more than one - the same distinction a find-one-style
// accessor makes, but built on top of this engine's plain metadata-driven
// ActiveModel rather than a generated query type.
func FindOneBy(ctx context.Context, ex dialect.ExecQuerier, d string, e *entity.Entity, pred *sql.Predicate) (*ActiveModel, error) {
	sel := sql.Dialect(d).Select(e.ColumnNames()...).From(sql.Table(e.Table)).Where(pred)
	query, args := sel.Query()
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, veloxerr.NewQueryError(e.Name, "find", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, veloxerr.NewQueryError(e.Name, "find", err)
		}
		return nil, veloxerr.NewNotFoundError(e.Name)
	}

	m := New(e)
	if err := m.scanReturnedRow(&rows); err != nil {
		return nil, err
	}

	if rows.Next() {
		return nil, veloxerr.NewNotSingularError(e.Name)
	}
	if err := rows.Err(); err != nil {
		return nil, veloxerr.NewQueryError(e.Name, "find", err)
	}
	return m, nil
}
