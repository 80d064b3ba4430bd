package activemodel

import (
	"context"
	"fmt"

	"github.com/syssam/velox/dialect"
	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/value"

	veloxerr "github.com/syssam/velox"
)

// InsertMany executes a single multi-row INSERT for models, which must all
// share the same entity and the same set of Set columns (the multi-VALUES
// statement has one column list for every row). An empty models list is a
// no-op.
//
// When the dialect supports RETURNING, every model is updated in place from
// the returned rows, in the order PostgreSQL and SQLite preserve for a
// multi-row RETURNING (input order); otherwise each model is reloaded
// individually the same way a single Insert would.
func InsertMany(ctx context.Context, ex dialect.ExecQuerier, d string, models []*ActiveModel) error {
	if len(models) == 0 {
		return nil
	}
	e := models[0].entity
	cols, _, err := models[0].setColumns()
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("activemodel: %s: insert_many requires at least one set column", e.Name)
	}

	ib := sql.Dialect(d).Insert(e.Table).Columns(cols...)
	for _, m := range models {
		if m.entity != e {
			return fmt.Errorf("activemodel: insert_many: all models must share the same entity")
		}
		rowCols, args, err := m.setColumns()
		if err != nil {
			return err
		}
		same := len(rowCols) == len(cols)
		for i := 0; same && i < len(cols); i++ {
			same = rowCols[i] == cols[i]
		}
		if !same {
			return fmt.Errorf("activemodel: %s: insert_many: every row must set the same columns", e.Name)
		}
		ib.Values(args...)
	}
	returning := supportsReturning(d)
	if returning {
		ib.Returning(e.ColumnNames()...)
	}
	query, qargs := ib.Query()

	if returning {
		var rows sql.Rows
		if err := ex.Query(ctx, query, qargs, &rows); err != nil {
			return fmt.Errorf("activemodel: %s: insert_many: %w", e.Name, err)
		}
		defer rows.Close()
		for _, m := range models {
			if !rows.Next() {
				if err := rows.Err(); err != nil {
					return err
				}
				return veloxerr.NewRecordNotInsertedError(e.Name)
			}
			if err := m.scanReturnedRow(&rows); err != nil {
				return err
			}
			m.freezeSet()
		}
		return nil
	}

	var res sql.Result
	if err := ex.Exec(ctx, query, qargs, &res); err != nil {
		return fmt.Errorf("activemodel: %s: insert_many: %w", e.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activemodel: %s: insert_many: rows affected: %w", e.Name, err)
	}
	if affected == 0 {
		return veloxerr.NewRecordNotInsertedError(e.Name)
	}

	if d == dialect.MySQL && e.PrimaryKeyArity() == 1 {
		if pkCol, ok := e.Column(e.PrimaryKeyColumns()[0]); ok && pkCol.AutoIncrement {
			first, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("activemodel: %s: insert_many: last insert id: %w", e.Name, err)
			}
			// MySQL assigns auto-increment keys to a multi-row INSERT
			// contiguously starting at LastInsertId, one per row in
			// statement order.
			var errs []error
			for i, m := range models {
				id := first + int64(i)
				v, err := value.FromDriverValue(id, pkCol.Type.Kind())
				if err != nil {
					errs = append(errs, fmt.Errorf("activemodel: %s.%s: %w", e.Name, pkCol.Name, err))
					continue
				}
				m.fields[pkCol.Name] = Unchanged(v)
				if err := m.reloadByPrimaryKey(ctx, ex, d); err != nil {
					errs = append(errs, err)
					continue
				}
				m.freezeSet()
			}
			return veloxerr.NewAggregateError(errs...)
		}
	}
	var errs []error
	for _, m := range models {
		if err := m.reloadByPrimaryKey(ctx, ex, d); err != nil {
			errs = append(errs, err)
			continue
		}
		m.freezeSet()
	}
	return veloxerr.NewAggregateError(errs...)
}
