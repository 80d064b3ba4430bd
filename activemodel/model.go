package activemodel

import (
	"context"
	"fmt"

	"github.com/syssam/velox/dialect"
	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/dialect/sql/sqlgraph"
	"github.com/syssam/velox/entity"
	"github.com/syssam/velox/value"

	veloxerr "github.com/syssam/velox"
)

// wrapExecError recognizes a database constraint violation in err (unique,
// foreign key, or check) and wraps it as a ConstraintError; any other error
// is returned unchanged for the caller's own fmt.Errorf wrapping.
func wrapExecError(err error) error {
	if err == nil || !sqlgraph.IsConstraintError(err) {
		return err
	}
	return veloxerr.NewConstraintError(err.Error(), err)
}

// ActiveModel is a single row's write-side lifecycle: one State[value.Value]
// per declared column, reflectively keyed by column name off an *entity.Entity
// rather than a generated per-entity struct.
type ActiveModel struct {
	entity   *entity.Entity
	fields   map[string]State[value.Value]
	children map[string]*ChildSet
}

// New returns an ActiveModel for e with every column NotSet, the state of a
// model being constructed from scratch for an eventual Insert.
func New(e *entity.Entity) *ActiveModel {
	m := &ActiveModel{
		entity: e,
		fields: make(map[string]State[value.Value], len(e.Columns())),
	}
	for _, c := range e.Columns() {
		m.fields[c.Name] = NotSet[value.Value]()
	}
	return m
}

// FromRow returns an ActiveModel for e with every given column Unchanged,
// the state of a model just read back from the database.
func FromRow(e *entity.Entity, values map[string]value.Value) *ActiveModel {
	m := New(e)
	for col, v := range values {
		if _, ok := m.fields[col]; ok {
			m.fields[col] = Unchanged(v)
		}
	}
	return m
}

// Entity returns the entity metadata this model is bound to.
func (m *ActiveModel) Entity() *entity.Entity { return m.entity }

// Set marks col as a pending write with value v. Returns an error if col is
// not a declared column of the entity, or a *ValidationError if v's kind
// doesn't match the column's declared type (a NULL v is always accepted
// here; the column's Nullable flag is enforced at write time, not at Set).
func (m *ActiveModel) Set(col string, v value.Value) error {
	c, ok := m.entity.Column(col)
	if !ok {
		return fmt.Errorf("activemodel: %s: unknown column %q", m.entity.Name, col)
	}
	if !v.IsNull() && v.Kind() != c.Type.Kind() {
		return veloxerr.NewValidationError(col,
			fmt.Errorf("expected %s, got %s", c.Type.Kind(), v.Kind()))
	}
	m.fields[col] = Set(v)
	return nil
}

// Get returns col's current value and true, or the zero Value and false if
// col is NotSet (or unknown).
func (m *ActiveModel) Get(col string) (value.Value, bool) {
	s, ok := m.fields[col]
	if !ok {
		return value.Value{}, false
	}
	return s.Value()
}

// State returns col's full tri-state field, for callers that need to
// distinguish Set from Unchanged rather than just read the value.
func (m *ActiveModel) State(col string) (State[value.Value], bool) {
	s, ok := m.fields[col]
	return s, ok
}

// Reset forces col from Unchanged back to Set carrying the same value, so
// the next Update includes it in its SET clause even though the value
// itself didn't change.
func (m *ActiveModel) Reset(col string) {
	if s, ok := m.fields[col]; ok {
		m.fields[col] = s.Reset()
	}
}

// supportsReturning reports whether d has a native RETURNING clause.
func supportsReturning(d string) bool {
	return d == dialect.Postgres || d == dialect.SQLite
}

// setColumns returns the columns currently Set, in declared order, together
// with their driver-ready argument values - the column list an INSERT or
// UPDATE statement builds its clause from.
func (m *ActiveModel) setColumns() ([]string, []any, error) {
	var cols []string
	var args []any
	for _, c := range m.entity.Columns() {
		s := m.fields[c.Name]
		if !s.IsSet() {
			continue
		}
		v, _ := s.Value()
		dv, err := value.ToDriverValue(v)
		if err != nil {
			return nil, nil, fmt.Errorf("activemodel: %s.%s: %w", m.entity.Name, c.Name, err)
		}
		cols = append(cols, c.Name)
		args = append(args, dv)
	}
	return cols, args, nil
}

// pkPredicate builds a WHERE predicate matching this model's primary key,
// requiring every PK column to be Set or Unchanged (a model can't be
// updated, saved-as-update, deleted, or reloaded-by-key without one).
func (m *ActiveModel) pkPredicate() (*sql.Predicate, error) {
	pkCols := m.entity.PrimaryKeyColumns()
	if len(pkCols) == 0 {
		return nil, fmt.Errorf("activemodel: %s: entity has no primary key", m.entity.Name)
	}
	preds := make([]*sql.Predicate, len(pkCols))
	for i, col := range pkCols {
		s, ok := m.fields[col]
		if !ok || !s.Present() {
			return nil, fmt.Errorf("activemodel: %s: primary key column %q is not set", m.entity.Name, col)
		}
		v, _ := s.Value()
		dv, err := value.ToDriverValue(v)
		if err != nil {
			return nil, fmt.Errorf("activemodel: %s.%s: %w", m.entity.Name, col, err)
		}
		preds[i] = sql.EQ(col, dv)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return sql.And(preds...), nil
}

// freezeSet turns every remaining Set field into Unchanged: the state every
// field not already resolved by a RETURNING clause or reload lands in once
// a write has landed.
func (m *ActiveModel) freezeSet() {
	for col, s := range m.fields {
		if s.IsSet() {
			m.fields[col] = s.Freeze()
		}
	}
}

// scanReturnedRow scans a single row whose columns are entity column names
// (unprefixed, as produced by a RETURNING clause or a plain follow-up
// SELECT) and marks each scanned column Unchanged with the read-back value.
func (m *ActiveModel) scanReturnedRow(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("activemodel: %s: reading columns: %w", m.entity.Name, err)
	}
	raws := make([]any, len(columns))
	dests := make([]any, len(columns))
	for i := range raws {
		dests[i] = &raws[i]
	}
	if err := rows.Scan(dests...); err != nil {
		return fmt.Errorf("activemodel: %s: scanning row: %w", m.entity.Name, err)
	}
	for i, col := range columns {
		c, ok := m.entity.Column(col)
		if !ok {
			continue
		}
		v, err := value.FromDriverValue(raws[i], c.Type.Kind())
		if err != nil {
			return fmt.Errorf("activemodel: %s.%s: %w", m.entity.Name, col, err)
		}
		m.fields[col] = Unchanged(v)
	}
	return nil
}

// reloadByPrimaryKey issues a follow-up SELECT * WHERE pk = ? to read back
// server-generated values on backends without RETURNING, for models whose
// primary key the caller already supplied (so no LastInsertId is needed).
func (m *ActiveModel) reloadByPrimaryKey(ctx context.Context, ex dialect.ExecQuerier, d string) error {
	pred, err := m.pkPredicate()
	if err != nil {
		// No PK known yet (e.g. auto-increment column the caller didn't set
		// and that this dialect has no LastInsertId path for): nothing to
		// reload, the caller only gets back what it already supplied.
		return nil
	}
	sel := sql.Dialect(d).Select(m.entity.ColumnNames()...).From(sql.Table(m.entity.Table)).Where(pred)
	query, args := sel.Query()
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return fmt.Errorf("activemodel: %s: reload: %w", m.entity.Name, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return rows.Err()
	}
	return m.scanReturnedRow(&rows)
}

// Insert executes an INSERT from this model's Set columns. On success, any
// column present in a RETURNING result (or a LastInsertId/follow-up-SELECT
// read-back) becomes Unchanged with the read-back value; every other Set
// column is frozen to Unchanged as-is.
func (m *ActiveModel) Insert(ctx context.Context, ex dialect.ExecQuerier, d string) error {
	cols, args, err := m.setColumns()
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("activemodel: %s: insert requires at least one set column", m.entity.Name)
	}
	ib := sql.Dialect(d).Insert(m.entity.Table).Columns(cols...).Values(args...)
	returning := supportsReturning(d)
	if returning {
		ib.Returning(m.entity.ColumnNames()...)
	}
	query, qargs := ib.Query()

	if returning {
		var rows sql.Rows
		if err := ex.Query(ctx, query, qargs, &rows); err != nil {
			return veloxerr.NewMutationError(m.entity.Name, "insert", wrapExecError(err))
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return veloxerr.NewRecordNotInsertedError(m.entity.Name)
		}
		if err := m.scanReturnedRow(&rows); err != nil {
			return err
		}
		m.freezeSet()
		return nil
	}

	var res sql.Result
	if err := ex.Exec(ctx, query, qargs, &res); err != nil {
		return veloxerr.NewMutationError(m.entity.Name, "insert", wrapExecError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activemodel: %s: insert: rows affected: %w", m.entity.Name, err)
	}
	if affected == 0 {
		return veloxerr.NewRecordNotInsertedError(m.entity.Name)
	}

	if d == dialect.MySQL && m.entity.PrimaryKeyArity() == 1 {
		if pkCol, ok := m.entity.Column(m.entity.PrimaryKeyColumns()[0]); ok && pkCol.AutoIncrement {
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("activemodel: %s: insert: last insert id: %w", m.entity.Name, err)
			}
			if id == 0 {
				return veloxerr.NewRecordNotInsertedError(m.entity.Name)
			}
			v, err := value.FromDriverValue(id, pkCol.Type.Kind())
			if err != nil {
				return fmt.Errorf("activemodel: %s.%s: %w", m.entity.Name, pkCol.Name, err)
			}
			m.fields[pkCol.Name] = Unchanged(v)
			if err := m.reloadByPrimaryKey(ctx, ex, d); err != nil {
				return err
			}
			m.freezeSet()
			return nil
		}
	}
	if err := m.reloadByPrimaryKey(ctx, ex, d); err != nil {
		return err
	}
	m.freezeSet()
	return nil
}

// Update executes an UPDATE of this model's Set columns, keyed by its
// primary key (which must be Set or Unchanged). Fails with
// RecordNotUpdatedError if no row matched.
func (m *ActiveModel) Update(ctx context.Context, ex dialect.ExecQuerier, d string) error {
	cols, args, err := m.setColumns()
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("activemodel: %s: update requires at least one set column", m.entity.Name)
	}
	pred, err := m.pkPredicate()
	if err != nil {
		return fmt.Errorf("activemodel: %s: update: %w", m.entity.Name, err)
	}
	ub := sql.Dialect(d).Update(m.entity.Table)
	for i, col := range cols {
		ub.Set(col, args[i])
	}
	ub.Where(pred)
	query, qargs := ub.Query()
	var res sql.Result
	if err := ex.Exec(ctx, query, qargs, &res); err != nil {
		return veloxerr.NewMutationError(m.entity.Name, "update", wrapExecError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activemodel: %s: update: rows affected: %w", m.entity.Name, err)
	}
	if affected == 0 {
		return veloxerr.NewRecordNotUpdatedError(m.entity.Name)
	}
	m.freezeSet()
	return nil
}

// Save updates the row if this model's primary key is present (Set or
// Unchanged), otherwise inserts it. A failed update (RecordNotUpdatedError)
// is not retried as an insert - a PK that no longer matches any row is
// reported as-is, rather than risking a second, unintended row landing
// behind the caller's back.
func (m *ActiveModel) Save(ctx context.Context, ex dialect.ExecQuerier, d string) error {
	if m.hasPrimaryKey() {
		return m.Update(ctx, ex, d)
	}
	return m.Insert(ctx, ex, d)
}

// hasPrimaryKey reports whether every primary key column is Set or Unchanged.
func (m *ActiveModel) hasPrimaryKey() bool {
	for _, col := range m.entity.PrimaryKeyColumns() {
		s, ok := m.fields[col]
		if !ok || !s.Present() {
			return false
		}
	}
	return len(m.entity.PrimaryKeyColumns()) > 0
}

// Delete executes a DELETE keyed by this model's primary key.
func (m *ActiveModel) Delete(ctx context.Context, ex dialect.ExecQuerier, d string) error {
	pred, err := m.pkPredicate()
	if err != nil {
		return fmt.Errorf("activemodel: %s: delete: %w", m.entity.Name, err)
	}
	db := sql.Dialect(d).Delete(m.entity.Table).Where(pred)
	query, qargs := db.Query()
	var res sql.Result
	if err := ex.Exec(ctx, query, qargs, &res); err != nil {
		return veloxerr.NewMutationError(m.entity.Name, "delete", wrapExecError(err))
	}
	return nil
}
