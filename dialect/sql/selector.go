package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/velox/dialect"
)

type joinClause struct {
	kind  string
	table *SelectTable
	on    *Predicate
}

// Selector builds a SELECT statement. It is the building block used both
// for top-level entity queries and for the correlated sub-selects issued by
// relation traversal (EXISTS/IN predicates) and the consolidation loaders.
type Selector struct {
	Builder
	as        string
	selection []string
	distinct  bool
	from      *SelectTable
	joins     []joinClause
	where     *Predicate
	group     []string
	having    *Predicate
	order     []string
	limit     *int
	offset    *int
}

// SetDialect sets the dialect used to render identifiers and placeholders.
func (s *Selector) SetDialect(d string) *Selector {
	s.Builder.SetDialect(d)
	return s
}

// Select sets the projected columns. No arguments selects "*".
func (s *Selector) Select(columns ...string) *Selector {
	s.selection = columns
	return s
}

// Distinct marks the statement as SELECT DISTINCT.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// From sets the source table of the statement.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// As sets the alias under which this selector can be referenced when used as a subquery.
func (s *Selector) As(alias string) *Selector {
	s.as = alias
	return s
}

// TableName returns the name of the table this selector reads from.
func (s *Selector) TableName() string {
	if s.from == nil {
		return ""
	}
	return s.from.name
}

// Join appends an INNER JOIN clause. Call On or OnP immediately after to set its condition.
func (s *Selector) Join(t *SelectTable) *Selector { return s.join("JOIN", t) }

// LeftJoin appends a LEFT JOIN clause.
func (s *Selector) LeftJoin(t *SelectTable) *Selector { return s.join("LEFT JOIN", t) }

func (s *Selector) join(kind string, t *SelectTable) *Selector {
	s.joins = append(s.joins, joinClause{kind: kind, table: t})
	return s
}

// On sets the join condition of the most recently added join as "col1 = col2".
func (s *Selector) On(col1, col2 string) *Selector {
	return s.OnP(ColumnsEQ(col1, col2))
}

// OnP sets the join condition of the most recently added join to an arbitrary predicate.
func (s *Selector) OnP(p *Predicate) *Selector {
	if len(s.joins) == 0 {
		return s
	}
	s.joins[len(s.joins)-1].on = p
	return s
}

// Where appends a predicate, AND-combining it with any existing WHERE clause.
func (s *Selector) Where(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.where == nil {
		s.where = p
	} else {
		s.where = And(s.where, p)
	}
	return s
}

// P returns the current WHERE predicate, or nil.
func (s *Selector) P() *Predicate { return s.where }

// GroupBy appends columns to the GROUP BY clause.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.group = append(s.group, columns...)
	return s
}

// Having sets the HAVING clause.
func (s *Selector) Having(p *Predicate) *Selector {
	s.having = p
	return s
}

// OrderBy appends raw order-by expressions (column name, optionally suffixed with " DESC").
func (s *Selector) OrderBy(exprs ...string) *Selector {
	s.order = append(s.order, exprs...)
	return s
}

// Limit sets the LIMIT clause.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// C returns the dialect-quoted, table-qualified reference to column, using
// this selector's FROM table (or alias, if set) to qualify it.
func (s *Selector) C(column string) string {
	if s.from != nil {
		return s.from.C(s.dialect, column)
	}
	return quoteIdent(s.dialect, column)
}

// Clone returns a deep-enough copy of the selector so that callers can reuse
// a base query across several relation-specific variations (e.g. the loader
// issuing one query per eager-loaded relation from a shared base selector).
func (s *Selector) Clone() *Selector {
	if s == nil {
		return nil
	}
	c := *s
	c.selection = append([]string(nil), s.selection...)
	c.joins = append([]joinClause(nil), s.joins...)
	c.group = append([]string(nil), s.group...)
	c.order = append([]string(nil), s.order...)
	return &c
}

// Query renders the statement and returns its text and bound arguments.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.selection) == 0 {
		b.WriteString("*")
	} else {
		b.IdentComma(s.selection...)
	}
	b.WriteString(" FROM ")
	if s.from != nil {
		b.WriteString(s.from.ref(s.dialect))
	}
	for _, j := range s.joins {
		b.WriteString(" " + j.kind + " ")
		b.WriteString(j.table.ref(s.dialect))
		if j.on != nil {
			b.WriteString(" ON ")
			j.on.writeTo(b)
		}
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.writeTo(b)
	}
	if len(s.group) > 0 {
		b.WriteString(" GROUP BY ")
		b.IdentComma(s.group...)
	}
	if s.having != nil {
		b.WriteString(" HAVING ")
		s.having.writeTo(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY " + strings.Join(s.order, ", "))
	}
	if s.limit != nil {
		b.WriteString(" LIMIT " + strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		b.WriteString(" OFFSET " + strconv.Itoa(*s.offset))
	}
	return b.String(), b.args
}

// returningSupported reports whether the dialect supports a native RETURNING clause.
// MySQL has no RETURNING clause; callers fall back to a LAST_INSERT_ID() follow-up select.
func returningSupported(d string) bool {
	return d == dialect.Postgres || d == dialect.SQLite
}

// InsertBuilder builds an INSERT INTO statement, optionally with a RETURNING clause.
type InsertBuilder struct {
	Builder
	table     string
	columns   []string
	values    [][]any
	returning []string
}

// Columns sets the target columns.
func (b *InsertBuilder) Columns(cols ...string) *InsertBuilder {
	b.columns = cols
	return b
}

// Values appends a row of values, one per column.
func (b *InsertBuilder) Values(vs ...any) *InsertBuilder {
	b.values = append(b.values, vs)
	return b
}

// Returning requests the given columns back via RETURNING, on dialects that support it.
func (b *InsertBuilder) Returning(cols ...string) *InsertBuilder {
	b.returning = cols
	return b
}

// Query renders the INSERT statement.
func (b *InsertBuilder) Query() (string, []any) {
	bd := &Builder{dialect: b.dialect}
	bd.WriteString("INSERT INTO ")
	bd.Ident(b.table)
	bd.WriteString(" (")
	bd.IdentComma(b.columns...)
	bd.WriteString(") VALUES ")
	for i, row := range b.values {
		if i > 0 {
			bd.Comma()
		}
		bd.WriteByte('(')
		bd.Args(row...)
		bd.WriteByte(')')
	}
	if len(b.returning) > 0 && returningSupported(b.dialect) {
		bd.WriteString(" RETURNING ")
		bd.IdentComma(b.returning...)
	}
	return bd.String(), bd.args
}

type setClause struct {
	col string
	val any
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	Builder
	table     string
	sets      []setClause
	where     *Predicate
	returning []string
}

// Set appends a "col = v" assignment.
func (b *UpdateBuilder) Set(col string, v any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{col, v})
	return b
}

// Where appends a predicate, AND-combining it with any existing WHERE clause.
func (b *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if p == nil {
		return b
	}
	if b.where == nil {
		b.where = p
	} else {
		b.where = And(b.where, p)
	}
	return b
}

// Returning requests the given columns back via RETURNING, on dialects that support it.
func (b *UpdateBuilder) Returning(cols ...string) *UpdateBuilder {
	b.returning = cols
	return b
}

// Query renders the UPDATE statement.
func (b *UpdateBuilder) Query() (string, []any) {
	bd := &Builder{dialect: b.dialect}
	bd.WriteString("UPDATE ")
	bd.Ident(b.table)
	bd.WriteString(" SET ")
	for i, s := range b.sets {
		if i > 0 {
			bd.Comma()
		}
		bd.Ident(s.col)
		bd.WriteString(" = ")
		bd.Arg(s.val)
	}
	if b.where != nil {
		bd.WriteString(" WHERE ")
		b.where.writeTo(bd)
	}
	if len(b.returning) > 0 && returningSupported(b.dialect) {
		bd.WriteString(" RETURNING ")
		bd.IdentComma(b.returning...)
	}
	return bd.String(), bd.args
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	Builder
	table string
	where *Predicate
}

// Where appends a predicate, AND-combining it with any existing WHERE clause.
func (b *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if p == nil {
		return b
	}
	if b.where == nil {
		b.where = p
	} else {
		b.where = And(b.where, p)
	}
	return b
}

// Query renders the DELETE statement.
func (b *DeleteBuilder) Query() (string, []any) {
	bd := &Builder{dialect: b.dialect}
	bd.WriteString("DELETE FROM ")
	bd.Ident(b.table)
	if b.where != nil {
		bd.WriteString(" WHERE ")
		b.where.writeTo(bd)
	}
	return bd.String(), bd.args
}
