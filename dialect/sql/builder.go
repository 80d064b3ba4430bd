package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/velox/dialect"
)

// Querier wraps the basic Query method that's implemented
// by the builders in this file.
type Querier interface {
	// Query returns the query representation and its arguments.
	Query() (string, []any)
}

// Builder is the base query/clause builder. It accumulates the rendered SQL
// text and bound arguments as clauses are written into it. Every statement
// and predicate builder embeds one so that a single, shared argument
// counter is used for the entire statement (needed for Postgres's
// positional $N placeholders).
type Builder struct {
	sb      *strings.Builder
	args    []any
	dialect string
	total   int
}

// newBuilder returns a Builder bound to the given dialect.
func newBuilder(d string) Builder {
	return Builder{sb: &strings.Builder{}, dialect: d}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// SetDialect sets the builder dialect.
func (b *Builder) SetDialect(d string) *Builder {
	b.dialect = d
	return b
}

func (b *Builder) ensure() {
	if b.sb == nil {
		b.sb = &strings.Builder{}
	}
}

// WriteString writes raw text to the builder.
func (b *Builder) WriteString(s string) *Builder {
	b.ensure()
	b.sb.WriteString(s)
	return b
}

// WriteByte writes a single byte to the builder.
func (b *Builder) WriteByte(c byte) *Builder {
	b.ensure()
	b.sb.WriteByte(c)
	return b
}

// Pad appends a single space.
func (b *Builder) Pad() *Builder { return b.WriteByte(' ') }

// Comma appends a comma separator.
func (b *Builder) Comma() *Builder { return b.WriteString(", ") }

// IsQuoted reports whether s is already a dialect-quoted identifier, such as
// one produced by a previous call to Ident or Selector.C.
func IsQuoted(s string) bool {
	return len(s) > 0 && (s[0] == '"' || s[0] == '`')
}

// quoteIdent quotes a single identifier segment for the given dialect.
func quoteIdent(d, name string) string {
	switch d {
	case dialect.MySQL:
		return "`" + name + "`"
	default:
		return `"` + name + `"`
	}
}

// Ident writes an identifier, quoting it unless it is already quoted
// (e.g. a table-qualified column produced by Selector.C) or it is the
// wildcard "*".
func (b *Builder) Ident(name string) *Builder {
	switch {
	case name == "" || name == "*":
		b.WriteString(name)
	case IsQuoted(name):
		b.WriteString(name)
	default:
		b.WriteString(quoteIdent(b.dialect, name))
	}
	return b
}

// IdentComma writes a comma separated list of identifiers.
func (b *Builder) IdentComma(names ...string) *Builder {
	for i, n := range names {
		if i > 0 {
			b.Comma()
		}
		b.Ident(n)
	}
	return b
}

// Arg binds a value and writes its placeholder.
func (b *Builder) Arg(a any) *Builder {
	b.total++
	b.args = append(b.args, a)
	switch b.dialect {
	case dialect.Postgres:
		b.WriteString("$" + strconv.Itoa(b.total))
	default:
		b.WriteByte('?')
	}
	return b
}

// Args binds and writes a comma separated list of placeholders.
func (b *Builder) Args(as ...any) *Builder {
	for i, a := range as {
		if i > 0 {
			b.Comma()
		}
		b.Arg(a)
	}
	return b
}

// String returns the accumulated query string.
func (b *Builder) String() string {
	b.ensure()
	return b.sb.String()
}

// Total returns the number of arguments bound so far. Used by builders that
// need to continue a shared placeholder sequence across sub-clauses.
func (b *Builder) Total() int { return b.total }

// join returns the rendered query and collected arguments of a Querier.
func join(qs []Querier, sep string, b *Builder) {
	for i, q := range qs {
		if i > 0 {
			b.WriteString(sep)
		}
		qb, ok := q.(interface{ writeTo(*Builder) })
		if ok {
			qb.writeTo(b)
			continue
		}
		query, args := q.Query()
		b.WriteString(query)
		b.args = append(b.args, args...)
	}
}

// Raw wraps a literal SQL expression (no quoting, no argument binding) so it
// can be used anywhere an identifier or predicate operand is expected.
type Raw string

// DialectBuilder is the entrypoint for building dialect-aware statements:
// sql.Dialect(dialect.Postgres).Select()...
type DialectBuilder struct {
	dialect string
}

// Dialect returns a DialectBuilder for the given dialect name.
func Dialect(name string) *DialectBuilder { return &DialectBuilder{dialect: name} }

// Select creates a Selector for the given columns (empty means "*").
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return (&Selector{}).SetDialect(d.dialect).Select(columns...)
}

// Insert creates an InsertBuilder for the given table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	b := &InsertBuilder{table: table}
	b.SetDialect(d.dialect)
	return b
}

// Update creates an UpdateBuilder for the given table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	b := &UpdateBuilder{table: table}
	b.SetDialect(d.dialect)
	return b
}

// Delete creates a DeleteBuilder for the given table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	b := &DeleteBuilder{table: table}
	b.SetDialect(d.dialect)
	return b
}

// Table returns a new table selector/reference builder.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// SelectTable represents a table (or sub-selector) reference used in a FROM
// or JOIN clause, with an optional schema and alias.
type SelectTable struct {
	name   string
	schema string
	as     string
}

// Schema sets the schema/database qualifier of the table.
func (t *SelectTable) Schema(name string) *SelectTable {
	t.schema = name
	return t
}

// As sets the alias used to reference the table.
func (t *SelectTable) As(alias string) *SelectTable {
	t.as = alias
	return t
}

// ref returns the fully qualified, aliased table reference string used after FROM/JOIN.
func (t *SelectTable) ref(d string) string {
	var sb strings.Builder
	if t.schema != "" {
		sb.WriteString(quoteIdent(d, t.schema))
		sb.WriteByte('.')
	}
	sb.WriteString(quoteIdent(d, t.name))
	if t.as != "" {
		sb.WriteString(" AS ")
		sb.WriteString(quoteIdent(d, t.as))
	}
	return sb.String()
}

// alias returns the name used to qualify columns of this table: its alias
// if set, otherwise its own name.
func (t *SelectTable) alias() string {
	if t.as != "" {
		return t.as
	}
	return t.name
}

// C returns the dialect-quoted, table-qualified form of the given column.
func (t *SelectTable) C(d, column string) string {
	return quoteIdent(d, t.alias()) + "." + quoteIdent(d, column)
}

func fmtErr(format string, args ...any) error { return fmt.Errorf("dialect/sql: "+format, args...) }

// Qualify returns the dialect-quoted "table"."column" reference for a table
// or alias name known only as a string, for callers (e.g. sqlgraph's join
// path builder) that build join conditions across a chain of aliases rather
// than through a single Selector's own FROM table.
func Qualify(d, table, column string) string {
	return quoteIdent(d, table) + "." + quoteIdent(d, column)
}
