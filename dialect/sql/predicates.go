package sql

// Predicate is a deferred WHERE/HAVING clause fragment. It is rendered into
// the owning statement's Builder only at Query() time, so that argument
// placeholders are numbered correctly across an entire statement (important
// for Postgres's positional $N binding).
type Predicate struct {
	fn func(*Builder)
	op string // "and", "or", "not", or "" for a leaf predicate.
}

// P wraps a render function as a leaf Predicate.
func P(fn func(*Builder)) *Predicate { return &Predicate{fn: fn} }

// writeTo renders the predicate into b.
func (p *Predicate) writeTo(b *Builder) {
	if p == nil || p.fn == nil {
		return
	}
	p.fn(b)
}

// Query implements the Querier interface so predicates can be inspected standalone.
func (p *Predicate) Query() (string, []any) {
	b := &Builder{}
	p.writeTo(b)
	return b.String(), b.args
}

func cmp(op, col string, arg any) *Predicate {
	return &Predicate{fn: func(b *Builder) {
		b.Ident(col)
		b.WriteString(" " + op + " ")
		b.Arg(arg)
	}}
}

// EQ returns a "col = arg" predicate.
func EQ(col string, arg any) *Predicate { return cmp("=", col, arg) }

// NEQ returns a "col <> arg" predicate.
func NEQ(col string, arg any) *Predicate { return cmp("<>", col, arg) }

// GT returns a "col > arg" predicate.
func GT(col string, arg any) *Predicate { return cmp(">", col, arg) }

// GTE returns a "col >= arg" predicate.
func GTE(col string, arg any) *Predicate { return cmp(">=", col, arg) }

// LT returns a "col < arg" predicate.
func LT(col string, arg any) *Predicate { return cmp("<", col, arg) }

// LTE returns a "col <= arg" predicate.
func LTE(col string, arg any) *Predicate { return cmp("<=", col, arg) }

// In returns a "col IN (args...)" predicate. An empty args list renders as
// an unsatisfiable predicate rather than invalid SQL.
func In(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return P(func(b *Builder) { b.WriteString("FALSE") })
	}
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" IN (")
		b.Args(args...)
		b.WriteByte(')')
	})
}

// NotIn returns a "col NOT IN (args...)" predicate.
func NotIn(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return P(func(b *Builder) { b.WriteString("TRUE") })
	}
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" NOT IN (")
		b.Args(args...)
		b.WriteByte(')')
	})
}

// IsNull returns a "col IS NULL" predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col); b.WriteString(" IS NULL") })
}

// NotNull returns a "col IS NOT NULL" predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col); b.WriteString(" IS NOT NULL") })
}

// Like returns a "col LIKE pattern" predicate.
func Like(col, pattern string) *Predicate {
	return P(func(b *Builder) { b.Ident(col); b.WriteString(" LIKE "); b.Arg(pattern) })
}

// Contains returns a "col LIKE %sub%" predicate.
func Contains(col, sub string) *Predicate { return Like(col, "%"+sub+"%") }

// HasPrefix returns a "col LIKE prefix%" predicate.
func HasPrefix(col, prefix string) *Predicate { return Like(col, prefix+"%") }

// HasSuffix returns a "col LIKE %suffix" predicate.
func HasSuffix(col, suffix string) *Predicate { return Like(col, "%"+suffix) }

// ContainsFold returns a case-insensitive "LOWER(col) LIKE LOWER(%sub%)" predicate.
func ContainsFold(col, sub string) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("LOWER(")
		b.Ident(col)
		b.WriteString(") LIKE LOWER(")
		b.Arg("%" + sub + "%")
		b.WriteByte(')')
	})
}

// EqualFold returns a case-insensitive equality predicate.
func EqualFold(col, v string) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("LOWER(")
		b.Ident(col)
		b.WriteString(") = LOWER(")
		b.Arg(v)
		b.WriteByte(')')
	})
}

// ColumnsEQ returns a "col1 = col2" predicate comparing two columns.
func ColumnsEQ(col1, col2 string) *Predicate {
	return P(func(b *Builder) { b.Ident(col1); b.WriteString(" = "); b.Ident(col2) })
}

// wrapNeeded reports whether a child predicate needs parenthesizing when
// combined under the given parent boolean operator (AND binds tighter than OR).
func wrapNeeded(parentOp, childOp string) bool {
	return parentOp == "and" && childOp == "or"
}

func boolOp(op, sep string, preds ...*Predicate) *Predicate {
	return &Predicate{op: op, fn: func(b *Builder) {
		for i, p := range preds {
			if i > 0 {
				b.WriteString(sep)
			}
			wrap := wrapNeeded(op, p.op)
			if wrap {
				b.WriteByte('(')
			}
			p.writeTo(b)
			if wrap {
				b.WriteByte(')')
			}
		}
	}}
}

// And combines predicates with AND, preserving correct precedence against any OR children.
func And(preds ...*Predicate) *Predicate { return boolOp("and", " AND ", preds...) }

// Or combines predicates with OR.
func Or(preds ...*Predicate) *Predicate { return boolOp("or", " OR ", preds...) }

// Not negates a predicate.
func Not(p *Predicate) *Predicate {
	return &Predicate{op: "not", fn: func(b *Builder) {
		b.WriteString("NOT (")
		p.writeTo(b)
		b.WriteByte(')')
	}}
}
