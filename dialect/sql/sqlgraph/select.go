package sqlgraph

import (
	"context"
	"fmt"

	"github.com/syssam/velox/dialect"
	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/entity"
	"github.com/syssam/velox/value"
)

// projection returns e's columns projected as "table"."col" AS "prefix_col",
// the convention FindAlsoRelated/FindWithRelated's two-entity SELECT uses to
// keep the left and right entity's columns from colliding once scanned.
func projection(d, table, prefix string, e *entity.Entity) []string {
	cols := make([]string, 0, len(e.Columns()))
	for _, c := range e.Columns() {
		cols = append(cols, fmt.Sprintf("%s AS %s",
			sql.Qualify(d, table, c.Name), quotedAlias(d, prefix+"_"+c.Name)))
	}
	return cols
}

func quotedAlias(d, name string) string {
	switch d {
	case dialect.MySQL:
		return "`" + name + "`"
	default:
		return `"` + name + `"`
	}
}

// joinedSelector builds the SELECT for a relation traversal: left entity's
// columns aliased "A_*", the final step's target entity columns aliased
// "B_*", LEFT JOINed across the given steps.
func joinedSelector(d string, left, right *entity.Entity, steps []Step, where *sql.Predicate) *sql.Selector {
	sel := sql.Dialect(d).Select()
	cols := append(projection(d, left.Table, "A", left), projection(d, steps[len(steps)-1].As, "B", right)...)
	table := sql.Table(left.Table)
	if left.Schema != "" {
		table = table.Schema(left.Schema)
	}
	sel.Select(cols...).From(table)
	ApplyJoins(sel, left.Table, steps)
	if where != nil {
		sel.Where(where)
	}
	return sel
}

// runPairs executes sel and scans its rows into (L, *R) pairs, using right's
// first primary-key column (aliased "B_<col>") as the presence check for a
// missing right-hand match.
func runPairs[L, R any](ctx context.Context, ex dialect.ExecQuerier, sel *sql.Selector, right *entity.Entity) ([]Pair[L, R], error) {
	query, args := sel.Query()
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("sqlgraph: query: %w", err)
	}
	defer rows.Close()
	presence := right.PrimaryKeyColumns()[0]
	return sql.ScanPairs[L, R](&rows, presence)
}

// FindAlsoRelated returns one (L, *R) pair per row of a direct relation join
// between left and right (a single LEFT JOIN, no consolidation): the SQL
// shape used when a single related row - not a grouped collection - is wanted per parent.
func FindAlsoRelated[L, R any](
	ctx context.Context, ex dialect.ExecQuerier, d string,
	left, right *entity.Entity, rel entity.Relation, where *sql.Predicate,
) ([]Pair[L, R], error) {
	steps := BuildPath(left, rel, 0)
	sel := joinedSelector(d, left, right, steps, where)
	return runPairs[L, R](ctx, ex, sel, right)
}

// FindWithRelated is FindAlsoRelated followed by consolidation: one L per
// distinct left row, with all of its matching R rows grouped underneath it.
func FindWithRelated[L, R any, K comparable](
	ctx context.Context, ex dialect.ExecQuerier, d string,
	left, right *entity.Entity, rel entity.Relation, where *sql.Predicate,
	keyFn func(L) K,
) ([]Grouped[L, R], error) {
	steps := BuildPath(left, rel, 0)
	sel := joinedSelector(d, left, right, steps, where)
	sel.OrderBy(sql.Qualify(d, left.Table, left.PrimaryKeyColumns()[0]) + " ASC")
	pairs, err := runPairs[L, R](ctx, ex, sel, right)
	if err != nil {
		return nil, err
	}
	return ConsolidateQueryResult(pairs, keyFn), nil
}

// FindAlsoLinked is FindAlsoRelated generalized to a multi-hop relation path
// (sea-orm's "linked" entities): rels is a chain of relations hung off one
// another, and only the final target entity's columns are projected as "B_*".
func FindAlsoLinked[L, R any](
	ctx context.Context, ex dialect.ExecQuerier, d string,
	left, right *entity.Entity, rels []entity.Relation, where *sql.Predicate,
) ([]Pair[L, R], error) {
	steps := Chain(left, rels)
	sel := joinedSelector(d, left, right, steps, where)
	return runPairs[L, R](ctx, ex, sel, right)
}

// FindWithLinked is FindAlsoLinked followed by consolidation.
func FindWithLinked[L, R any, K comparable](
	ctx context.Context, ex dialect.ExecQuerier, d string,
	left, right *entity.Entity, rels []entity.Relation, where *sql.Predicate,
	keyFn func(L) K,
) ([]Grouped[L, R], error) {
	steps := Chain(left, rels)
	sel := joinedSelector(d, left, right, steps, where)
	sel.OrderBy(sql.Qualify(d, left.Table, left.PrimaryKeyColumns()[0]) + " ASC")
	pairs, err := runPairs[L, R](ctx, ex, sel, right)
	if err != nil {
		return nil, err
	}
	return ConsolidateQueryResult(pairs, keyFn), nil
}

// decodeFn builds a model of type T from a FromQueryResult-decoded column
// map; the caller supplies it since this package has no generated per-entity
// Go type to build into.
type decodeFn[T any] func(map[string]value.Value) (T, error)

// tripleSelector projects left's columns under "A_", mid's under "M_" and
// right's under "R_" (mid and right read from the last alias of mSteps and
// rSteps), applies mSteps' joins on top of left's base table, then where
// and an ORDER BY on left's first primary-key column. It does not apply
// rSteps' joins; the callers add those to the returned Selector.
func tripleSelector(d string, left, mid, right *entity.Entity, mSteps, rSteps []Step, where *sql.Predicate) *sql.Selector {
	sel := sql.Dialect(d).Select()
	cols := append(projection(d, left.Table, "A", left), projection(d, mSteps[len(mSteps)-1].As, "M", mid)...)
	cols = append(cols, projection(d, rSteps[len(rSteps)-1].As, "R", right)...)
	table := sql.Table(left.Table)
	if left.Schema != "" {
		table = table.Schema(left.Schema)
	}
	sel.Select(cols...).From(table)
	ApplyJoins(sel, left.Table, mSteps)
	if where != nil {
		sel.Where(where)
	}
	sel.OrderBy(sql.Qualify(d, left.Table, left.PrimaryKeyColumns()[0]) + " ASC")
	return sel
}

// scanTriples runs sel, snapshots its rows and decodes each into a
// Triple[L, M, R] via decodeL/decodeM/decodeR - FromQueryResultOptional
// leaves M/R nil for a row whose side of the join found no match.
func scanTriples[L, M, R any](
	ctx context.Context, ex dialect.ExecQuerier, sel *sql.Selector,
	left, mid, right *entity.Entity,
	decodeL decodeFn[L], decodeM decodeFn[M], decodeR decodeFn[R],
) ([]Triple[L, M, R], error) {
	query, args := sel.Query()
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("sqlgraph: query: %w", err)
	}
	defer rows.Close()
	raw, err := sql.ScanRawRows(&rows)
	if err != nil {
		return nil, fmt.Errorf("sqlgraph: scanning rows: %w", err)
	}
	out := make([]Triple[L, M, R], 0, len(raw))
	for _, row := range raw {
		lFields, err := sql.FromQueryResult(row, "A_", left)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: decoding left row: %w", err)
		}
		lVal, err := decodeL(lFields)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: decoding left row: %w", err)
		}
		t := Triple[L, M, R]{L: lVal}

		mFields, err := sql.FromQueryResultOptional(row, "M_", mid)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: decoding mid row: %w", err)
		}
		if mFields != nil {
			mVal, err := decodeM(mFields)
			if err != nil {
				return nil, fmt.Errorf("sqlgraph: decoding mid row: %w", err)
			}
			t.M = &mVal
		}

		rFields, err := sql.FromQueryResultOptional(row, "R_", right)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: decoding right row: %w", err)
		}
		if rFields != nil {
			rVal, err := decodeR(rFields)
			if err != nil {
				return nil, fmt.Errorf("sqlgraph: decoding right row: %w", err)
			}
			t.R = &rVal
		}

		out = append(out, t)
	}
	return out, nil
}

// FindWithRelatedTee runs a T-shaped join - left joined independently to mid
// via relM and to right via relR, a fan-out where mid and right share no
// relation to each other - and consolidates the flat row stream into one
// entry per left model holding both related sets (e.g. a cake with its
// fruits and its fillings), each deduplicated since the cross join of two
// one-to-many relations otherwise produces |mid|*|right| rows per cake.
func FindWithRelatedTee[L, M, R any, K comparable, MK comparable, RK comparable](
	ctx context.Context, ex dialect.ExecQuerier, d string,
	left, mid, right *entity.Entity, relM, relR entity.Relation, where *sql.Predicate,
	decodeL decodeFn[L], decodeM decodeFn[M], decodeR decodeFn[R],
	keyFn func(L) K, mKeyFn func(M) MK, rKeyFn func(R) RK,
) ([]TeeGroup[L, M, R], error) {
	mSteps := BuildPath(left, relM, 0)
	rSteps := BuildPath(left, relR, len(mSteps))
	sel := tripleSelector(d, left, mid, right, mSteps, rSteps, where)
	ApplyJoins(sel, left.Table, rSteps)
	triples, err := scanTriples[L, M, R](ctx, ex, sel, left, mid, right, decodeL, decodeM, decodeR)
	if err != nil {
		return nil, err
	}
	return ConsolidateQueryResultTee(triples, keyFn, mKeyFn, rKeyFn), nil
}

// FindWithRelatedChain runs a chained join (left -> mid via relM, mid ->
// right via relR) and consolidates it into one entry per left model holding
// its mid children, each already carrying its own right children.
func FindWithRelatedChain[L, M, R any, K comparable, MK comparable](
	ctx context.Context, ex dialect.ExecQuerier, d string,
	left, mid, right *entity.Entity, relM, relR entity.Relation, where *sql.Predicate,
	decodeL decodeFn[L], decodeM decodeFn[M], decodeR decodeFn[R],
	keyFn func(L) K, mKeyFn func(M) MK,
) ([]ChainGroup[L, M, R], error) {
	mSteps := BuildPath(left, relM, 0)
	rSteps := BuildPath(mid, relR, len(mSteps))
	sel := tripleSelector(d, left, mid, right, mSteps, rSteps, where)
	ApplyJoins(sel, mSteps[len(mSteps)-1].As, rSteps)
	triples, err := scanTriples[L, M, R](ctx, ex, sel, left, mid, right, decodeL, decodeM, decodeR)
	if err != nil {
		return nil, err
	}
	return ConsolidateQueryResultChain(triples, keyFn, mKeyFn), nil
}
