// Package sqlgraph implements the relation-aware parts of query execution:
// turning an Entity's Relation metadata into JOIN clauses, and folding the
// resulting flat row stream back into the nested Go shapes callers expect
// (a parent with its related children grouped underneath it).
package sqlgraph

import "github.com/syssam/velox/dialect/sql"

// Pair is one row of a left-join result: a required left model and an
// optional right model (nil when the join found no match).
type Pair[L, R any] = sql.Pair[L, R]

// Grouped is a left model together with the right models that shared its key.
type Grouped[L, R any] struct {
	L L
	R []R
}

// ConsolidateQueryResult groups a flat stream of (L, *R) rows - the shape a
// single LEFT JOIN between two entities produces - into one (L, []R) entry
// per distinct left model, preserving the left models' first-seen order.
// keyFn extracts the grouping key from L; callers with a composite primary
// key supply a key that combines all of its columns (a struct or array),
// which is the Go equivalent of the arity-specialized key functions this is
// ported from.
func ConsolidateQueryResult[L, R any, K comparable](rows []Pair[L, R], keyFn func(L) K) []Grouped[L, R] {
	groups := make(map[K][]R, len(rows))
	order := make([]K, 0, len(rows))
	first := make(map[K]L, len(rows))
	for _, row := range rows {
		k := keyFn(row.L)
		if _, seen := first[k]; !seen {
			first[k] = row.L
			order = append(order, k)
			groups[k] = nil
		}
		if row.R != nil {
			groups[k] = append(groups[k], *row.R)
		}
	}
	out := make([]Grouped[L, R], len(order))
	for i, k := range order {
		out[i] = Grouped[L, R]{L: first[k], R: groups[k]}
	}
	return out
}

// Triple is one row of a two-way tee/chain join: a left model and two
// optional related models.
type Triple[L, M, R any] struct {
	L L
	M *M
	R *R
}

// TeeGroup is a left model with the two independent sets of related models
// joined off it (an L -> M and L -> R fan-out from the same parent).
type TeeGroup[L, M, R any] struct {
	L L
	M []M
	R []R
}

// ConsolidateQueryResultTee groups a T-shaped join (L -> M and L -> R,
// sharing no relation to each other) into one entry per left model holding
// both sets of related rows, each deduplicated by mKeyFn/rKeyFn since a
// cross join of two one-to-many relations otherwise produces |M|*|R| rows.
func ConsolidateQueryResultTee[L, M, R any, K comparable, MK comparable, RK comparable](
	rows []Triple[L, M, R],
	keyFn func(L) K,
	mKeyFn func(M) MK,
	rKeyFn func(R) RK,
) []TeeGroup[L, M, R] {
	type slot struct {
		m   []M
		r   []R
		mOK map[MK]struct{}
		rOK map[RK]struct{}
	}
	slots := make(map[K]*slot, len(rows))
	order := make([]K, 0, len(rows))
	first := make(map[K]L, len(rows))
	for _, row := range rows {
		k := keyFn(row.L)
		s, ok := slots[k]
		if !ok {
			s = &slot{mOK: map[MK]struct{}{}, rOK: map[RK]struct{}{}}
			slots[k] = s
			first[k] = row.L
			order = append(order, k)
		}
		if row.M != nil {
			mk := mKeyFn(*row.M)
			if _, dup := s.mOK[mk]; !dup {
				s.mOK[mk] = struct{}{}
				s.m = append(s.m, *row.M)
			}
		}
		if row.R != nil {
			rk := rKeyFn(*row.R)
			if _, dup := s.rOK[rk]; !dup {
				s.rOK[rk] = struct{}{}
				s.r = append(s.r, *row.R)
			}
		}
	}
	out := make([]TeeGroup[L, M, R], len(order))
	for i, k := range order {
		s := slots[k]
		out[i] = TeeGroup[L, M, R]{L: first[k], M: s.m, R: s.r}
	}
	return out
}

// ChainGroup is a left model with its M children, each carrying its own
// nested R children (an L -> M -> R chained fan-out).
type ChainGroup[L, M, R any] struct {
	L L
	M []Grouped[M, R]
}

// ConsolidateQueryResultChain groups a chained join (L -> M -> R) into one
// entry per left model holding its M children, each already consolidated
// with its own R children via ConsolidateQueryResult.
func ConsolidateQueryResultChain[L, M, R any, K comparable, MK comparable](
	rows []Triple[L, M, R],
	keyFn func(L) K,
	mKeyFn func(M) MK,
) []ChainGroup[L, M, R] {
	byLeft := make(map[K][]Pair[M, R], len(rows))
	order := make([]K, 0, len(rows))
	first := make(map[K]L, len(rows))
	for _, row := range rows {
		k := keyFn(row.L)
		if _, seen := first[k]; !seen {
			first[k] = row.L
			order = append(order, k)
			byLeft[k] = nil
		}
		if row.M != nil {
			byLeft[k] = append(byLeft[k], Pair[M, R]{L: *row.M, R: row.R})
		}
	}
	out := make([]ChainGroup[L, M, R], len(order))
	for i, k := range order {
		out[i] = ChainGroup[L, M, R]{
			L: first[k],
			M: ConsolidateQueryResult(byLeft[k], mKeyFn),
		}
	}
	return out
}

// RetainUniqueModelsOf filters rows down to the first occurrence of each
// distinct key, preserving order. LoadManyToMany uses it to deduplicate the
// target keys collected from junction rows before fetching the targets
// (ConsolidateQueryResultTee deduplicates its M/R slices itself).
func RetainUniqueModelsOf[T any, K comparable](rows []T, keyFn func(T) K) []T {
	seen := make(map[K]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		k := keyFn(row)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}
