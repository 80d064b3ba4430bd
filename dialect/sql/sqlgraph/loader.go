package sqlgraph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/velox/contrib/dataloader"
)

// BatchFetch loads the related rows for a batch of foreign keys in one
// round trip. Callers implement it with a single WHERE fk IN (...) query
// built from dialect/sql; sqlgraph stays agnostic of how rows are actually
// fetched so it can batch relations for any connection backend.
type BatchFetch[K comparable, R any] func(ctx context.Context, keys []K) ([]R, error)

// LoadOne eager-loads a has-one/belongs-to relation for a batch of parent
// models: one BatchFetch call for all parents, then the results are matched
// back up to each parent, with nil where no related row exists.
func LoadOne[M any, K comparable, R any](
	ctx context.Context,
	models []M,
	keyFn func(M) K,
	rKeyFn func(R) K,
	fetch BatchFetch[K, R],
) ([]*R, error) {
	keys := make([]K, len(models))
	for i, m := range models {
		keys[i] = keyFn(m)
	}
	rows, err := fetch(ctx, keys)
	if err != nil {
		return nil, err
	}
	byKey := make(map[K]R, len(rows))
	for _, r := range rows {
		byKey[rKeyFn(r)] = r
	}
	out := make([]*R, len(keys))
	for i, k := range keys {
		if r, ok := byKey[k]; ok {
			out[i] = &r
		}
	}
	return out, nil
}

// LoadMany eager-loads a has-many relation for a batch of parent models: one
// BatchFetch call for all parents, grouped back out per parent in order.
func LoadMany[M any, K comparable, R any](
	ctx context.Context,
	models []M,
	keyFn func(M) K,
	rKeyFn func(R) K,
	fetch BatchFetch[K, R],
) ([][]R, error) {
	keys := make([]K, len(models))
	for i, m := range models {
		keys[i] = keyFn(m)
	}
	rows, err := fetch(ctx, keys)
	if err != nil {
		return nil, err
	}
	groups := dataloader.GroupByKey(rows, rKeyFn)
	return dataloader.OrderGroupsByKeys(keys, groups), nil
}

// JunctionRow is one row of a many-to-many join table: the two foreign keys
// linking the owning entity to the related entity.
type JunctionRow[K comparable] struct {
	From K
	To   K
}

// LoadManyToMany eager-loads a many-to-many relation through a junction
// table: the junction rows for the owning keys are fetched first (their
// To columns are the only way to know which target rows are even needed),
// then the target rows are fetched in a second batch and regrouped by owner.
func LoadManyToMany[M any, K comparable, R any](
	ctx context.Context,
	models []M,
	keyFn func(M) K,
	rKeyFn func(R) K,
	junctionFetch func(ctx context.Context, keys []K) ([]JunctionRow[K], error),
	targetFetch BatchFetch[K, R],
) ([][]R, error) {
	keys := make([]K, len(models))
	for i, m := range models {
		keys[i] = keyFn(m)
	}

	junctions, err := junctionFetch(ctx, keys)
	if err != nil {
		return nil, err
	}

	allTargetKeys := make([]K, len(junctions))
	byOwner := make(map[K][]K, len(keys))
	for i, j := range junctions {
		allTargetKeys[i] = j.To
		byOwner[j.From] = append(byOwner[j.From], j.To)
	}
	targetKeys := RetainUniqueModelsOf(allTargetKeys, func(k K) K { return k })

	targets, err := targetFetch(ctx, targetKeys)
	if err != nil {
		return nil, err
	}
	targetByKey := make(map[K]R, len(targets))
	for _, t := range targets {
		targetByKey[rKeyFn(t)] = t
	}

	out := make([][]R, len(keys))
	for i, k := range keys {
		for _, tk := range byOwner[k] {
			if t, ok := targetByKey[tk]; ok {
				out[i] = append(out[i], t)
			}
		}
	}
	return out, nil
}

// Preload runs independent eager-load calls concurrently and fails fast on
// the first error, for the common case of populating several unrelated
// relations on the same batch of parent models in one pass.
func Preload(ctx context.Context, loaders ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range loaders {
		l := l
		g.Go(func() error { return l(gctx) })
	}
	return g.Wait()
}
