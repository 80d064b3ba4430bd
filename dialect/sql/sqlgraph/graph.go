package sqlgraph

import (
	"fmt"

	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/entity"
)

// Step is one LEFT JOIN hop along a relation path: joining to table (aliased
// as `as`) by equating the columns of the previous step to onTo.
type Step struct {
	Table string
	As    string
	// OnFrom/OnTo are the column pairs the join condition equates, already
	// qualified against the previous step's alias / this step's alias.
	OnFrom []string
	OnTo   []string
}

// aliasFor names the n-th hop of a join path "r0", "r1", ... matching the
// convention observed in multi-hop relation joins (cake -> cake_filling AS
// r0 -> filling AS r1 -> vendor AS r2).
func aliasFor(n int) string { return fmt.Sprintf("r%d", n) }

// BuildPath returns the JOIN steps needed to reach rel's target entity from
// from. A direct HasOne/HasMany/BelongsTo relation is a single step; a
// ManyToMany relation is two steps through its junction table.
func BuildPath(from *entity.Entity, rel entity.Relation, startAlias int) []Step {
	if rel.Junction == nil {
		return []Step{{
			Table:  rel.To,
			As:     aliasFor(startAlias),
			OnFrom: rel.FromColumns,
			OnTo:   rel.ToColumns,
		}}
	}
	j := rel.Junction
	return []Step{
		{
			Table:  j.Table,
			As:     aliasFor(startAlias),
			OnFrom: rel.FromColumns,
			OnTo:   j.FromColumns,
		},
		{
			Table:  rel.To,
			As:     aliasFor(startAlias + 1),
			OnFrom: j.ToColumns,
			OnTo:   rel.ToColumns,
		},
	}
}

// Chain flattens BuildPath across a sequence of relations hung off one
// another (entity_linked-style multi-hop relations), renumbering aliases
// across the whole path so each hop's alias stays unique.
func Chain(start *entity.Entity, rels []entity.Relation) []Step {
	var steps []Step
	n := 0
	for _, rel := range rels {
		hop := BuildPath(start, rel, n)
		steps = append(steps, hop...)
		n += len(hop)
	}
	return steps
}

// ApplyJoins renders steps as LEFT JOINs onto sel, qualifying each join
// condition's left side against the previous step's table/alias (or base
// for the first step) and its right side against the step's own alias.
func ApplyJoins(sel *sql.Selector, base string, steps []Step) {
	d := sel.Dialect()
	left := base
	for _, step := range steps {
		sel.LeftJoin(sql.Table(step.Table).As(step.As))
		for i := range step.OnFrom {
			sel.On(sql.Qualify(d, left, step.OnFrom[i]), sql.Qualify(d, step.As, step.OnTo[i]))
		}
		left = step.As
	}
}
