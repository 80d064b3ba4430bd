package sqlgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/velox/dialect"
	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/entity"
)

func TestBuildPathDirectRelation(t *testing.T) {
	rel := entity.Relation{
		Name:        "posts",
		Kind:        entity.HasMany,
		To:          "posts",
		FromColumns: []string{"id"},
		ToColumns:   []string{"user_id"},
	}
	steps := BuildPath(entity.New("User", "users"), rel, 0)

	if assert.Len(t, steps, 1) {
		assert.Equal(t, "posts", steps[0].Table)
		assert.Equal(t, "r0", steps[0].As)
		assert.Equal(t, []string{"id"}, steps[0].OnFrom)
		assert.Equal(t, []string{"user_id"}, steps[0].OnTo)
	}
}

func TestBuildPathManyToMany(t *testing.T) {
	rel := entity.Relation{
		Name:        "tags",
		Kind:        entity.ManyToMany,
		To:          "tags",
		FromColumns: []string{"id"},
		ToColumns:   []string{"tag_id"},
		Junction: &entity.Junction{
			Table:       "post_tags",
			FromColumns: []string{"id"},
			ToColumns:   []string{"tag_id"},
		},
	}
	steps := BuildPath(entity.New("Post", "posts"), rel, 0)

	if assert.Len(t, steps, 2) {
		assert.Equal(t, "post_tags", steps[0].Table)
		assert.Equal(t, "r0", steps[0].As)
		assert.Equal(t, []string{"id"}, steps[0].OnFrom)
		assert.Equal(t, []string{"id"}, steps[0].OnTo, "junction's FromColumns side")

		assert.Equal(t, "tags", steps[1].Table)
		assert.Equal(t, "r1", steps[1].As)
		assert.Equal(t, []string{"tag_id"}, steps[1].OnFrom, "junction's ToColumns side")
		assert.Equal(t, []string{"tag_id"}, steps[1].OnTo)
	}
}

func TestChainRenumbersAliasesAcrossHops(t *testing.T) {
	start := entity.New("Cake", "cakes")
	toFilling := entity.Relation{
		Name: "fillings",
		Kind: entity.ManyToMany,
		To:   "fillings",
		Junction: &entity.Junction{
			Table:       "cake_filling",
			FromColumns: []string{"id"},
			ToColumns:   []string{"filling_id"},
		},
	}
	toVendor := entity.Relation{
		Name:        "vendor",
		Kind:        entity.BelongsTo,
		To:          "vendors",
		FromColumns: []string{"vendor_id"},
		ToColumns:   []string{"id"},
	}

	steps := Chain(start, []entity.Relation{toFilling, toVendor})

	if assert.Len(t, steps, 3) {
		assert.Equal(t, []string{"r0", "r1", "r2"}, []string{steps[0].As, steps[1].As, steps[2].As})
		assert.Equal(t, "cake_filling", steps[0].Table)
		assert.Equal(t, "fillings", steps[1].Table)
		assert.Equal(t, "vendors", steps[2].Table)
	}
}

func TestApplyJoinsRendersLeftJoins(t *testing.T) {
	rel := entity.Relation{
		Name:        "posts",
		Kind:        entity.HasMany,
		To:          "posts",
		FromColumns: []string{"id"},
		ToColumns:   []string{"user_id"},
	}
	steps := BuildPath(entity.New("User", "users"), rel, 0)

	sel := sql.Dialect(dialect.Postgres).Select("users.id").From(sql.Table("users"))
	ApplyJoins(sel, "users", steps)
	query, _ := sel.Query()

	assert.Contains(t, query, "LEFT JOIN")
	assert.Contains(t, query, `"posts" AS "r0"`)
	assert.Contains(t, query, `"users"."id" = "r0"."user_id"`)
}
