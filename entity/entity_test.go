package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userEntity() *Entity {
	e := New("User", "users")
	e.AddColumn(Col("id", ColumnTypeBigInt).AsAutoIncrement())
	e.AddColumn(Col("email", ColumnTypeVarchar).AsUnique())
	e.AddColumn(Col("bio", ColumnTypeText).AsNullable())
	e.PrimaryKey("id")
	return e
}

func TestEntityColumns(t *testing.T) {
	e := userEntity()

	assert.Equal(t, []string{"id", "email", "bio"}, e.ColumnNames())

	c, ok := e.Column("email")
	require.True(t, ok)
	assert.True(t, c.Unique)
	assert.False(t, c.Nullable)

	_, ok = e.Column("missing")
	assert.False(t, ok)
}

func TestEntityAddColumnDuplicatePanics(t *testing.T) {
	e := New("User", "users")
	e.AddColumn(Col("id", ColumnTypeBigInt))

	assert.Panics(t, func() {
		e.AddColumn(Col("id", ColumnTypeBigInt))
	})
}

func TestEntityPrimaryKey(t *testing.T) {
	e := userEntity()
	assert.Equal(t, []string{"id"}, e.PrimaryKeyColumns())
	assert.Equal(t, 1, e.PrimaryKeyArity())
}

func TestEntityRelations(t *testing.T) {
	e := userEntity()
	e.AddRelation(Relation{
		Name:        "posts",
		Kind:        HasMany,
		To:          "Post",
		FromColumns: []string{"id"},
		ToColumns:   []string{"user_id"},
	})

	r, ok := e.Relation("posts")
	require.True(t, ok)
	assert.Equal(t, HasMany, r.Kind)
	assert.Equal(t, "Post", r.To)

	_, ok = e.Relation("missing")
	assert.False(t, ok)
}

func TestEntityAddRelationDuplicatePanics(t *testing.T) {
	e := userEntity()
	rel := Relation{Name: "posts", Kind: HasMany, To: "Post", FromColumns: []string{"id"}, ToColumns: []string{"user_id"}}
	e.AddRelation(rel)

	assert.Panics(t, func() {
		e.AddRelation(rel)
	})
}

func TestEntityValidate(t *testing.T) {
	t.Run("valid entity passes", func(t *testing.T) {
		assert.NoError(t, userEntity().Validate())
	})

	t.Run("missing table name fails", func(t *testing.T) {
		e := New("User", "")
		e.AddColumn(Col("id", ColumnTypeBigInt))
		e.PrimaryKey("id")
		assert.Error(t, e.Validate())
	})

	t.Run("missing primary key fails", func(t *testing.T) {
		e := New("User", "users")
		e.AddColumn(Col("id", ColumnTypeBigInt))
		assert.Error(t, e.Validate())
	})

	t.Run("primary key column not declared fails", func(t *testing.T) {
		e := New("User", "users")
		e.AddColumn(Col("id", ColumnTypeBigInt))
		e.PrimaryKey("missing")
		assert.Error(t, e.Validate())
	})

	t.Run("relation column not declared fails", func(t *testing.T) {
		e := userEntity()
		e.AddRelation(Relation{
			Name:        "posts",
			Kind:        HasMany,
			To:          "Post",
			FromColumns: []string{"not_a_column"},
			ToColumns:   []string{"user_id"},
		})
		assert.Error(t, e.Validate())
	})
}

func TestNewFromName(t *testing.T) {
	t.Run("pluralizes and underscores", func(t *testing.T) {
		e := NewFromName("OrderItem")
		assert.Equal(t, "order_items", e.Table)
	})

	t.Run("simple name", func(t *testing.T) {
		e := NewFromName("User")
		assert.Equal(t, "users", e.Table)
	})
}

func TestEntityWithSchema(t *testing.T) {
	e := userEntity().WithSchema("public")
	assert.Equal(t, "public", e.Schema)
}

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		e := userEntity()
		require.NoError(t, r.Register(e))

		got, ok := r.Get("User")
		require.True(t, ok)
		assert.Same(t, e, got)
	})

	t.Run("duplicate name fails", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(userEntity()))
		assert.Error(t, r.Register(userEntity()))
	})

	t.Run("invalid entity fails", func(t *testing.T) {
		r := NewRegistry()
		e := New("Broken", "broken")
		assert.Error(t, r.Register(e))
	})

	t.Run("missing entity", func(t *testing.T) {
		r := NewRegistry()
		_, ok := r.Get("Nope")
		assert.False(t, ok)
	})

	t.Run("MustRegister panics on invalid entity", func(t *testing.T) {
		r := NewRegistry()
		e := New("Broken", "broken")
		assert.Panics(t, func() {
			r.MustRegister(e)
		})
	})

	t.Run("MustRegister returns the entity", func(t *testing.T) {
		r := NewRegistry()
		e := userEntity()
		got := r.MustRegister(e)
		assert.Same(t, e, got)
	})
}
