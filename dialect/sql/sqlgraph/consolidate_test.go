package sqlgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeParent struct {
	ID   int
	Name string
}

type fakeChild struct {
	ID       int
	ParentID int
}

func TestConsolidateQueryResult(t *testing.T) {
	t.Run("groups rows by key preserving first-seen order", func(t *testing.T) {
		c1 := fakeChild{ID: 10, ParentID: 1}
		c2 := fakeChild{ID: 11, ParentID: 1}
		c3 := fakeChild{ID: 20, ParentID: 2}
		rows := []Pair[fakeParent, fakeChild]{
			{L: fakeParent{ID: 1, Name: "a"}, R: &c1},
			{L: fakeParent{ID: 2, Name: "b"}, R: &c3},
			{L: fakeParent{ID: 1, Name: "a"}, R: &c2},
		}
		got := ConsolidateQueryResult(rows, func(p fakeParent) int { return p.ID })

		assert.Len(t, got, 2)
		assert.Equal(t, 1, got[0].L.ID)
		assert.Equal(t, []fakeChild{c1, c2}, got[0].R)
		assert.Equal(t, 2, got[1].L.ID)
		assert.Equal(t, []fakeChild{c3}, got[1].R)
	})

	t.Run("a left model with no right match gets an empty, non-nil-check slice", func(t *testing.T) {
		rows := []Pair[fakeParent, fakeChild]{
			{L: fakeParent{ID: 1}, R: nil},
		}
		got := ConsolidateQueryResult(rows, func(p fakeParent) int { return p.ID })

		assert.Len(t, got, 1)
		assert.Empty(t, got[0].R)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		got := ConsolidateQueryResult[fakeParent, fakeChild](nil, func(p fakeParent) int { return p.ID })
		assert.Empty(t, got)
	})
}

func TestConsolidateQueryResultTee(t *testing.T) {
	type fruit struct{ ID int }
	type filling struct{ ID int }

	f1 := fruit{ID: 1}
	f2 := fruit{ID: 2}
	g1 := filling{ID: 100}

	rows := []Triple[fakeParent, fruit, filling]{
		{L: fakeParent{ID: 1}, M: &f1, R: &g1},
		{L: fakeParent{ID: 1}, M: &f2, R: &g1}, // cross-join duplicate of g1
		{L: fakeParent{ID: 1}, M: &f1, R: nil}, // duplicate of f1 from the other fan-out leg
	}

	got := ConsolidateQueryResultTee(rows,
		func(p fakeParent) int { return p.ID },
		func(f fruit) int { return f.ID },
		func(g filling) int { return g.ID },
	)

	assert.Len(t, got, 1)
	assert.Equal(t, []fruit{f1, f2}, got[0].M, "fruits deduplicated by key")
	assert.Equal(t, []filling{g1}, got[0].R, "fillings deduplicated by key despite appearing twice")
}

func TestConsolidateQueryResultChain(t *testing.T) {
	type post struct{ ID int }
	type comment struct{ ID int }

	p1 := post{ID: 1}
	p2 := post{ID: 2}
	c1 := comment{ID: 10}
	c2 := comment{ID: 11}

	rows := []Triple[fakeParent, post, comment]{
		{L: fakeParent{ID: 1}, M: &p1, R: &c1},
		{L: fakeParent{ID: 1}, M: &p1, R: &c2},
		{L: fakeParent{ID: 1}, M: &p2, R: nil},
	}

	got := ConsolidateQueryResultChain(rows,
		func(u fakeParent) int { return u.ID },
		func(p post) int { return p.ID },
	)

	assert.Len(t, got, 1)
	assert.Len(t, got[0].M, 2, "two distinct posts nested under the user")

	var forP1, forP2 *Grouped[post, comment]
	for i := range got[0].M {
		switch got[0].M[i].L.ID {
		case 1:
			forP1 = &got[0].M[i]
		case 2:
			forP2 = &got[0].M[i]
		}
	}
	if assert.NotNil(t, forP1) {
		assert.Equal(t, []comment{c1, c2}, forP1.R)
	}
	if assert.NotNil(t, forP2) {
		assert.Empty(t, forP2.R)
	}
}

func TestRetainUniqueModelsOf(t *testing.T) {
	t.Run("drops later duplicates, keeps first occurrence order", func(t *testing.T) {
		in := []fakeChild{
			{ID: 1, ParentID: 9},
			{ID: 2, ParentID: 9},
			{ID: 1, ParentID: 100}, // duplicate key, different payload - dropped
		}
		got := RetainUniqueModelsOf(in, func(c fakeChild) int { return c.ID })

		assert.Equal(t, []fakeChild{
			{ID: 1, ParentID: 9},
			{ID: 2, ParentID: 9},
		}, got)
	})

	t.Run("does not mutate the input slice's backing array", func(t *testing.T) {
		in := []fakeChild{{ID: 1}, {ID: 1}, {ID: 2}}
		out := RetainUniqueModelsOf(in, func(c fakeChild) int { return c.ID })

		assert.Len(t, out, 2)
		assert.Len(t, in, 3, "original slice is untouched")
	})

	t.Run("empty input", func(t *testing.T) {
		got := RetainUniqueModelsOf([]fakeChild{}, func(c fakeChild) int { return c.ID })
		assert.Empty(t, got)
	})
}
