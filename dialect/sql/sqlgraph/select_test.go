package sqlgraph

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velox/dialect"
	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/entity"
	"github.com/syssam/velox/value"
)

type selUser struct {
	ID   int64  `sql:"id"`
	Name string `sql:"name"`
}

type selPost struct {
	ID     int64  `sql:"id"`
	UserID int64  `sql:"user_id"`
	Title  string `sql:"title"`
}

func userEnt() *entity.Entity {
	return entity.New("User", "users").
		AddColumn(entity.Col("id", entity.ColumnTypeBigInt)).
		AddColumn(entity.Col("name", entity.ColumnTypeVarchar)).
		PrimaryKey("id")
}

func postEnt() *entity.Entity {
	return entity.New("Post", "posts").
		AddColumn(entity.Col("id", entity.ColumnTypeBigInt)).
		AddColumn(entity.Col("user_id", entity.ColumnTypeBigInt)).
		AddColumn(entity.Col("title", entity.ColumnTypeVarchar)).
		PrimaryKey("id")
}

func commentEnt() *entity.Entity {
	return entity.New("Comment", "comments").
		AddColumn(entity.Col("id", entity.ColumnTypeBigInt)).
		AddColumn(entity.Col("post_id", entity.ColumnTypeBigInt)).
		AddColumn(entity.Col("body", entity.ColumnTypeVarchar)).
		PrimaryKey("id")
}

func userPostsRelation() entity.Relation {
	return entity.Relation{
		Name:        "posts",
		Kind:        entity.HasMany,
		To:          "posts",
		FromColumns: []string{"id"},
		ToColumns:   []string{"user_id"},
	}
}

func postCommentsRelation() entity.Relation {
	return entity.Relation{
		Name:        "comments",
		Kind:        entity.HasMany,
		To:          "comments",
		FromColumns: []string{"id"},
		ToColumns:   []string{"post_id"},
	}
}

func TestFindAlsoRelated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := sql.OpenDB(dialect.Postgres, db)

	rows := sqlmock.NewRows([]string{"A_id", "A_name", "B_id", "B_user_id", "B_title"}).
		AddRow(1, "alice", 10, 1, "hello").
		AddRow(2, "bob", nil, nil, nil)
	mock.ExpectQuery(".*").WillReturnRows(rows)

	got, err := FindAlsoRelated[selUser, selPost](
		context.Background(), drv, dialect.Postgres,
		userEnt(), postEnt(), userPostsRelation(), nil,
	)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].L.ID)
	require.NotNil(t, got[0].R)
	assert.Equal(t, "hello", got[0].R.Title)

	assert.Equal(t, int64(2), got[1].L.ID)
	assert.Nil(t, got[1].R, "bob has no matching post")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWithRelated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := sql.OpenDB(dialect.Postgres, db)

	rows := sqlmock.NewRows([]string{"A_id", "A_name", "B_id", "B_user_id", "B_title"}).
		AddRow(1, "alice", 10, 1, "first").
		AddRow(1, "alice", 11, 1, "second").
		AddRow(2, "bob", nil, nil, nil)
	mock.ExpectQuery(".*").WillReturnRows(rows)

	got, err := FindWithRelated[selUser, selPost, int64](
		context.Background(), drv, dialect.Postgres,
		userEnt(), postEnt(), userPostsRelation(), nil,
		func(u selUser) int64 { return u.ID },
	)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].L.ID)
	assert.Len(t, got[0].R, 2, "alice's two posts are grouped under one entry")

	assert.Equal(t, int64(2), got[1].L.ID)
	assert.Empty(t, got[1].R, "bob has no posts")

	require.NoError(t, mock.ExpectationsWereMet())
}

func decodeSelUser(m map[string]value.Value) (selUser, error) {
	id, err := m["id"].Int64()
	if err != nil {
		return selUser{}, err
	}
	name, err := m["name"].Str()
	if err != nil {
		return selUser{}, err
	}
	return selUser{ID: id, Name: name}, nil
}

func decodeSelPost(m map[string]value.Value) (selPost, error) {
	id, err := m["id"].Int64()
	if err != nil {
		return selPost{}, err
	}
	userID, err := m["user_id"].Int64()
	if err != nil {
		return selPost{}, err
	}
	title, err := m["title"].Str()
	if err != nil {
		return selPost{}, err
	}
	return selPost{ID: id, UserID: userID, Title: title}, nil
}

type selComment struct {
	ID     int64  `sql:"id"`
	PostID int64  `sql:"post_id"`
	Body   string `sql:"body"`
}

func decodeSelComment(m map[string]value.Value) (selComment, error) {
	id, err := m["id"].Int64()
	if err != nil {
		return selComment{}, err
	}
	postID, err := m["post_id"].Int64()
	if err != nil {
		return selComment{}, err
	}
	body, err := m["body"].Str()
	if err != nil {
		return selComment{}, err
	}
	return selComment{ID: id, PostID: postID, Body: body}, nil
}

func TestFindWithRelatedChain(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := sql.OpenDB(dialect.Postgres, db)

	rows := sqlmock.NewRows([]string{
		"A_id", "A_name",
		"M_id", "M_user_id", "M_title",
		"R_id", "R_post_id", "R_body",
	}).
		AddRow(1, "alice", 10, 1, "first post", 100, 10, "nice post").
		AddRow(1, "alice", 10, 1, "first post", 101, 10, "another comment").
		AddRow(1, "alice", 11, 1, "second post", nil, nil, nil)
	mock.ExpectQuery(".*").WillReturnRows(rows)

	got, err := FindWithRelatedChain[selUser, selPost, selComment, int64, int64](
		context.Background(), drv, dialect.Postgres,
		userEnt(), postEnt(), commentEnt(),
		userPostsRelation(), postCommentsRelation(), nil,
		decodeSelUser, decodeSelPost, decodeSelComment,
		func(u selUser) int64 { return u.ID },
		func(p selPost) int64 { return p.ID },
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].L.ID)
	require.Len(t, got[0].M, 2, "alice has two posts")

	var first, second *Grouped[selPost, selComment]
	for i := range got[0].M {
		switch got[0].M[i].L.ID {
		case 10:
			first = &got[0].M[i]
		case 11:
			second = &got[0].M[i]
		}
	}
	if assert.NotNil(t, first) {
		assert.Len(t, first.R, 2, "first post has two comments")
	}
	if assert.NotNil(t, second) {
		assert.Empty(t, second.R, "second post has no comments")
	}

	require.NoError(t, mock.ExpectationsWereMet())
}
