package conn

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestTransactionCommit(t *testing.T) {
	c, mock := newMockConnection(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := c.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Execute(context.Background(), "UPDATE users SET name = $1", []any{"ariel"}))
	require.NoError(t, tx.Commit(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollback(t *testing.T) {
	c, mock := newMockConnection(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").WillReturnError(assertErr)
	mock.ExpectRollback()

	tx, err := c.Begin(context.Background())
	require.NoError(t, err)
	err = tx.Execute(context.Background(), "UPDATE users SET name = $1", []any{"ariel"})
	require.Error(t, err)
	require.NoError(t, tx.Rollback(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionDoubleCloseErrors(t *testing.T) {
	c, mock := newMockConnection(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := c.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	require.Error(t, tx.Commit(context.Background()))
}

func TestTransactionNestedSavepoint(t *testing.T) {
	c, mock := newMockConnection(t)
	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT sp1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE SAVEPOINT sp1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := c.Begin(context.Background())
	require.NoError(t, err)

	nested, err := tx.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, nested.Execute(context.Background(), "UPDATE users SET name = $1", []any{"ariel"}))
	require.NoError(t, nested.Commit(context.Background()))

	require.NoError(t, tx.Commit(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

var assertErr = dummyErr{}

type dummyErr struct{}

func (dummyErr) Error() string { return "boom" }
