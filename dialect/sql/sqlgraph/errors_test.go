package sqlgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	veloxerr "github.com/syssam/velox"
)

type fakeSQLStateError struct{ state string }

func (e fakeSQLStateError) Error() string    { return fmt.Sprintf("sql state %s", e.state) }
func (e fakeSQLStateError) SQLState() string { return e.state }

type fakeCodeError struct{ code string }

func (e fakeCodeError) Error() string { return fmt.Sprintf("code %s", e.code) }
func (e fakeCodeError) Code() string  { return e.code }

type fakeNumberError struct{ num uint16 }

func (e fakeNumberError) Error() string  { return fmt.Sprintf("mysql error %d", e.num) }
func (e fakeNumberError) Number() uint16 { return e.num }

type wrappedError struct {
	msg string
	err error
}

func (e wrappedError) Error() string { return e.msg }
func (e wrappedError) Unwrap() error { return e.err }

func TestIsConstraintErrorWrapsVeloxType(t *testing.T) {
	err := veloxerr.NewConstraintError("duplicate key", nil)
	assert.True(t, IsConstraintError(err))
	assert.False(t, IsConstraintError(errors.New("something else")))
	assert.False(t, IsConstraintError(nil))
}

func TestIsUniqueConstraintError(t *testing.T) {
	t.Run("postgres SQLSTATE", func(t *testing.T) {
		assert.True(t, IsUniqueConstraintError(fakeSQLStateError{state: "23505"}))
	})
	t.Run("pq-style error code", func(t *testing.T) {
		assert.True(t, IsUniqueConstraintError(fakeCodeError{code: "23505"}))
	})
	t.Run("mysql error number", func(t *testing.T) {
		assert.True(t, IsUniqueConstraintError(fakeNumberError{num: 1062}))
	})
	t.Run("wrapped error is unwrapped", func(t *testing.T) {
		wrapped := wrappedError{msg: "outer", err: fakeNumberError{num: 1062}}
		assert.True(t, IsUniqueConstraintError(wrapped))
	})
	t.Run("string fallback", func(t *testing.T) {
		assert.True(t, IsUniqueConstraintError(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)))
		assert.True(t, IsUniqueConstraintError(errors.New("Error 1062: Duplicate entry 'a' for key 'email'")))
		assert.True(t, IsUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	})
	t.Run("unrelated error", func(t *testing.T) {
		assert.False(t, IsUniqueConstraintError(errors.New("connection refused")))
	})
	t.Run("nil error", func(t *testing.T) {
		assert.False(t, IsUniqueConstraintError(nil))
	})
}

func TestIsForeignKeyConstraintError(t *testing.T) {
	t.Run("postgres SQLSTATE", func(t *testing.T) {
		assert.True(t, IsForeignKeyConstraintError(fakeSQLStateError{state: "23503"}))
	})
	t.Run("mysql parent and child error numbers", func(t *testing.T) {
		assert.True(t, IsForeignKeyConstraintError(fakeNumberError{num: 1451}))
		assert.True(t, IsForeignKeyConstraintError(fakeNumberError{num: 1452}))
	})
	t.Run("string fallback", func(t *testing.T) {
		assert.True(t, IsForeignKeyConstraintError(errors.New("pq: insert or update on table violates foreign key constraint")))
		assert.True(t, IsForeignKeyConstraintError(errors.New("FOREIGN KEY constraint failed")))
	})
	t.Run("unrelated error", func(t *testing.T) {
		assert.False(t, IsForeignKeyConstraintError(errors.New("syntax error")))
	})
}

func TestIsCheckConstraintError(t *testing.T) {
	t.Run("postgres SQLSTATE", func(t *testing.T) {
		assert.True(t, IsCheckConstraintError(fakeSQLStateError{state: "23514"}))
	})
	t.Run("mysql error number", func(t *testing.T) {
		assert.True(t, IsCheckConstraintError(fakeNumberError{num: 3819}))
	})
	t.Run("string fallback", func(t *testing.T) {
		assert.True(t, IsCheckConstraintError(errors.New("pq: new row violates check constraint \"age_check\"")))
		assert.True(t, IsCheckConstraintError(errors.New("CHECK constraint failed: age >= 0")))
	})
	t.Run("unrelated error", func(t *testing.T) {
		assert.False(t, IsCheckConstraintError(errors.New("timeout")))
	})
}

func TestAsErrorWalksUnwrapChain(t *testing.T) {
	inner := fakeCodeError{code: "23505"}
	outer := fmt.Errorf("wrapped: %w", inner)

	e, ok := asError[errorCoder](outer)
	assert.True(t, ok)
	assert.Equal(t, "23505", e.Code())

	_, ok = asError[errorNumberer](outer)
	assert.False(t, ok, "inner error does not implement errorNumberer")
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("foo bar baz", "nope", "bar"))
	assert.False(t, containsAny("foo bar baz", "nope", "absent"))
}
