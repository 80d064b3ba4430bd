package conn

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/syssam/velox/dialect"

	veloxerr "github.com/syssam/velox"
)

// Transaction wraps a dialect.Tx with SAVEPOINT-based nesting: calling
// Begin again on an already-open Transaction doesn't start a second
// database transaction, it pushes a named savepoint and gives the caller a
// handle whose Commit/Rollback release or unwind just that savepoint.
type Transaction struct {
	tx      dialect.Tx
	conn    *Connection
	depth   int32 // 0 for the root transaction, 1+ for each nested savepoint
	name    string
	closed  atomic.Bool
	log     *zap.Logger
	release func() // held for the transaction's lifetime on single-conn backends
}

// Begin starts a new root transaction on c.
func (c *Connection) Begin(ctx context.Context) (*Transaction, error) {
	return c.beginSavepoint(ctx, nil)
}

// BeginWithConfig starts a new root transaction, issuing a backend-specific
// isolation/access-mode statement around the BEGIN per dialect ordering
// rules: MySQL issues SET TRANSACTION before BEGIN, Postgres issues it as
// part of (or immediately after) BEGIN, and SQLite has no session-level
// isolation concept and only honors the access mode via a pragma.
func (c *Connection) BeginWithConfig(ctx context.Context, isolation, accessMode string) (*Transaction, error) {
	d := c.driver.Dialect()

	if d == dialect.MySQL && isolation != "" {
		if err := c.Execute2(ctx, fmt.Sprintf("SET TRANSACTION ISOLATION LEVEL %s", isolation)); err != nil {
			return nil, err
		}
	}

	t, err := c.beginSavepoint(ctx, nil)
	if err != nil {
		return nil, err
	}

	switch d {
	case dialect.Postgres:
		if isolation != "" {
			if err := t.exec(ctx, fmt.Sprintf("SET TRANSACTION ISOLATION LEVEL %s", isolation)); err != nil {
				t.Rollback(ctx)
				return nil, err
			}
		}
		if accessMode != "" {
			if err := t.exec(ctx, fmt.Sprintf("SET TRANSACTION %s", accessMode)); err != nil {
				t.Rollback(ctx)
				return nil, err
			}
		}
	case dialect.SQLite:
		if accessMode == "READ ONLY" {
			if err := t.exec(ctx, "PRAGMA query_only = ON"); err != nil {
				t.Rollback(ctx)
				return nil, err
			}
		}
	}
	return t, nil
}

// Execute2 runs a no-rows statement directly against c, outside of any
// transaction. It exists alongside Execute because BeginWithConfig needs to
// issue MySQL's pre-BEGIN SET TRANSACTION on the bare connection, before a
// Transaction value exists to hang the call off of.
func (c *Connection) Execute2(ctx context.Context, query string) error {
	_, err := c.Execute(ctx, query, nil)
	return err
}

// Begin starts a nested transaction inside t: it issues SAVEPOINT sp<n>,
// n being the new nesting depth, on t's dialect.Tx. Only the Connection
// opens a real dialect.Tx (the root transaction).
func (t *Transaction) Begin(ctx context.Context) (*Transaction, error) {
	return t.conn.beginSavepoint(ctx, t)
}

func (c *Connection) beginSavepoint(ctx context.Context, parent *Transaction) (*Transaction, error) {
	if parent == nil {
		var release func()
		if c.lock != nil {
			r, err := c.lock.acquire(ctx, c.kind.String(), c.cfg.AcquireTimeout)
			if err != nil {
				return nil, err
			}
			release = r
		}
		tx, err := c.driver.Tx(ctx)
		if err != nil {
			if release != nil {
				release()
			}
			return nil, NewConnError(c.driver.Dialect(), NewDbConnError(err))
		}
		t := &Transaction{tx: tx, conn: c, depth: 0, log: c.log, release: release}
		runtime.SetFinalizer(t, finalizeTransaction)
		return t, nil
	}

	depth := parent.depth + 1
	name := fmt.Sprintf("sp%d", depth)
	if err := savepoint(ctx, parent.tx, name); err != nil {
		return nil, NewDbExecError(err)
	}
	t := &Transaction{tx: parent.tx, conn: parent.conn, depth: depth, name: name, log: parent.log}
	runtime.SetFinalizer(t, finalizeTransaction)
	return t, nil
}

func savepoint(ctx context.Context, tx dialect.Tx, name string) error {
	sp, ok := tx.(dialect.Savepointer)
	if !ok {
		return fmt.Errorf("conn: dialect %s does not support nested transactions", tx.Dialect())
	}
	return sp.Savepoint(ctx, name)
}

// Execute runs a no-rows statement within the transaction.
func (t *Transaction) Execute(ctx context.Context, query string, args []any) error {
	return t.exec(ctx, query, args...)
}

func (t *Transaction) exec(ctx context.Context, query string, args ...any) error {
	return t.tx.Exec(ctx, query, []any(args), nil)
}

// Query runs a statement returning rows within the transaction.
func (t *Transaction) Query(ctx context.Context, query string, args []any, dest any) error {
	return t.tx.Query(ctx, query, args, dest)
}

// Commit ends the transaction: a root Transaction issues COMMIT, a nested
// one issues RELEASE SAVEPOINT. Commit is not idempotent: it may be called
// once, and a second call returns an error.
func (t *Transaction) Commit(ctx context.Context) error {
	if !t.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("conn: transaction already closed")
	}
	runtime.SetFinalizer(t, nil)
	if t.depth == 0 {
		defer t.releaseLock()
		if err := t.tx.Commit(); err != nil {
			return NewDbExecError(err)
		}
		return nil
	}
	sp, ok := t.tx.(dialect.Savepointer)
	if !ok {
		return fmt.Errorf("conn: dialect %s does not support nested transactions", t.tx.Dialect())
	}
	if err := sp.ReleaseSavepoint(ctx, t.name); err != nil {
		return NewDbExecError(err)
	}
	return nil
}

// Rollback aborts the transaction: a root Transaction issues ROLLBACK, a
// nested one issues ROLLBACK TO SAVEPOINT, undoing only the work done since
// that savepoint was taken without aborting the enclosing transaction.
func (t *Transaction) Rollback(ctx context.Context) error {
	if !t.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("conn: transaction already closed")
	}
	runtime.SetFinalizer(t, nil)
	if t.depth == 0 {
		defer t.releaseLock()
		if err := t.tx.Rollback(); err != nil {
			return veloxerr.NewRollbackError(err)
		}
		return nil
	}
	sp, ok := t.tx.(dialect.Savepointer)
	if !ok {
		return fmt.Errorf("conn: dialect %s does not support nested transactions", t.tx.Dialect())
	}
	if err := sp.RollbackTo(ctx, t.name); err != nil {
		return veloxerr.NewRollbackError(err)
	}
	return nil
}

// Dialect returns the underlying connection's dialect name.
func (t *Transaction) Dialect() string { return t.tx.Dialect() }

func (t *Transaction) releaseLock() {
	if t.release != nil {
		t.release()
	}
}

// finalizeTransaction logs a warning when a Transaction is garbage
// collected without Commit or Rollback having been called - a leaked
// transaction that would otherwise hold locks until the connection itself
// is torn down.
func finalizeTransaction(t *Transaction) {
	if t.closed.Load() {
		return
	}
	log := t.log
	if log == nil {
		log = zap.NewNop()
	}
	log.Warn("transaction garbage-collected without commit or rollback",
		zap.Int32("depth", t.depth), zap.String("dialect", t.tx.Dialect()))
	if t.release != nil && t.conn != nil && t.conn.lock != nil {
		t.conn.lock.poison()
	}
}
