package dialect

import "context"

// Dialect name constants identifying the SQL backends Velox supports.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Driver is the interface every Velox database driver must implement.
// It is intentionally small: query execution plus dialect identification,
// so that connection pooling, single-conn, and mock drivers can all satisfy
// it without pulling in database/sql specifics.
type Driver interface {
	// Exec executes a query that doesn't return records, such as an insert or update.
	// The args and v arguments are opaque to the interface and decoded by the
	// concrete implementation (e.g. dialect/sql.Conn expects args []any, v *sql.Result).
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns records, such as a select statement.
	Query(ctx context.Context, query string, args, v any) error
	// Tx starts a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is the interface a database transaction must implement. It is
// deliberately narrower than Driver (no nested Tx/Close): nested
// transactions are modeled explicitly via SAVEPOINTs by the conn package,
// not by asking a Tx for another Tx.
type Tx interface {
	ExecQuerier
	// Commit commits the transaction.
	Commit() error
	// Rollback aborts the transaction.
	Rollback() error
	// Dialect returns the dialect name of the underlying connection.
	Dialect() string
}

// ExecQuerier wraps the method executed by the different builders.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Savepointer is implemented by a Tx that supports nested transactions using
// named SAVEPOINTs (dialect/sql.Tx does). conn.Transaction.Begin returns an
// error for a Tx that does not implement it.
type Savepointer interface {
	// Savepoint creates a savepoint with the given name inside the current transaction.
	Savepoint(ctx context.Context, name string) error
	// ReleaseSavepoint releases a previously created savepoint.
	ReleaseSavepoint(ctx context.Context, name string) error
	// RollbackTo rolls the transaction back to the given savepoint without aborting it entirely.
	RollbackTo(ctx context.Context, name string) error
}
