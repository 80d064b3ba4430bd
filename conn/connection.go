package conn

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/syssam/velox/dialect"
	dsql "github.com/syssam/velox/dialect/sql"

	// Registered with database/sql under their dialect names so
	// dsql.Open("postgres"/"mysql"/"sqlite", ...) can find them.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

// Kind discriminates the backend variant a Connection was built for. It
// decides how Open builds the driver and whether a single-connection lock
// guards it; statements themselves are sent through the dialect.Driver
// interface, not through a switch on Kind.
type Kind uint8

const (
	// KindPooled is a database/sql-pooled backend (the postgres://,
	// postgresql://, mysql:// and sqlite:// DSN schemes).
	KindPooled Kind = iota
	// KindSingleConn is a single physical connection shared behind a
	// try-lock mutex (the sqlite-sync:// DSN scheme, the "synchronous"
	// SQLite backend).
	KindSingleConn
	// KindMock is an in-memory sqlmock-backed driver, for tests.
	KindMock
	// KindJSONProxy is the HTTP/JSON-speaking remote SQL endpoint backend.
	KindJSONProxy
)

// String renders the Kind's name, used in log fields and error messages.
func (k Kind) String() string {
	switch k {
	case KindPooled:
		return "pooled"
	case KindSingleConn:
		return "single-conn"
	case KindMock:
		return "mock"
	case KindJSONProxy:
		return "jsonproxy"
	default:
		return "unknown"
	}
}

// Connection is the dispatcher over Velox's backends: it pairs a Kind with
// the dialect.Driver it wraps. Every statement is an interface call on that
// driver; Kind only selects the lock and the Open path.
type Connection struct {
	kind   Kind
	driver dialect.Driver
	stats  *dsql.StatsDriver // non-nil when query statistics are being collected (cfg.SQLxLogging is false)
	lock   *lockMutex        // non-nil only for KindSingleConn

	cfg Config
	log *zap.Logger
}

// schemeKind maps a DSN's URL scheme to the Kind it opens.
func schemeKind(scheme string) (Kind, string, error) {
	switch scheme {
	case "postgres", "postgresql":
		return KindPooled, dialect.Postgres, nil
	case "mysql":
		return KindPooled, dialect.MySQL, nil
	case "sqlite":
		return KindPooled, dialect.SQLite, nil
	case "sqlite-sync":
		return KindSingleConn, dialect.SQLite, nil
	case "mock":
		return KindMock, dialect.SQLite, nil
	case "jsonproxy":
		return KindJSONProxy, dialect.Postgres, nil
	default:
		return 0, "", fmt.Errorf("conn: unrecognized DSN scheme %q", scheme)
	}
}

// Open parses cfg.DSN's URL scheme to select a backend and opens it.
// logger may be nil (a no-op logger is used).
func Open(cfg Config, logger *zap.Logger) (*Connection, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	u, err := url.Parse(cfg.DSN)
	if err != nil {
		return nil, NewConnError("", fmt.Errorf("parsing dsn: %w", err))
	}
	kind, dialectName, err := schemeKind(u.Scheme)
	if err != nil {
		return nil, NewConnError(u.Scheme, err)
	}

	c := &Connection{kind: kind, cfg: cfg, log: logger}
	switch kind {
	case KindPooled, KindSingleConn:
		drv, err := dsql.Open(dialectName, u.Opaque+u.Path)
		if err != nil {
			return nil, NewConnError(dialectName, NewDbConnError(err))
		}
		drv.DB().SetMaxOpenConns(cfg.MaxConnections)
		drv.DB().SetMaxIdleConns(cfg.MinConnections)
		if cfg.IdleTimeout > 0 {
			drv.DB().SetConnMaxIdleTime(cfg.IdleTimeout)
		}
		if cfg.MaxLifetime > 0 {
			drv.DB().SetConnMaxLifetime(cfg.MaxLifetime)
		}
		if cfg.SQLxLogging {
			// Per-statement debug logging is handed off to DebugDriver rather
			// than done inline here, so the two ways of instrumenting a
			// *dsql.Driver (counters vs. verbose tracing) stay mutually
			// exclusive instead of both firing on every statement.
			c.driver = dsql.NewDebugDriver(drv, dsql.DebugWithLog(func(_ context.Context, v ...any) {
				c.log.Debug(fmt.Sprint(v...))
			}))
		} else {
			stats := dsql.NewStatsDriver(drv, dsql.WithSlowQueryHook(func(_ context.Context, query string, _ []any, d time.Duration) {
				c.log.Warn("slow query", zap.String("query", query), zap.Duration("duration", d))
			}))
			c.driver = stats
			c.stats = stats
		}
		if kind == KindSingleConn {
			drv.DB().SetMaxOpenConns(1)
			c.lock = newLockMutex()
		}
		if cfg.AfterConnect != nil {
			if err := cfg.AfterConnect(dialectName); err != nil {
				return nil, NewConnError(dialectName, err)
			}
		}
	default:
		return nil, fmt.Errorf("conn: backend %s must be constructed via its dedicated opener, not conn.Open", kind)
	}
	return c, nil
}

// NewFromDriver wraps an already-open dialect.Driver (the mock and JSON
// proxy backends, or any caller-constructed driver) as a Connection of the
// given Kind.
func NewFromDriver(kind Kind, drv dialect.Driver, cfg Config, logger *zap.Logger) *Connection {
	cfg.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Connection{kind: kind, driver: drv, cfg: cfg, log: logger}
	if d, ok := drv.(*dsql.Driver); ok && !cfg.SQLxLogging {
		stats := dsql.NewStatsDriver(d, dsql.WithSlowQueryHook(func(_ context.Context, query string, _ []any, dur time.Duration) {
			c.log.Warn("slow query", zap.String("query", query), zap.Duration("duration", dur))
		}))
		c.driver = stats
		c.stats = stats
	} else if d, ok := drv.(*dsql.Driver); ok && cfg.SQLxLogging {
		c.driver = dsql.NewDebugDriver(d, dsql.DebugWithLog(func(_ context.Context, v ...any) {
			c.log.Debug(fmt.Sprint(v...))
		}))
	}
	if kind == KindSingleConn {
		c.lock = newLockMutex()
	}
	return c
}

// Stats returns a snapshot of this connection's accumulated query counters
// and false if this connection isn't tracking them - only a *dsql.Driver
// with SQLxLogging off is wrapped in a *dsql.StatsDriver (by Open, or by
// NewFromDriver whatever the Kind); with SQLxLogging on it is wrapped in a
// *dsql.DebugDriver that traces every statement instead, and any other
// dialect.Driver handed to NewFromDriver is used unwrapped.
func (c *Connection) Stats() (dsql.StatsSnapshot, bool) {
	if c.stats == nil {
		return dsql.StatsSnapshot{}, false
	}
	return c.stats.QueryStats().Stats(), true
}

// Dialect returns the underlying driver's dialect name.
func (c *Connection) Dialect() string { return c.driver.Dialect() }

// GetDatabaseBackend returns the database backend family this connection
// talks to.
func (c *Connection) GetDatabaseBackend() string { return c.driver.Dialect() }

// SupportReturning reports whether this connection's dialect has a native
// RETURNING clause.
func (c *Connection) SupportReturning() bool {
	return c.driver.Dialect() == dialect.Postgres || c.driver.Dialect() == dialect.SQLite
}

// applyMutable hot-swaps the pool-bound and logging fields of cfg, leaving
// the DSN and AfterConnect hook untouched.
func (c *Connection) applyMutable(m mutableConfig) {
	c.cfg.MaxConnections = m.MaxConnections
	c.cfg.MinConnections = m.MinConnections
	c.cfg.AcquireTimeout = m.AcquireTimeout
	c.cfg.IdleTimeout = m.IdleTimeout
	c.cfg.MaxLifetime = m.MaxLifetime
	c.cfg.SQLxLogging = m.SQLxLogging
	var drv *dsql.Driver
	switch d := c.driver.(type) {
	case *dsql.Driver:
		drv = d
	case *dsql.StatsDriver:
		drv = d.Driver
	case *dsql.DebugDriver:
		drv = d.Driver
	}
	if drv == nil {
		return
	}
	drv.DB().SetMaxOpenConns(m.MaxConnections)
	drv.DB().SetMaxIdleConns(m.MinConnections)
	if m.IdleTimeout > 0 {
		drv.DB().SetConnMaxIdleTime(m.IdleTimeout)
	}
	if m.MaxLifetime > 0 {
		drv.DB().SetConnMaxLifetime(m.MaxLifetime)
	}
	// Switching SQLxLogging at runtime doesn't swap the StatsDriver/
	// DebugDriver wrapper chosen at Open time - doing so mid-flight would
	// require re-wrapping a driver already in use by in-flight queries.
}

// withLoan runs fn while holding the single-connection lock, a no-op for
// pooled backends (database/sql's own pool already serializes access).
func (c *Connection) withLoan(ctx context.Context, fn func() error) error {
	if c.lock == nil {
		return fn()
	}
	release, err := c.lock.acquire(ctx, c.kind.String(), c.cfg.AcquireTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			c.lock.poison()
			release()
			panic(r)
		}
		release()
	}()
	return fn()
}

// Execute runs a statement that doesn't return rows (INSERT/UPDATE/DELETE/DDL).
func (c *Connection) Execute(ctx context.Context, query string, args []any) (dsql.Result, error) {
	start := time.Now()
	var res dsql.Result
	err := c.withLoan(ctx, func() error {
		return c.driver.Exec(ctx, query, args, &res)
	})
	c.logStatement(ctx, "exec", query, args, start, err)
	if err != nil {
		return nil, NewDbExecError(err)
	}
	return res, nil
}

// QueryAll runs a statement and returns every resulting row.
func (c *Connection) QueryAll(ctx context.Context, query string, args []any) (*dsql.Rows, error) {
	start := time.Now()
	var rows dsql.Rows
	err := c.withLoan(ctx, func() error {
		return c.driver.Query(ctx, query, args, &rows)
	})
	c.logStatement(ctx, "query", query, args, start, err)
	if err != nil {
		return nil, NewDbQueryError(err)
	}
	return &rows, nil
}

// QueryOne runs a statement expected to match at most one row. The
// returned Rows still needs Next/Scan/Close called on it the same as
// QueryAll's - QueryOne only documents the caller's intent, since
// database/sql has no narrower single-row streaming type of its own.
func (c *Connection) QueryOne(ctx context.Context, query string, args []any) (*dsql.Rows, error) {
	return c.QueryAll(ctx, query, args)
}

// Stream runs a statement for incremental row-at-a-time consumption. Go's
// database/sql.Rows already streams from the wire as Next is called, so
// this is QueryAll in every way but name - the name exists to mirror the
// backend-agnostic Connection interface's vocabulary, not because the
// mechanics differ.
func (c *Connection) Stream(ctx context.Context, query string, args []any) (*dsql.Rows, error) {
	return c.QueryAll(ctx, query, args)
}

// logStatement only reports failures: per-statement tracing is the
// DebugDriver's job when cfg.SQLxLogging is on, and slow-query detection is
// the StatsDriver's job otherwise - see Open/NewFromDriver.
func (c *Connection) logStatement(ctx context.Context, kind, query string, args []any, start time.Time, err error) {
	if err == nil {
		return
	}
	c.log.Warn("statement failed",
		zap.String("kind", kind), zap.String("query", query),
		zap.Duration("duration", time.Since(start)), zap.Error(err))
}

// Close closes the underlying driver.
func (c *Connection) Close() error { return c.driver.Close() }
