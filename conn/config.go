package conn

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to open a Connection, populated either
// programmatically or by loading a YAML file with LoadConfig.
type Config struct {
	// DSN is the backend-specific connection string. Its URL scheme selects
	// the backend (postgres://, mysql://, sqlite://, sqlite-sync://, mock://,
	// jsonproxy://).
	DSN string `yaml:"dsn" validate:"required"`

	// MaxConnections caps the pooled backends' open connections.
	MaxConnections int `yaml:"max_connections" validate:"omitempty,min=1"`
	// MinConnections is passed to the pool's SetMaxIdleConns: it caps how
	// many idle connections the pooled backends keep. No minimum number of
	// open connections is maintained.
	MinConnections int `yaml:"min_connections" validate:"omitempty,min=0"`
	// AcquireTimeout bounds how long a caller waits for the single-connection
	// backend's mutex try-lock. The pooled backends do not apply it: there a
	// caller waits for a free connection until its context ends. Defaults to
	// 60s per spec.
	AcquireTimeout time.Duration `yaml:"acquire_timeout" validate:"omitempty,gt=0"`
	// IdleTimeout closes pooled connections that have sat idle this long.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// MaxLifetime closes pooled connections after they've existed this long,
	// regardless of idle time.
	MaxLifetime time.Duration `yaml:"max_lifetime"`

	// SQLxLogging enables Debug-level logging of every Exec/Query statement.
	SQLxLogging bool `yaml:"sqlx_logging"`
	// SchemaSearchPath is the Postgres search_path setting. It is loaded and
	// kept with the config; Open and NewFromDriver do not issue a
	// SET search_path for it.
	SchemaSearchPath string `yaml:"schema_search_path"`

	// AfterConnect, if set, is called once by Open with the backend's dialect
	// name, after the pool is configured and before Open returns. It is not
	// re-run for each physical connection the pool opens later, and
	// NewFromDriver does not call it.
	AfterConnect func(driverDialect string) error `yaml:"-"`
}

var validate = validator.New()

const defaultAcquireTimeout = 60 * time.Second

// normalize fills in defaults left zero by the caller or the YAML file.
func (c *Config) normalize() {
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = defaultAcquireTimeout
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
	}
}

// Validate checks the config's structural invariants via struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("conn: invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("conn: reading config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("conn: parsing config %s: %w", path, err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// mutableConfig is the subset of Config a hot-reload is allowed to change:
// pool bounds and the log level. The DSN and AfterConnect hook require a
// fresh Open, since they describe how (or whether) a physical connection
// gets established in the first place.
type mutableConfig struct {
	MaxConnections int
	MinConnections int
	AcquireTimeout time.Duration
	IdleTimeout    time.Duration
	MaxLifetime    time.Duration
	SQLxLogging    bool
}

// ConfigWatcher watches a YAML config file and hot-reloads the mutable
// subset of Config into a live Connection whenever the file changes.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *zap.Logger

	mu     sync.RWMutex
	latest mutableConfig

	done chan struct{}
}

// WatchConfig starts watching path for changes, applying mutable fields to
// conn on every write. Call Close to stop watching.
func WatchConfig(path string, c *Connection, log *zap.Logger) (*ConfigWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("conn: starting config watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("conn: watching %s: %w", path, err)
	}
	cw := &ConfigWatcher{path: path, watcher: w, log: log, done: make(chan struct{})}
	go cw.loop(c)
	return cw, nil
}

func (cw *ConfigWatcher) loop(c *Connection) {
	for {
		select {
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadConfig(cw.path)
			if err != nil {
				cw.log.Warn("config reload failed, keeping previous settings", zap.Error(err))
				continue
			}
			c.applyMutable(mutableConfig{
				MaxConnections: cfg.MaxConnections,
				MinConnections: cfg.MinConnections,
				AcquireTimeout: cfg.AcquireTimeout,
				IdleTimeout:    cfg.IdleTimeout,
				MaxLifetime:    cfg.MaxLifetime,
				SQLxLogging:    cfg.SQLxLogging,
			})
			cw.log.Info("config hot-reloaded", zap.String("path", cw.path))
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("config watcher error", zap.Error(err))
		case <-cw.done:
			return
		}
	}
}

// Close stops the watcher.
func (cw *ConfigWatcher) Close() error {
	close(cw.done)
	return cw.watcher.Close()
}
