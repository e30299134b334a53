package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver ("pgx")
	_ "github.com/mattn/go-sqlite3"    // SQLite driver ("sqlite3")
)

const (
	// dirPermissions is the permission mode for the sqlite database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the sqlite database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout bounds the initial ping.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute

	// defaultAcquireTimeout applies when Config.AcquireTimeout is zero.
	defaultAcquireTimeout = 5 * time.Second
)

// Config contains connection settings for one of the supported dialects.
type Config struct {
	// Driver selects the dialect: "mysql", "sqlite" or "postgres".
	Driver string

	// Network engines (mysql, postgres).
	Host     string
	Port     int
	Name     string
	Username string
	Password string

	// Path is the sqlite database file. The directory is created if missing.
	Path string

	// BusyTimeout is the sqlite lock wait in seconds.
	BusyTimeout int

	// WALMode enables sqlite write-ahead logging.
	WALMode bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// AcquireTimeout bounds each checkout from the pool.
	AcquireTimeout time.Duration
}

// DB is the process-wide connection to the relational engine: a bounded pool
// plus the dialect that statements must be written in.
type DB struct {
	*sql.DB
	dialect        Dialect
	target         string
	acquireTimeout time.Duration
	closed         atomic.Bool
}

// Open connects to the engine described by cfg and verifies the connection.
// It never terminates the process; every failure is returned.
//
// Parameters:
//   - ctx: Bounds the initial ping (a 5s timeout is applied on top)
//   - cfg: Connection configuration
//
// Returns:
//   - *DB: Connected pool
//   - error: If the driver is unknown, the DSN cannot be built or the engine
//     is unreachable
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, target, err := dataSource(dialect, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect.Name(), err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen < 1 {
		maxOpen = 1
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	acquire := cfg.AcquireTimeout
	if acquire <= 0 {
		acquire = defaultAcquireTimeout
	}

	db := &DB{
		DB:             sqlDB,
		dialect:        dialect,
		target:         target,
		acquireTimeout: acquire,
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("connecting to %s database %s: %w", dialect.Name(), target, err)
	}

	if dialect == SQLite {
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may not exist until first write
	}

	return db, nil
}

// dataSource builds the driver DSN and a credential-free description of the
// target for logs and errors.
func dataSource(d Dialect, cfg Config) (dsn, target string, err error) {
	switch d {
	case MySQL:
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		return mysqlDSN(cfg), addr + "/" + cfg.Name, nil

	case Postgres:
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		return postgresDSN(cfg), addr + "/" + cfg.Name, nil

	case SQLite:
		if cfg.Path == "" {
			return "", "", errors.New("sqlite database path is required")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return "", "", fmt.Errorf("creating database directory: %w", err)
		}
		return sqliteDSN(cfg), cfg.Path, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, d.Name())
}

// mysqlDSN returns a DSN that negotiates utf8mb4, keeps placeholders
// server-side and reports matched rather than changed rows from UPDATE.
func mysqlDSN(cfg Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.InterpolateParams = false
	mc.ClientFoundRows = true
	mc.Timeout = connectionTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// postgresDSN returns a URL-style connection string for pgx.
func postgresDSN(cfg Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: "client_encoding=UTF8",
	}
	return u.String()
}

// sqliteDSN returns a go-sqlite3 connection string with pragmas.
// See: https://github.com/mattn/go-sqlite3#connection-string
func sqliteDSN(cfg Config) string {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return dsn
}

// Dialect returns the statement dialect of the connected engine.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Target returns the engine address or file path, without credentials.
func (db *DB) Target() string {
	return db.target
}

// AcquireTimeout returns the per-checkout timeout.
func (db *DB) AcquireTimeout() time.Duration {
	return db.acquireTimeout
}

// Acquire checks a connection out of the pool. The caller must Close the
// returned connection to check it back in.
//
// Waiting is bounded by the configured acquire timeout. When it expires
// before ctx does, ErrAcquireTimeout is returned; cancellation of ctx itself
// is returned as ctx.Err().
func (db *DB) Acquire(ctx context.Context) (*sql.Conn, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.DB.Conn(acquireCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrAcquireTimeout, db.acquireTimeout)
		}
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return conn, nil
}

// Close closes every pooled connection. Subsequent Acquire calls fail with
// ErrClosed.
func (db *DB) Close() error {
	if db.DB == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck verifies a connection can be checked out and used.
func (db *DB) HealthCheck(ctx context.Context) error {
	conn, err := db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	defer conn.Close() //nolint:errcheck // Check-in

	var result int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
