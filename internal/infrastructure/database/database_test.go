package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// openTestDB creates a file-backed sqlite pool in a temporary directory.
func openTestDB(t *testing.T, mutate ...func(*Config)) *DB {
	t.Helper()

	cfg := Config{
		Driver:         "sqlite",
		Path:           filepath.Join(t.TempDir(), "test.db"),
		WALMode:        true,
		BusyTimeout:    5,
		MaxOpenConns:   4,
		AcquireTimeout: time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")
		db := openTestDB(t, func(c *Config) { c.Path = dbPath })

		// sqlite creates the file lazily; force a write.
		if _, err := db.ExecContext(context.Background(), "CREATE TABLE t (id INTEGER)"); err != nil {
			t.Fatalf("CREATE TABLE error = %v", err)
		}
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")
		openTestDB(t, func(c *Config) { c.Path = dbPath })

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
	})

	t.Run("reports dialect and target", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")
		db := openTestDB(t, func(c *Config) { c.Path = dbPath })

		if db.Dialect() != SQLite {
			t.Errorf("Dialect() = %v, want sqlite", db.Dialect().Name())
		}
		if db.Target() != dbPath {
			t.Errorf("Target() = %q, want %q", db.Target(), dbPath)
		}
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := Open(context.Background(), Config{Driver: "oracle"})
		if !errors.Is(err, ErrUnsupportedDriver) {
			t.Errorf("Open() error = %v, want ErrUnsupportedDriver", err)
		}
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := Open(context.Background(), Config{Driver: "sqlite"})
		if err == nil {
			t.Error("Open() expected error for empty path")
		}
	})

	t.Run("default acquire timeout", func(t *testing.T) {
		db := openTestDB(t, func(c *Config) { c.AcquireTimeout = 0 })
		if db.AcquireTimeout() != defaultAcquireTimeout {
			t.Errorf("AcquireTimeout() = %v, want %v", db.AcquireTimeout(), defaultAcquireTimeout)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestAcquire(t *testing.T) {
	t.Run("checkout and checkin", func(t *testing.T) {
		db := openTestDB(t, func(c *Config) { c.MaxOpenConns = 1 })
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			conn, err := db.Acquire(ctx)
			if err != nil {
				t.Fatalf("Acquire() #%d error = %v", i, err)
			}
			var one int
			if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
				t.Fatalf("SELECT 1 error = %v", err)
			}
			if err := conn.Close(); err != nil {
				t.Fatalf("checkin error = %v", err)
			}
		}
	})

	t.Run("times out when pool is exhausted", func(t *testing.T) {
		db := openTestDB(t, func(c *Config) {
			c.MaxOpenConns = 1
			c.AcquireTimeout = 50 * time.Millisecond
		})
		ctx := context.Background()

		held, err := db.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		defer held.Close() //nolint:errcheck // Test cleanup

		start := time.Now()
		_, err = db.Acquire(ctx)
		if !errors.Is(err, ErrAcquireTimeout) {
			t.Fatalf("Acquire() error = %v, want ErrAcquireTimeout", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("Acquire() waited %v, want about 50ms", elapsed)
		}
	})

	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		db := openTestDB(t, func(c *Config) {
			c.MaxOpenConns = 1
			c.AcquireTimeout = 5 * time.Second
		})

		held, err := db.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		defer held.Close() //nolint:errcheck // Test cleanup

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = db.Acquire(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
		}
		if errors.Is(err, ErrAcquireTimeout) {
			t.Error("caller deadline reported as ErrAcquireTimeout")
		}
	})

	t.Run("after close", func(t *testing.T) {
		db := openTestDB(t)
		if err := db.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if _, err := db.Acquire(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("Acquire() error = %v, want ErrClosed", err)
		}
	})
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Second close is a no-op.
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestDialect(t *testing.T) {
	tests := []struct {
		name      string
		dialect   Dialect
		quoted    string
		rebound   string
		returning bool
	}{
		{"mysql", MySQL, "`clients`", "a = ? AND b = ?", false},
		{"sqlite", SQLite, "`clients`", "a = ? AND b = ?", false},
		{"postgres", Postgres, `"clients"`, "a = $1 AND b = $2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Quote("clients"); got != tt.quoted {
				t.Errorf("Quote() = %s, want %s", got, tt.quoted)
			}
			if got := tt.dialect.Rebind("a = ? AND b = ?"); got != tt.rebound {
				t.Errorf("Rebind() = %s, want %s", got, tt.rebound)
			}
			if got := tt.dialect.Returning(); got != tt.returning {
				t.Errorf("Returning() = %v, want %v", got, tt.returning)
			}
		})
	}
}

func TestDialect_QuoteEscapes(t *testing.T) {
	if got := MySQL.Quote("a`b"); got != "`a``b`" {
		t.Errorf("MySQL.Quote() = %s", got)
	}
	if got := SQLite.Quote("a`b"); got != "`a``b`" {
		t.Errorf("SQLite.Quote() = %s", got)
	}
	if got := Postgres.Quote(`a"b`); got != `"a""b"` {
		t.Errorf("Postgres.Quote() = %s", got)
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{"mysql", MySQL, false},
		{"MariaDB", MySQL, false},
		{"sqlite", SQLite, false},
		{"sqlite3", SQLite, false},
		{"postgres", Postgres, false},
		{"pgx", Postgres, false},
		{"oracle", Dialect{}, true},
		{"", Dialect{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := DialectFor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DialectFor(%q) = %q, want %q", tt.input, got.Name(), tt.want.Name())
			}
		})
	}
}

func TestDataSourceNames(t *testing.T) {
	cfg := Config{
		Host:     "127.0.0.1",
		Port:     3306,
		Name:     "barbearia01",
		Username: "root",
		Password: "pw",
	}

	t.Run("mysql", func(t *testing.T) {
		dsn := mysqlDSN(cfg)
		for _, want := range []string{"root:pw@tcp(127.0.0.1:3306)/barbearia01", "charset=utf8mb4", "parseTime=true"} {
			if !strings.Contains(dsn, want) {
				t.Errorf("mysqlDSN() = %q, missing %q", dsn, want)
			}
		}
	})

	t.Run("postgres", func(t *testing.T) {
		pg := cfg
		pg.Port = 5432
		want := "postgres://root:pw@127.0.0.1:5432/barbearia01?client_encoding=UTF8"
		if got := postgresDSN(pg); got != want {
			t.Errorf("postgresDSN() = %q, want %q", got, want)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		got := sqliteDSN(Config{Path: "/tmp/x.db", BusyTimeout: 2, WALMode: true})
		want := "file:/tmp/x.db?_busy_timeout=2000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
		if got != want {
			t.Errorf("sqliteDSN() = %q, want %q", got, want)
		}
	})

	t.Run("target omits credentials", func(t *testing.T) {
		_, target, err := dataSource(MySQL, cfg)
		if err != nil {
			t.Fatalf("dataSource() error = %v", err)
		}
		if strings.Contains(target, "pw") {
			t.Errorf("target %q leaks password", target)
		}
	})
}
