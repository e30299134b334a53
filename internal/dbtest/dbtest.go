// Package dbtest opens throwaway sqlite databases with the booking schema
// for tests in other packages.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/donbarbero/booking-core/internal/infrastructure/database"
)

// Schema is the sqlite rendition of the tables the service reads and writes.
// Production databases are provisioned from schema/mysql.sql.
const Schema = `
CREATE TABLE clients (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE barbers (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	name   TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE services (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	price_cents      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE appointments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id  INTEGER NOT NULL REFERENCES clients(id),
	barber_id  INTEGER NOT NULL REFERENCES barbers(id),
	service_id INTEGER NOT NULL REFERENCES services(id),
	start_at   DATETIME NOT NULL,
	end_at     DATETIME NOT NULL,
	status     TEXT NOT NULL DEFAULT 'scheduled',
	notes      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_appointments_barber_status ON appointments(barber_id, status);

CREATE TABLE staff (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'staff',
	active        INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE audit_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id    TEXT NOT NULL UNIQUE,
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL DEFAULT '',
	actor       TEXT NOT NULL DEFAULT '',
	details     TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);
`

// Open returns a file-backed sqlite pool in t.TempDir() with Schema applied.
// The pool is closed by t.Cleanup.
func Open(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Driver:         "sqlite",
		Path:           filepath.Join(t.TempDir(), "booking.db"),
		WALMode:        true,
		BusyTimeout:    5,
		MaxOpenConns:   4,
		AcquireTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if _, err := db.ExecContext(context.Background(), Schema); err != nil {
		t.Fatalf("applying test schema: %v", err)
	}
	return db
}
