package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect describes the statement syntax differences between the supported
// engines. The zero value is not usable; use one of the package variables or
// DialectFor.
type Dialect struct {
	name       string
	driverName string
	quote      string
	bindType   int
	returning  bool
	noLimit    string
}

// Supported dialects.
var (
	// MySQL is the production engine: backtick identifiers, ? placeholders,
	// generated ids via LastInsertId.
	MySQL = Dialect{name: "mysql", driverName: "mysql", quote: "`", bindType: sqlx.QUESTION, noLimit: "18446744073709551615"}

	// SQLite is used for local development and tests. Identifiers use
	// backticks: SQLite reads a double-quoted name that matches no column as
	// a string literal, which would turn a misspelled filter into "true".
	SQLite = Dialect{name: "sqlite", driverName: "sqlite3", quote: "`", bindType: sqlx.QUESTION, noLimit: "-1"}

	// Postgres uses numbered placeholders and RETURNING for generated ids,
	// since its drivers do not implement LastInsertId.
	Postgres = Dialect{name: "postgres", driverName: "pgx", quote: `"`, bindType: sqlx.DOLLAR, returning: true}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
	}
}

// Name returns the dialect name as used in configuration.
func (d Dialect) Name() string { return d.name }

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string { return d.driverName }

// Quote wraps an identifier in the dialect's quote character, doubling any
// embedded quote characters.
func (d Dialect) Quote(ident string) string {
	return d.quote + strings.ReplaceAll(ident, d.quote, d.quote+d.quote) + d.quote
}

// Rebind rewrites the ? placeholders of query into the dialect's bind
// markers ($1, $2, ... for Postgres). Identifiers must not contain "?";
// validated identifiers never do.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bindType, query)
}

// Returning reports whether inserts must use a RETURNING clause to obtain the
// generated id.
func (d Dialect) Returning() bool { return d.returning }

// UnboundedLimit returns the LIMIT operand meaning "no limit", for engines
// that reject OFFSET without LIMIT. It is empty when OFFSET may stand alone.
func (d Dialect) UnboundedLimit() string { return d.noLimit }
