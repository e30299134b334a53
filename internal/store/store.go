package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/donbarbero/booking-core/internal/infrastructure/database"
)

// DefaultIDColumn is the primary key column used by FindByID and by inserts
// on dialects that need RETURNING.
const DefaultIDColumn = "id"

// Conn is the connection the Store executes through. *database.DB
// satisfies it.
type Conn interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
	Dialect() database.Dialect
}

// Logger is the subset of logging.Logger the Store uses.
type Logger interface {
	Debug(msg string, args ...any)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every statement at debug level. Bound values are never
// logged.
func WithLogger(l Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithObserver reports every statement to obs.
func WithObserver(obs Observer) Option {
	return func(s *Store) { s.observer = obs }
}

// WithTables restricts the Store to the named tables. Operations on any
// other table fail with ErrUnknownTable. An empty list allows every table.
func WithTables(tables ...string) Option {
	return func(s *Store) {
		if len(tables) == 0 {
			s.tables = nil
			return
		}
		s.tables = make(map[string]struct{}, len(tables))
		for _, t := range tables {
			s.tables[t] = struct{}{}
		}
	}
}

// Store is the data accessor: it turns a table name plus structured filters,
// order and pagination into a parameterised statement, runs it on a pooled
// connection and returns normalised rows or mutation counts.
//
// Thread Safety:
//   - Safe for concurrent use. Each operation checks out its own connection.
type Store struct {
	conn     Conn
	dialect  database.Dialect
	logger   Logger
	observer Observer
	tables   map[string]struct{}
}

// New creates a Store over conn.
func New(conn Conn, opts ...Option) *Store {
	s := &Store{
		conn:    conn,
		dialect: conn.Dialect(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dialect returns the dialect statements are built in.
func (s *Store) Dialect() database.Dialect {
	return s.dialect
}

// Select returns every row of table matching desc, in engine order unless
// desc.Order is set.
func (s *Store) Select(ctx context.Context, table string, desc Descriptor) ([]Record, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}
	stmt, err := buildSelect(s.dialect, "*", table, desc)
	if err != nil {
		return nil, err
	}

	var records []Record
	err = s.run(ctx, OpSelect, table, stmt, func(conn *sql.Conn) (int64, error) {
		rows, err := conn.QueryContext(ctx, stmt.Text, stmt.Args...)
		if err != nil {
			return 0, err
		}
		records, err = readRows(rows)
		return int64(len(records)), err
	})
	if err != nil {
		return nil, fmt.Errorf("selecting from %s: %w", table, err)
	}
	return records, nil
}

// Count returns the number of rows of table matching filters.
func (s *Store) Count(ctx context.Context, table string, filters map[string]any) (int64, error) {
	if err := s.checkTable(table); err != nil {
		return 0, err
	}
	stmt, err := buildSelect(s.dialect, "COUNT(*)", table, Descriptor{Filters: filters})
	if err != nil {
		return 0, err
	}

	var n int64
	err = s.run(ctx, OpCount, table, stmt, func(conn *sql.Conn) (int64, error) {
		if err := conn.QueryRowContext(ctx, stmt.Text, stmt.Args...).Scan(&n); err != nil {
			return 0, err
		}
		return n, nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// Insert adds rec to table and returns the engine-assigned id. The id is 0
// when the table has no auto-generated key on engines that report it via
// LastInsertId.
func (s *Store) Insert(ctx context.Context, table string, rec Record) (int64, error) {
	if err := s.checkTable(table); err != nil {
		return 0, err
	}
	stmt, err := buildInsert(s.dialect, table, rec, DefaultIDColumn)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.run(ctx, OpInsert, table, stmt, func(conn *sql.Conn) (int64, error) {
		if s.dialect.Returning() {
			if err := conn.QueryRowContext(ctx, stmt.Text, stmt.Args...).Scan(&id); err != nil {
				return 0, err
			}
			return 1, nil
		}
		res, err := conn.ExecContext(ctx, stmt.Text, stmt.Args...)
		if err != nil {
			return 0, err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 1, fmt.Errorf("reading generated id: %w", err)
		}
		return 1, nil
	})
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	return id, nil
}

// Update sets rec's columns on every row of table matching filters and
// returns the number of rows affected. Empty filters are rejected with
// ErrEmptyFilter.
func (s *Store) Update(ctx context.Context, table string, rec Record, filters map[string]any) (int64, error) {
	if err := s.checkTable(table); err != nil {
		return 0, err
	}
	stmt, err := buildUpdate(s.dialect, table, rec, filters)
	if err != nil {
		return 0, err
	}

	n, err := s.exec(ctx, OpUpdate, table, stmt)
	if err != nil {
		return 0, fmt.Errorf("updating %s: %w", table, err)
	}
	return n, nil
}

// Delete removes every row of table matching filters and returns the number
// of rows affected. Empty filters are rejected with ErrEmptyFilter.
func (s *Store) Delete(ctx context.Context, table string, filters map[string]any) (int64, error) {
	if err := s.checkTable(table); err != nil {
		return 0, err
	}
	stmt, err := buildDelete(s.dialect, table, filters)
	if err != nil {
		return 0, err
	}

	n, err := s.exec(ctx, OpDelete, table, stmt)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", table, err)
	}
	return n, nil
}

// FindByID returns the row of table whose "id" column equals id.
// The bool is false when no row matches.
func (s *Store) FindByID(ctx context.Context, table string, id any) (Record, bool, error) {
	return s.FindByIDColumn(ctx, table, DefaultIDColumn, id)
}

// FindByIDColumn is FindByID with an explicit key column.
func (s *Store) FindByIDColumn(ctx context.Context, table, idColumn string, id any) (Record, bool, error) {
	return s.FindOne(ctx, table, map[string]any{idColumn: id})
}

// FindOne returns the first row of table matching filters.
// The bool is false when no row matches.
func (s *Store) FindOne(ctx context.Context, table string, filters map[string]any) (Record, bool, error) {
	rows, err := s.Select(ctx, table, Descriptor{Filters: filters, Limit: 1})
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

func (s *Store) checkTable(table string) error {
	if err := validateIdentifier(table); err != nil {
		return err
	}
	if s.tables != nil {
		if _, ok := s.tables[table]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTable, table)
		}
	}
	return nil
}

// exec runs a statement that returns no rows and reports rows affected.
func (s *Store) exec(ctx context.Context, op, table string, stmt Statement) (int64, error) {
	var affected int64
	err := s.run(ctx, op, table, stmt, func(conn *sql.Conn) (int64, error) {
		res, err := conn.ExecContext(ctx, stmt.Text, stmt.Args...)
		if err != nil {
			return 0, err
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("reading rows affected: %w", err)
		}
		return affected, nil
	})
	return affected, err
}

// run checks out a connection, executes fn on it, checks the connection back
// in and reports the outcome to the logger and observer.
func (s *Store) run(ctx context.Context, op, table string, stmt Statement, fn func(*sql.Conn) (int64, error)) error {
	start := time.Now()

	var rows int64
	conn, err := s.conn.Acquire(ctx)
	if err == nil {
		rows, err = fn(conn)
		if cerr := conn.Close(); cerr != nil && err == nil && !errors.Is(cerr, sql.ErrConnDone) {
			err = fmt.Errorf("releasing connection: %w", cerr)
		}
	}

	elapsed := time.Since(start)
	if s.logger != nil {
		s.logger.Debug("statement executed",
			"operation", op,
			"table", table,
			"sql", stmt.Text,
			"args", len(stmt.Args),
			"rows", rows,
			"duration", elapsed,
			"error", err,
		)
	}
	if s.observer != nil {
		s.observer.ObserveStatement(ctx, StatementEvent{
			Operation: op,
			Table:     table,
			Duration:  elapsed,
			Rows:      rows,
			Err:       err,
		})
	}
	return err
}

// readRows drains rows into Records, converting []byte values to string so
// text columns compare equal across drivers.
func readRows(rows *sql.Rows) ([]Record, error) {
	defer rows.Close() //nolint:errcheck // Closed after iteration

	records := []Record{}
	for rows.Next() {
		rec := Record{}
		if err := sqlx.MapScan(rows, rec); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for col, v := range rec {
			if b, ok := v.([]byte); ok {
				rec[col] = string(b)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return records, nil
}
