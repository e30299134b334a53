package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/donbarbero/booking-core/internal/infrastructure/database"
)

// Statement is SQL text plus its positional arguments. Identifiers are
// validated and quoted into Text; values only ever travel in Args.
type Statement struct {
	Text string
	Args []any
}

// builder assembles one statement for a dialect. Values are bound as ? in
// the order they are written and rebound to the dialect's markers at the end.
type builder struct {
	d    database.Dialect
	sb   strings.Builder
	args []any
}

func newBuilder(d database.Dialect) *builder {
	return &builder{d: d}
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

// ident validates and writes a quoted identifier.
func (b *builder) ident(name string) error {
	if err := validateIdentifier(name); err != nil {
		return err
	}
	b.sb.WriteString(b.d.Quote(name))
	return nil
}

// bind records v and writes its placeholder.
func (b *builder) bind(v any) {
	b.args = append(b.args, v)
	b.sb.WriteString("?")
}

// where writes "WHERE a = ? AND b = ?" for the filters, sorted by column.
func (b *builder) where(filters map[string]any) error {
	if len(filters) == 0 {
		return nil
	}
	cols := make([]string, 0, len(filters))
	for k := range filters {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	b.write(" WHERE ")
	for i, col := range cols {
		if i > 0 {
			b.write(" AND ")
		}
		if err := b.ident(col); err != nil {
			return err
		}
		b.write(" = ")
		b.bind(filters[col])
	}
	return nil
}

func (b *builder) statement() Statement {
	return Statement{Text: b.d.Rebind(b.sb.String()), Args: b.args}
}

// buildSelect renders SELECT <projection> FROM table [WHERE] [ORDER BY] [LIMIT] [OFFSET].
// projection is written verbatim and must be "*" or an aggregate chosen by
// this package.
func buildSelect(d database.Dialect, projection, table string, desc Descriptor) (Statement, error) {
	b := newBuilder(d)
	b.write("SELECT ", projection, " FROM ")
	if err := b.ident(table); err != nil {
		return Statement{}, err
	}
	if err := b.where(desc.Filters); err != nil {
		return Statement{}, err
	}
	if !desc.Order.IsZero() {
		b.write(" ORDER BY ")
		if err := b.ident(desc.Order.Column); err != nil {
			return Statement{}, err
		}
		b.write(" ", desc.Order.Direction.String())
	}
	if desc.Limit < 0 || desc.Offset < 0 {
		return Statement{}, ErrInvalidDescriptor
	}
	switch {
	case desc.Limit > 0:
		b.write(" LIMIT ", strconv.Itoa(desc.Limit))
	case desc.Offset > 0 && d.UnboundedLimit() != "":
		b.write(" LIMIT ", d.UnboundedLimit())
	}
	if desc.Offset > 0 {
		b.write(" OFFSET ", strconv.Itoa(desc.Offset))
	}
	return b.statement(), nil
}

// buildInsert renders INSERT INTO table (cols) VALUES (...), adding
// RETURNING idColumn for dialects without LastInsertId.
func buildInsert(d database.Dialect, table string, rec Record, idColumn string) (Statement, error) {
	if len(rec) == 0 {
		return Statement{}, ErrEmptyRecord
	}
	cols := rec.Columns()

	b := newBuilder(d)
	b.write("INSERT INTO ")
	if err := b.ident(table); err != nil {
		return Statement{}, err
	}
	b.write(" (")
	for i, col := range cols {
		if i > 0 {
			b.write(", ")
		}
		if err := b.ident(col); err != nil {
			return Statement{}, err
		}
	}
	b.write(") VALUES (")
	for i, col := range cols {
		if i > 0 {
			b.write(", ")
		}
		b.bind(rec[col])
	}
	b.write(")")

	if d.Returning() {
		b.write(" RETURNING ")
		if err := b.ident(idColumn); err != nil {
			return Statement{}, err
		}
	}
	return b.statement(), nil
}

// buildUpdate renders UPDATE table SET ... WHERE .... SET values are bound
// before WHERE values, so a column may appear in both.
func buildUpdate(d database.Dialect, table string, rec Record, filters map[string]any) (Statement, error) {
	if len(rec) == 0 {
		return Statement{}, ErrEmptyRecord
	}
	if len(filters) == 0 {
		return Statement{}, ErrEmptyFilter
	}

	b := newBuilder(d)
	b.write("UPDATE ")
	if err := b.ident(table); err != nil {
		return Statement{}, err
	}
	b.write(" SET ")
	for i, col := range rec.Columns() {
		if i > 0 {
			b.write(", ")
		}
		if err := b.ident(col); err != nil {
			return Statement{}, err
		}
		b.write(" = ")
		b.bind(rec[col])
	}
	if err := b.where(filters); err != nil {
		return Statement{}, err
	}
	return b.statement(), nil
}

// buildDelete renders DELETE FROM table WHERE ....
func buildDelete(d database.Dialect, table string, filters map[string]any) (Statement, error) {
	if len(filters) == 0 {
		return Statement{}, ErrEmptyFilter
	}

	b := newBuilder(d)
	b.write("DELETE FROM ")
	if err := b.ident(table); err != nil {
		return Statement{}, err
	}
	if err := b.where(filters); err != nil {
		return Statement{}, err
	}
	return b.statement(), nil
}
