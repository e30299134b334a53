package booking

import (
	"context"
	"fmt"

	"github.com/donbarbero/booking-core/internal/store"
)

// Entity is implemented by every row type the package persists.
type Entity interface {
	Validate() error
}

// Table is a typed repository over one table, built on the generic data
// accessor. Rows are converted with reflection-free codecs.
type Table[T Entity] struct {
	store    *store.Store
	name     string
	columns  []string
	writable map[string]struct{}
	encode   func(T) store.Record
	decode   func(store.Record) (T, error)
}

func newTable[T Entity](s *store.Store, name string, columns, writable []string,
	encode func(T) store.Record, decode func(store.Record) (T, error)) *Table[T] {
	w := make(map[string]struct{}, len(writable))
	for _, c := range writable {
		w[c] = struct{}{}
	}
	return &Table[T]{
		store:    s,
		name:     name,
		columns:  columns,
		writable: w,
		encode:   encode,
		decode:   decode,
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Columns returns the columns that may be filtered and ordered on.
func (t *Table[T]) Columns() []string { return t.columns }

// List returns the rows matching desc.
func (t *Table[T]) List(ctx context.Context, desc store.Descriptor) ([]T, error) {
	rows, err := t.store.Select(ctx, t.name, desc)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := t.decode(r)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", t.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Count returns the number of rows matching filters.
func (t *Table[T]) Count(ctx context.Context, filters map[string]any) (int64, error) {
	return t.store.Count(ctx, t.name, filters)
}

// Get returns the row with the given id, or ErrNotFound.
func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	r, found, err := t.store.FindByID(ctx, t.name, id)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("%s %d: %w", t.name, id, ErrNotFound)
	}
	return t.decode(r)
}

// Create validates v, inserts it and returns the stored row.
func (t *Table[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T
	if err := v.Validate(); err != nil {
		return zero, err
	}
	id, err := t.store.Insert(ctx, t.name, t.encode(v))
	if err != nil {
		return zero, err
	}
	return t.Get(ctx, id)
}

// Patch changes the named writable columns of row id and returns the
// updated row. Values are merged onto the current row and the result is
// validated before anything is written.
func (t *Table[T]) Patch(ctx context.Context, id int64, fields map[string]any) (T, error) {
	var zero T
	if len(fields) == 0 {
		return zero, fmt.Errorf("%w: no fields to update", ErrInvalid)
	}
	for k := range fields {
		if _, ok := t.writable[k]; !ok {
			return zero, fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
	}

	current, err := t.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	merged := t.encode(current)
	merged["id"] = id
	for k, v := range fields {
		merged[k] = v
	}
	next, err := t.decode(merged)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := next.Validate(); err != nil {
		return zero, err
	}

	// Re-encode so only normalised values reach the engine.
	normalised := t.encode(next)
	update := make(store.Record, len(fields))
	for k := range fields {
		update[k] = normalised[k]
	}

	n, err := t.store.Update(ctx, t.name, update, map[string]any{"id": id})
	if err != nil {
		return zero, err
	}
	if n == 0 {
		return zero, fmt.Errorf("%s %d: %w", t.name, id, ErrNotFound)
	}
	return t.Get(ctx, id)
}

// Delete removes row id, or returns ErrNotFound.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	n, err := t.store.Delete(ctx, t.name, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", t.name, id, ErrNotFound)
	}
	return nil
}

// Repositories groups the typed tables.
type Repositories struct {
	Clients      *Table[Client]
	Barbers      *Table[Barber]
	Services     *Table[Service]
	Appointments *Table[Appointment]
}

// NewRepositories builds the typed tables over s.
func NewRepositories(s *store.Store) *Repositories {
	return &Repositories{
		Clients:      newTable(s, TableClients, clientColumns, clientWritable, encodeClient, decodeClient),
		Barbers:      newTable(s, TableBarbers, barberColumns, barberWritable, encodeBarber, decodeBarber),
		Services:     newTable(s, TableServices, serviceColumns, serviceWritable, encodeService, decodeService),
		Appointments: newTable(s, TableAppointments, appointmentColumns, appointmentWrite, encodeAppointment, decodeAppointment),
	}
}

// Tables returns the names of every table the package uses, for the
// accessor's allow-list.
func Tables() []string {
	return []string{TableClients, TableBarbers, TableServices, TableAppointments}
}
