package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/donbarbero/booking-core/internal/booking"
	"github.com/donbarbero/booking-core/internal/store"
)

// Pagination bounds for list endpoints.
const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type entity = booking.Entity

// resource serves the CRUD routes of one table.
type resource[T entity] struct {
	s     *Server
	table *booking.Table[T]
	noun  string
}

func newResource[T entity](s *Server, table *booking.Table[T], noun string) *resource[T] {
	return &resource[T]{s: s, table: table, noun: noun}
}

// list returns the rows matching the query string.
//
// Query parameters:
//   - order: column.asc or column.desc
//   - limit, offset: pagination (limit defaults to 100, capped at 500)
//   - any column name: equality filter
//
// The unpaginated match count is returned in X-Total-Count.
func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	desc, err := store.ParseDescriptor(r.URL.Query(), res.table.Columns())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if desc.Limit == 0 {
		desc.Limit = defaultPageSize
	}
	desc.Limit = min(desc.Limit, maxPageSize)

	ctx := r.Context()
	rows, err := res.table.List(ctx, desc)
	if err != nil {
		res.s.writeDomainError(w, r, err, "failed to list "+res.table.Name())
		return
	}
	total, err := res.table.Count(ctx, desc.Filters)
	if err != nil {
		res.s.writeDomainError(w, r, err, "failed to count "+res.table.Name())
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, map[string]any{
		res.table.Name(): rows,
		"count":          len(rows),
		"total":          total,
	})
}

// get returns a single row by id.
func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	v, err := res.table.Get(r.Context(), id)
	if err != nil {
		res.s.writeDomainError(w, r, err, "failed to get "+res.noun)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// create inserts a row from the JSON body.
func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	created, err := res.table.Create(r.Context(), v)
	if err != nil {
		res.s.writeDomainError(w, r, err, "failed to create "+res.noun)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// patch changes the writable columns named in the JSON body.
func (res *resource[T]) patch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	updated, err := res.table.Patch(r.Context(), id, fields)
	if err != nil {
		res.s.writeDomainError(w, r, err, "failed to update "+res.noun)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// remove deletes a row by id.
func (res *resource[T]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := res.table.Delete(r.Context(), id); err != nil {
		res.s.writeDomainError(w, r, err, "failed to delete "+res.noun)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseID reads the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
