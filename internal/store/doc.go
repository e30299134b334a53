// Package store is the data accessor used by every request handler.
//
// Callers describe what to read or change (a table, equality filters, an
// order and pagination) and the Store builds the parameterised statement,
// runs it on a pooled connection and returns normalised rows or counts.
//
// Statement construction rules:
//   - Table and column names must be plain identifiers and are always quoted
//     for the connected dialect. An optional allow-list limits tables.
//   - Values are only ever bound as positional parameters.
//   - Filters are equality predicates joined with AND, rendered in sorted
//     column order.
//   - Update and Delete refuse to run without filters.
//
// Usage:
//
//	s := store.New(db, store.WithLogger(logger.Component("store")))
//
//	id, err := s.Insert(ctx, "clients", store.Record{"name": "Ana", "phone": "123"})
//	rows, err := s.Select(ctx, "clients", store.Descriptor{
//	    Filters: map[string]any{"phone": "123"},
//	    Order:   store.Order{Column: "name"},
//	    Limit:   10,
//	})
//	n, err := s.Update(ctx, "clients", store.Record{"phone": "999"}, map[string]any{"id": id})
package store
