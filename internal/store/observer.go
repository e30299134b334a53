package store

import (
	"context"
	"time"
)

// Operation names reported to observers.
const (
	OpSelect = "select"
	OpCount  = "count"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// StatementEvent describes one executed statement.
type StatementEvent struct {
	Operation string
	Table     string
	Duration  time.Duration
	// Rows is the number of rows returned (select, count) or affected
	// (update, delete); 1 for a successful insert.
	Rows int64
	Err  error
}

// Observer receives an event for every statement the Store runs.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveStatement(ctx context.Context, ev StatementEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev StatementEvent)

// ObserveStatement calls f(ctx, ev).
func (f ObserverFunc) ObserveStatement(ctx context.Context, ev StatementEvent) {
	f(ctx, ev)
}

// Observers fans one event out to several observers.
type Observers []Observer

// ObserveStatement forwards ev to every non-nil observer.
func (o Observers) ObserveStatement(ctx context.Context, ev StatementEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveStatement(ctx, ev)
		}
	}
}
