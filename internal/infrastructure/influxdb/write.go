package influxdb

import (
	"context"
	"errors"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/donbarbero/booking-core/internal/infrastructure/database"
	"github.com/donbarbero/booking-core/internal/store"
)

// Measurement names.
const (
	MeasurementStatements    = "statements"
	MeasurementBookingEvents = "booking_events"
)

// Statement outcomes, written as the "outcome" tag.
const (
	OutcomeOK             = "ok"
	OutcomeError          = "error"
	OutcomeAcquireTimeout = "acquire_timeout"
)

// ObserveStatement records one accessor statement. It satisfies
// store.Observer and never blocks: points are batched and written in the
// background. Nothing is written while disconnected.
func (c *Client) ObserveStatement(_ context.Context, ev store.StatementEvent) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(statementPoint(ev, time.Now()))
}

// PublishEvent counts a booking event. It satisfies booking.EventPublisher
// so the event stream can be charted alongside statement latency; the
// payload itself is not stored.
func (c *Client) PublishEvent(_ context.Context, event string, _ any) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	c.writeAPI.WritePoint(eventPoint(event, time.Now()))
	return nil
}

// statementPoint converts ev into a point tagged with operation, table and
// outcome.
func statementPoint(ev store.StatementEvent, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementStatements,
		map[string]string{
			"operation": ev.Operation,
			"table":     ev.Table,
			"outcome":   outcome(ev.Err),
		},
		map[string]any{
			"duration_ms": float64(ev.Duration.Microseconds()) / 1000,
			"rows":        ev.Rows,
		},
		at,
	)
}

func eventPoint(event string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementBookingEvents,
		map[string]string{"event": event},
		map[string]any{"count": int64(1)},
		at,
	)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, database.ErrAcquireTimeout):
		return OutcomeAcquireTimeout
	default:
		return OutcomeError
	}
}
