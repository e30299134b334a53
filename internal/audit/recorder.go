package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

type ctxKey struct{}

// WithActor returns a context carrying the username of the staff member
// acting on the request.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(ctxKey{}).(string)
	return actor
}

// Recorder turns booking events into audit entries. It satisfies
// booking.EventPublisher so it can sit next to the broker in the
// scheduler's publisher list.
type Recorder struct {
	repo *Repository
}

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo *Repository) *Recorder {
	return &Recorder{repo: repo}
}

// PublishEvent stores one entry for event. The payload is kept as the
// entry details and its "id" field, when present, becomes the entity id.
func (r *Recorder) PublishEvent(ctx context.Context, event string, payload any) error {
	details, err := toDetails(payload)
	if err != nil {
		return fmt.Errorf("recording %s: %w", event, err)
	}
	return r.repo.Create(ctx, &AuditLog{
		Action:     event,
		EntityType: entityType(event),
		EntityID:   idOf(details),
		Actor:      ActorFrom(ctx),
		Details:    details,
	})
}

// RecordLogin stores a successful staff login.
func (r *Recorder) RecordLogin(ctx context.Context, staffID int64, username string) error {
	return r.repo.Create(ctx, &AuditLog{
		Action:     "login",
		EntityType: "staff",
		EntityID:   strconv.FormatInt(staffID, 10),
		Actor:      username,
	})
}

// toDetails round-trips payload through JSON so entries hold exactly what
// subscribers of the event see.
func toDetails(payload any) (map[string]any, error) {
	if payload == nil {
		return nil, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var details map[string]any
	if err := json.Unmarshal(b, &details); err != nil {
		// Not an object: keep it under a single key.
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		return map[string]any{"value": v}, nil
	}
	return details, nil
}

func idOf(details map[string]any) string {
	switch id := details["id"].(type) {
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case string:
		return id
	default:
		return ""
	}
}
