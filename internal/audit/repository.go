// Package audit records who changed what in the booking core: appointment
// state changes and staff logins, stored in the audit_logs table through
// the data accessor.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/donbarbero/booking-core/internal/store"
)

// TableAuditLogs is the table audit entries are stored in.
const TableAuditLogs = "audit_logs"

// Page sizes for List.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// ErrInvalidEntry is returned when an entry lacks an action or entity type.
var ErrInvalidEntry = errors.New("audit: invalid entry")

// AuditLog represents a single audit trail entry.
type AuditLog struct { //nolint:revive // audit.AuditLog is clearer than audit.Log in calling code
	ID         int64          `json:"id"`
	EventID    string         `json:"event_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter controls which audit logs to return.
type Filter struct {
	Action     string // optional: e.g. appointment.booked, login
	EntityType string // optional: appointment, staff
	EntityID   string // optional
	Limit      int    // default 50, max 200
	Offset     int
}

// ListResult contains the paginated audit log results.
type ListResult struct {
	Logs   []AuditLog `json:"logs"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// Repository reads and writes audit_logs through the accessor.
type Repository struct {
	store *store.Store
}

// NewRepository creates an audit log repository.
func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Create inserts a new audit log entry. EventID and CreatedAt are generated
// if empty, and ID is set from the engine.
func (r *Repository) Create(ctx context.Context, log *AuditLog) error {
	if log.Action == "" || log.EntityType == "" {
		return fmt.Errorf("%w: action and entity_type are required", ErrInvalidEntry)
	}
	if log.EventID == "" {
		log.EventID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	log.CreatedAt = log.CreatedAt.UTC().Truncate(time.Second)

	details := ""
	if log.Details != nil {
		b, err := json.Marshal(log.Details)
		if err != nil {
			return fmt.Errorf("marshalling audit details: %w", err)
		}
		details = string(b)
	}

	id, err := r.store.Insert(ctx, TableAuditLogs, store.Record{
		"event_id":    log.EventID,
		"action":      log.Action,
		"entity_type": log.EntityType,
		"entity_id":   log.EntityID,
		"actor":       log.Actor,
		"details":     details,
		"created_at":  log.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	log.ID = id
	return nil
}

// List returns audit logs matching the filter, most recent first.
func (r *Repository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	filters := map[string]any{}
	if filter.Action != "" {
		filters["action"] = filter.Action
	}
	if filter.EntityType != "" {
		filters["entity_type"] = filter.EntityType
	}
	if filter.EntityID != "" {
		filters["entity_id"] = filter.EntityID
	}

	total, err := r.store.Count(ctx, TableAuditLogs, filters)
	if err != nil {
		return nil, fmt.Errorf("counting audit logs: %w", err)
	}

	rows, err := r.store.Select(ctx, TableAuditLogs, store.Descriptor{
		Filters: filters,
		Order:   store.Order{Column: "id", Direction: store.Descending},
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("querying audit logs: %w", err)
	}

	logs := make([]AuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, decodeLog(row))
	}

	return &ListResult{
		Logs:   logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func decodeLog(r store.Record) AuditLog {
	id, _ := r.Int64("id")
	created, _ := r.Time("created_at")
	log := AuditLog{
		ID:         id,
		EventID:    r.String("event_id"),
		Action:     r.String("action"),
		EntityType: r.String("entity_type"),
		EntityID:   r.String("entity_id"),
		Actor:      r.String("actor"),
		CreatedAt:  created.UTC(),
	}
	if raw := r.String("details"); raw != "" {
		var details map[string]any
		if json.Unmarshal([]byte(raw), &details) == nil {
			log.Details = details
		}
	}
	return log
}

// entityType returns the part of an event name before the first dot:
// "appointment.booked" is about an appointment.
func entityType(event string) string {
	kind, _, _ := strings.Cut(event, ".")
	return kind
}
