package api

import (
	"net/http"

	"github.com/donbarbero/booking-core/internal/audit"
	"github.com/donbarbero/booking-core/internal/store"
)

// handleListAudit returns audit entries, newest first.
//
// Query parameters: action, entity_type, entity_id, limit (default 50,
// max 200) and offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit log is not enabled")
		return
	}

	q := r.URL.Query()
	limit, err := store.ToInt(q.Get(store.ParamLimit))
	if err != nil {
		writeBadRequest(w, "invalid limit")
		return
	}
	offset, err := store.ToInt(q.Get(store.ParamOffset))
	if err != nil {
		writeBadRequest(w, "invalid offset")
		return
	}

	res, err := s.audit.List(r.Context(), audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		s.writeDomainError(w, r, err, "failed to list audit log")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
