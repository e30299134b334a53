package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/donbarbero/booking-core/internal/booking"
	"github.com/donbarbero/booking-core/internal/infrastructure/database"
	"github.com/donbarbero/booking-core/internal/store"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeForbidden      = "forbidden"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
	ErrCodeUnavailable    = "service_unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps booking, accessor and pool errors to a response.
// Anything unrecognised is logged and reported as fallback with a 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, booking.ErrInvalid),
		errors.Is(err, booking.ErrUnknownField),
		errors.Is(err, booking.ErrInPast),
		errors.Is(err, booking.ErrBarberInactive):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.Is(err, booking.ErrSlotTaken),
		errors.Is(err, booking.ErrNotCancellable):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, store.ErrInvalidDescriptor),
		errors.Is(err, store.ErrInvalidOrder),
		errors.Is(err, store.ErrUnknownColumn),
		errors.Is(err, store.ErrInvalidIdentifier):
		writeBadRequest(w, err.Error())
	case errors.Is(err, database.ErrAcquireTimeout):
		s.logger.Warn("database pool exhausted", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "database busy, retry later")
	default:
		s.logger.Error(fallback,
			"error", err,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, fallback)
	}
}
