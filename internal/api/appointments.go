package api

import (
	"encoding/json"
	"net/http"

	"github.com/donbarbero/booking-core/internal/booking"
)

// handleBookAppointment books a slot through the scheduler, which checks
// the client, barber and service and rejects overlapping bookings.
func (s *Server) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	var req booking.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	appt, err := s.scheduler.Book(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to book appointment")
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// handleCancelAppointment moves a scheduled appointment to cancelled.
func (s *Server) handleCancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	appt, err := s.scheduler.Cancel(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to cancel appointment")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// handleCompleteAppointment moves a scheduled appointment to completed.
func (s *Server) handleCompleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	appt, err := s.scheduler.Complete(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to complete appointment")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}
