package booking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Table names.
const (
	TableClients      = "clients"
	TableBarbers      = "barbers"
	TableServices     = "services"
	TableAppointments = "appointments"
)

// Field limits.
const (
	maxNameLength  = 100
	maxPhoneLength = 30
	maxNotesLength = 500
	maxDuration    = 8 * 60 // minutes
)

// Client is a customer who books appointments.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the writable fields.
func (c Client) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if len(c.Phone) > maxPhoneLength {
		return fmt.Errorf("%w: phone exceeds %d characters", ErrInvalid, maxPhoneLength)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("%w: email %q", ErrInvalid, c.Email)
		}
	}
	return nil
}

// Barber is a member of staff who takes appointments.
type Barber struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Validate checks the writable fields.
func (b Barber) Validate() error {
	return validateName(b.Name)
}

// Service is a bookable offering with a fixed duration and price.
type Service struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

// Validate checks the writable fields.
func (s Service) Validate() error {
	if err := validateName(s.Name); err != nil {
		return err
	}
	if s.DurationMinutes < 1 || s.DurationMinutes > maxDuration {
		return fmt.Errorf("%w: duration_minutes must be between 1 and %d", ErrInvalid, maxDuration)
	}
	if s.PriceCents < 0 {
		return fmt.Errorf("%w: price_cents must not be negative", ErrInvalid)
	}
	return nil
}

// Duration returns the service length.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Status is the lifecycle state of an appointment.
type Status string

// Appointment states. Scheduled is the only state that can change.
const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Appointment is a booked slot of a barber for a client and service.
type Appointment struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	BarberID  int64     `json:"barber_id"`
	ServiceID int64     `json:"service_id"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
}

// Validate checks the writable fields.
func (a Appointment) Validate() error {
	if a.ClientID <= 0 || a.BarberID <= 0 || a.ServiceID <= 0 {
		return fmt.Errorf("%w: client_id, barber_id and service_id are required", ErrInvalid)
	}
	if a.StartAt.IsZero() {
		return fmt.Errorf("%w: start_at is required", ErrInvalid)
	}
	if !a.EndAt.After(a.StartAt) {
		return fmt.Errorf("%w: end_at must be after start_at", ErrInvalid)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalid, a.Status)
	}
	if len(a.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalid, maxNotesLength)
	}
	return nil
}

// Overlaps reports whether a shares any instant with [start, end). Touching
// ends do not overlap.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && start.Before(a.EndAt)
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, maxNameLength)
	}
	return nil
}
