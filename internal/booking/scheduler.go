package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/donbarbero/booking-core/internal/store"
)

// Event names published on appointment state changes.
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
)

// EventPublisher delivers booking events to interested systems.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event string, payload any) error
}

// Publishers fans an event out to several publishers. Every publisher is
// tried; the failures are joined.
type Publishers []EventPublisher

// PublishEvent forwards the event to every non-nil publisher.
func (p Publishers) PublishEvent(ctx context.Context, event string, payload any) error {
	var errs []error
	for _, pub := range p {
		if pub == nil {
			continue
		}
		if err := pub.PublishEvent(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logger is the subset of logging.Logger the scheduler uses.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// BookingRequest is the input to Scheduler.Book.
type BookingRequest struct {
	ClientID  int64     `json:"client_id"`
	BarberID  int64     `json:"barber_id"`
	ServiceID int64     `json:"service_id"`
	StartAt   time.Time `json:"start_at"`
	Notes     string    `json:"notes,omitempty"`
}

// Scheduler books, cancels and completes appointments.
//
// Bookings for the same barber are serialised within the process so two
// concurrent requests cannot both pass the overlap check. The accessor runs
// no transactions, so this does not hold across several processes.
type Scheduler struct {
	repos     *Repositories
	publisher EventPublisher
	logger    Logger
	now       func() time.Time

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewScheduler creates a Scheduler. publisher and logger may be nil.
func NewScheduler(repos *Repositories, publisher EventPublisher, logger Logger) *Scheduler {
	return &Scheduler{
		repos:     repos,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// Book creates a scheduled appointment after checking the client, barber and
// service exist, the barber is active, the start is in the future and the
// barber has no overlapping scheduled appointment.
func (s *Scheduler) Book(ctx context.Context, req BookingRequest) (Appointment, error) {
	if req.StartAt.IsZero() {
		return Appointment{}, fmt.Errorf("%w: start_at is required", ErrInvalid)
	}
	start := dbTime(req.StartAt)
	if !start.After(s.now()) {
		return Appointment{}, ErrInPast
	}

	if _, err := s.repos.Clients.Get(ctx, req.ClientID); err != nil {
		return Appointment{}, fmt.Errorf("client: %w", err)
	}
	barber, err := s.repos.Barbers.Get(ctx, req.BarberID)
	if err != nil {
		return Appointment{}, fmt.Errorf("barber: %w", err)
	}
	if !barber.Active {
		return Appointment{}, ErrBarberInactive
	}
	svc, err := s.repos.Services.Get(ctx, req.ServiceID)
	if err != nil {
		return Appointment{}, fmt.Errorf("service: %w", err)
	}

	appt := Appointment{
		ClientID:  req.ClientID,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		StartAt:   start,
		EndAt:     start.Add(svc.Duration()),
		Status:    StatusScheduled,
		Notes:     req.Notes,
	}
	if err := appt.Validate(); err != nil {
		return Appointment{}, err
	}

	unlock := s.lockBarber(req.BarberID)
	defer unlock()

	scheduled, err := s.repos.Appointments.List(ctx, store.Descriptor{
		Filters: map[string]any{
			"barber_id": req.BarberID,
			"status":    string(StatusScheduled),
		},
	})
	if err != nil {
		return Appointment{}, fmt.Errorf("checking availability: %w", err)
	}
	for _, other := range scheduled {
		if other.Overlaps(appt.StartAt, appt.EndAt) {
			return Appointment{}, fmt.Errorf("%w: overlaps appointment %d", ErrSlotTaken, other.ID)
		}
	}

	created, err := s.repos.Appointments.Create(ctx, appt)
	if err != nil {
		return Appointment{}, err
	}

	s.info("appointment booked", "appointment_id", created.ID, "barber_id", created.BarberID, "start_at", created.StartAt)
	s.publish(ctx, EventAppointmentBooked, created)
	return created, nil
}

// Cancel moves a scheduled appointment to cancelled.
func (s *Scheduler) Cancel(ctx context.Context, id int64) (Appointment, error) {
	return s.transition(ctx, id, StatusCancelled, EventAppointmentCancelled)
}

// Complete moves a scheduled appointment to completed.
func (s *Scheduler) Complete(ctx context.Context, id int64) (Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, EventAppointmentCompleted)
}

// transition changes status from scheduled to next. The update is filtered on
// the current status, so a concurrent transition makes this one fail with
// ErrNotCancellable rather than overwrite it.
func (s *Scheduler) transition(ctx context.Context, id int64, next Status, event string) (Appointment, error) {
	appt, err := s.repos.Appointments.Get(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if appt.Status != StatusScheduled {
		return Appointment{}, fmt.Errorf("%w: appointment %d is %s", ErrNotCancellable, id, appt.Status)
	}

	n, err := s.repos.Appointments.store.Update(ctx, TableAppointments,
		store.Record{"status": string(next)},
		map[string]any{"id": id, "status": string(StatusScheduled)},
	)
	if err != nil {
		return Appointment{}, err
	}
	if n == 0 {
		return Appointment{}, fmt.Errorf("%w: appointment %d changed concurrently", ErrNotCancellable, id)
	}

	appt.Status = next
	s.info("appointment "+string(next), "appointment_id", id)
	s.publish(ctx, event, appt)
	return appt, nil
}

func (s *Scheduler) lockBarber(id int64) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// publish sends an event. Failures are logged; the state change has already
// been stored and is not rolled back.
func (s *Scheduler) publish(ctx context.Context, event string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event, payload); err != nil && s.logger != nil {
		s.logger.Warn("publishing booking event failed", "event", event, "error", err)
	}
}

func (s *Scheduler) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
