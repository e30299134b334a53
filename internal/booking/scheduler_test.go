package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (p *recordingPublisher) PublishEvent(_ context.Context, event string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

var testNow = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repos     *Repositories
	sched     *Scheduler
	pub       *recordingPublisher
	clientID  int64
	barberID  int64
	serviceID int64
}

func setupScheduler(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repos := setupRepos(t)
	pub := &recordingPublisher{}
	sched := NewScheduler(repos, pub, nil)
	sched.now = func() time.Time { return testNow }

	c, err := repos.Clients.Create(ctx, Client{Name: "Ana", Phone: "123"})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	b, err := repos.Barbers.Create(ctx, Barber{Name: "Zé", Active: true})
	if err != nil {
		t.Fatalf("creating barber: %v", err)
	}
	s, err := repos.Services.Create(ctx, Service{Name: "Corte", DurationMinutes: 30, PriceCents: 2500})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}

	return &fixture{repos: repos, sched: sched, pub: pub, clientID: c.ID, barberID: b.ID, serviceID: s.ID}
}

func (f *fixture) request(start time.Time) BookingRequest {
	return BookingRequest{ClientID: f.clientID, BarberID: f.barberID, ServiceID: f.serviceID, StartAt: start}
}

func TestScheduler_Book(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	appt, err := f.sched.Book(ctx, f.request(start))
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if appt.ID == 0 || appt.Status != StatusScheduled {
		t.Errorf("Book() = %+v", appt)
	}
	if !appt.StartAt.Equal(start) || !appt.EndAt.Equal(start.Add(30*time.Minute)) {
		t.Errorf("times = %v..%v", appt.StartAt, appt.EndAt)
	}

	stored, err := f.repos.Appointments.Get(ctx, appt.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !stored.StartAt.Equal(start) || stored.Status != StatusScheduled {
		t.Errorf("stored = %+v", stored)
	}

	if got := f.pub.Events(); len(got) != 1 || got[0] != EventAppointmentBooked {
		t.Errorf("events = %v", got)
	}
}

func TestScheduler_BookRejections(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	if _, err := f.sched.Book(ctx, f.request(start)); err != nil {
		t.Fatalf("first Book() error = %v", err)
	}

	inactive, err := f.repos.Barbers.Create(ctx, Barber{Name: "Off", Active: false})
	if err != nil {
		t.Fatalf("creating barber: %v", err)
	}

	tests := []struct {
		name string
		req  BookingRequest
		want error
	}{
		{"same start", f.request(start), ErrSlotTaken},
		{"overlapping start", f.request(start.Add(15 * time.Minute)), ErrSlotTaken},
		{"overlapping end", f.request(start.Add(-15 * time.Minute)), ErrSlotTaken},
		{"in the past", f.request(testNow.Add(-time.Hour)), ErrInPast},
		{"missing start", f.request(time.Time{}), ErrInvalid},
		{"unknown client", BookingRequest{ClientID: 99, BarberID: f.barberID, ServiceID: f.serviceID, StartAt: start}, ErrNotFound},
		{"unknown service", BookingRequest{ClientID: f.clientID, BarberID: f.barberID, ServiceID: 99, StartAt: start}, ErrNotFound},
		{"inactive barber", BookingRequest{ClientID: f.clientID, BarberID: inactive.ID, ServiceID: f.serviceID, StartAt: start}, ErrBarberInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.sched.Book(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Book() error = %v, want %v", err, tt.want)
			}
		})
	}

	n, err := f.repos.Appointments.Count(ctx, nil)
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; rejected bookings must not be stored", n, err)
	}
}

func TestScheduler_AdjacentSlotsAllowed(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	if _, err := f.sched.Book(ctx, f.request(start)); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, err := f.sched.Book(ctx, f.request(start.Add(30*time.Minute))); err != nil {
		t.Errorf("Book(adjacent) error = %v", err)
	}
}

func TestScheduler_CancelAndComplete(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	appt, err := f.sched.Book(ctx, f.request(start))
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	cancelled, err := f.sched.Cancel(ctx, appt.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("Cancel() status = %s", cancelled.Status)
	}
	if _, err := f.sched.Cancel(ctx, appt.ID); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("second Cancel() error = %v, want ErrNotCancellable", err)
	}
	if _, err := f.sched.Complete(ctx, appt.ID); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("Complete(cancelled) error = %v, want ErrNotCancellable", err)
	}

	// The cancelled slot is free again.
	rebooked, err := f.sched.Book(ctx, f.request(start))
	if err != nil {
		t.Fatalf("Book(freed slot) error = %v", err)
	}
	done, err := f.sched.Complete(ctx, rebooked.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("Complete() status = %s", done.Status)
	}

	if _, err := f.sched.Cancel(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel(missing) error = %v, want ErrNotFound", err)
	}

	want := []string{EventAppointmentBooked, EventAppointmentCancelled, EventAppointmentBooked, EventAppointmentCompleted}
	got := f.pub.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScheduler_PublishFailureKeepsBooking(t *testing.T) {
	f := setupScheduler(t)
	f.pub.fail = true
	ctx := context.Background()

	appt, err := f.sched.Book(ctx, f.request(testNow.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, err := f.repos.Appointments.Get(ctx, appt.ID); err != nil {
		t.Errorf("booking lost after publish failure: %v", err)
	}
}

func TestScheduler_ConcurrentBookingsSameSlot(t *testing.T) {
	f := setupScheduler(t)
	ctx := context.Background()
	start := testNow.Add(48 * time.Hour)

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		booked  int
		refused int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sched.Book(ctx, f.request(start))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, ErrSlotTaken):
				refused++
			default:
				t.Errorf("Book() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if booked != 1 || refused != attempts-1 {
		t.Errorf("booked = %d, refused = %d; want 1 and %d", booked, refused, attempts-1)
	}
}

func TestAppointment_Overlaps(t *testing.T) {
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	a := Appointment{StartAt: base, EndAt: base.Add(time.Hour)}

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", base, base.Add(time.Hour), true},
		{"inside", base.Add(10 * time.Minute), base.Add(20 * time.Minute), true},
		{"covers", base.Add(-time.Hour), base.Add(2 * time.Hour), true},
		{"touching before", base.Add(-time.Hour), base, false},
		{"touching after", base.Add(time.Hour), base.Add(2 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPublishers(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{fail: true}
	pubs := Publishers{failing, nil, ok}

	err := pubs.PublishEvent(context.Background(), EventAppointmentBooked, nil)
	if err == nil {
		t.Fatal("PublishEvent() error = nil, want joined failure")
	}
	for name, p := range map[string]*recordingPublisher{"failing": failing, "ok": ok} {
		if got := p.Events(); len(got) != 1 || got[0] != EventAppointmentBooked {
			t.Errorf("%s publisher events = %v, want [%s]", name, got, EventAppointmentBooked)
		}
	}

	if err := (Publishers{ok}).PublishEvent(context.Background(), EventAppointmentCancelled, nil); err != nil {
		t.Errorf("PublishEvent() error = %v, want nil", err)
	}
	if err := (Publishers{}).PublishEvent(context.Background(), EventAppointmentCancelled, nil); err != nil {
		t.Errorf("empty PublishEvent() error = %v, want nil", err)
	}
}
