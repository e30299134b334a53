package booking

import (
	"fmt"
	"time"

	"github.com/donbarbero/booking-core/internal/store"
)

// Column lists per table. The first list of each pair is readable and
// filterable; the second is what PATCH may change.
var (
	clientColumns      = []string{"id", "name", "phone", "email", "created_at"}
	clientWritable     = []string{"name", "phone", "email"}
	barberColumns      = []string{"id", "name", "active"}
	barberWritable     = []string{"name", "active"}
	serviceColumns     = []string{"id", "name", "duration_minutes", "price_cents"}
	serviceWritable    = []string{"name", "duration_minutes", "price_cents"}
	appointmentColumns = []string{"id", "client_id", "barber_id", "service_id", "start_at", "end_at", "status", "notes"}
	appointmentWrite   = []string{"notes"}
)

// dbTime normalises times before they are bound so equality filters and
// overlap checks see the same representation on every engine.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func requireID(r store.Record) (int64, error) {
	id, ok := r.Int64("id")
	if !ok {
		return 0, fmt.Errorf("decoding row: missing id")
	}
	return id, nil
}

// intColumn reads an integer column. A missing or NULL value is 0; anything
// that is not a whole number is an error rather than being truncated.
func intColumn(r store.Record, col string) (int64, error) {
	if r[col] == nil {
		return 0, nil
	}
	n, ok := r.Int64(col)
	if !ok {
		return 0, fmt.Errorf("%s must be a whole number, got %v", col, r[col])
	}
	return n, nil
}

// ─── clients ────────────────────────────────────────────────────────

func encodeClient(c Client) store.Record {
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return store.Record{
		"name":       c.Name,
		"phone":      c.Phone,
		"email":      c.Email,
		"created_at": dbTime(created),
	}
}

func decodeClient(r store.Record) (Client, error) {
	id, err := requireID(r)
	if err != nil {
		return Client{}, err
	}
	created, _ := r.Time("created_at")
	return Client{
		ID:        id,
		Name:      r.String("name"),
		Phone:     r.String("phone"),
		Email:     r.String("email"),
		CreatedAt: created.UTC(),
	}, nil
}

// ─── barbers ────────────────────────────────────────────────────────

func encodeBarber(b Barber) store.Record {
	return store.Record{
		"name":   b.Name,
		"active": b.Active,
	}
}

func decodeBarber(r store.Record) (Barber, error) {
	id, err := requireID(r)
	if err != nil {
		return Barber{}, err
	}
	return Barber{
		ID:     id,
		Name:   r.String("name"),
		Active: r.Bool("active"),
	}, nil
}

// ─── services ───────────────────────────────────────────────────────

func encodeService(s Service) store.Record {
	return store.Record{
		"name":             s.Name,
		"duration_minutes": s.DurationMinutes,
		"price_cents":      s.PriceCents,
	}
}

func decodeService(r store.Record) (Service, error) {
	id, err := requireID(r)
	if err != nil {
		return Service{}, err
	}
	duration, err := intColumn(r, "duration_minutes")
	if err != nil {
		return Service{}, err
	}
	price, err := intColumn(r, "price_cents")
	if err != nil {
		return Service{}, err
	}
	return Service{
		ID:              id,
		Name:            r.String("name"),
		DurationMinutes: int(duration),
		PriceCents:      price,
	}, nil
}

// ─── appointments ───────────────────────────────────────────────────

func encodeAppointment(a Appointment) store.Record {
	return store.Record{
		"client_id":  a.ClientID,
		"barber_id":  a.BarberID,
		"service_id": a.ServiceID,
		"start_at":   dbTime(a.StartAt),
		"end_at":     dbTime(a.EndAt),
		"status":     string(a.Status),
		"notes":      a.Notes,
	}
}

func decodeAppointment(r store.Record) (Appointment, error) {
	id, err := requireID(r)
	if err != nil {
		return Appointment{}, err
	}
	start, ok := r.Time("start_at")
	if !ok {
		return Appointment{}, fmt.Errorf("decoding appointment %d: start_at %v", id, r["start_at"])
	}
	end, ok := r.Time("end_at")
	if !ok {
		return Appointment{}, fmt.Errorf("decoding appointment %d: end_at %v", id, r["end_at"])
	}
	var ids [3]int64
	for i, col := range []string{"client_id", "barber_id", "service_id"} {
		if ids[i], err = intColumn(r, col); err != nil {
			return Appointment{}, err
		}
	}
	clientID, barberID, serviceID := ids[0], ids[1], ids[2]
	return Appointment{
		ID:        id,
		ClientID:  clientID,
		BarberID:  barberID,
		ServiceID: serviceID,
		StartAt:   start.UTC(),
		EndAt:     end.UTC(),
		Status:    Status(r.String("status")),
		Notes:     r.String("notes"),
	}, nil
}
