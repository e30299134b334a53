package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/donbarbero/booking-core/internal/booking"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	Database      DatabaseMetrics `json:"database"`
	MQTT          *MQTTMetrics    `json:"mqtt,omitempty"`
	Bookings      BookingMetrics  `json:"bookings"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	MaxOpenConnections int   `json:"max_open_connections"`
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
	WaitDurationMS     int64 `json:"wait_duration_ms"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// BookingMetrics counts appointments by status. A status whose count could
// not be read is omitted.
type BookingMetrics struct {
	Appointments map[string]int64 `json:"appointments"`
}

// handleMetrics returns runtime, pool and booking statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbStats := s.db.Stats()

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Database: DatabaseMetrics{
			MaxOpenConnections: dbStats.MaxOpenConnections,
			OpenConnections:    dbStats.OpenConnections,
			InUse:              dbStats.InUse,
			Idle:               dbStats.Idle,
			WaitCount:          dbStats.WaitCount,
			WaitDurationMS:     dbStats.WaitDuration.Milliseconds(),
		},
		Bookings: BookingMetrics{Appointments: make(map[string]int64)},
	}

	if s.broker != nil {
		metrics.MQTT = &MQTTMetrics{Connected: s.broker.IsConnected()}
	}

	for _, status := range []booking.Status{booking.StatusScheduled, booking.StatusCancelled, booking.StatusCompleted} {
		n, err := s.repos.Appointments.Count(r.Context(), map[string]any{"status": string(status)})
		if err != nil {
			s.logger.Warn("counting appointments for metrics", "status", status, "error", err)
			continue
		}
		metrics.Bookings.Appointments[string(status)] = n
	}

	writeJSON(w, http.StatusOK, metrics)
}
