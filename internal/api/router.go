package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/donbarbero/booking-core/internal/auth"
)

// healthCheckTimeout bounds the dependency checks behind GET /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	clients := newResource(s, s.repos.Clients, "client")
	barbers := newResource(s, s.repos.Barbers, "barber")
	services := newResource(s, s.repos.Services, "service")
	appointments := newResource(s, s.repos.Appointments, "appointment")

	r.Route("/api/v1", func(r chi.Router) {
		// No auth required
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.With(s.requirePermission(auth.PermCatalogManage)).Get("/metrics", s.handleMetrics)
			r.With(s.requirePermission(auth.PermCatalogManage)).Get("/audit", s.handleListAudit)

			r.Route("/clients", func(r chi.Router) {
				r.With(s.requirePermission(auth.PermBookingRead)).Get("/", clients.list)
				r.With(s.requirePermission(auth.PermBookingWrite)).Post("/", clients.create)
				r.Route("/{id}", func(r chi.Router) {
					r.With(s.requirePermission(auth.PermBookingRead)).Get("/", clients.get)
					r.With(s.requirePermission(auth.PermBookingWrite)).Patch("/", clients.patch)
					r.With(s.requirePermission(auth.PermClientsDelete)).Delete("/", clients.remove)
				})
			})

			// Barbers and services are the catalogue: readable by all staff,
			// writable by managers.
			r.Route("/barbers", func(r chi.Router) {
				catalogRoutes(r, s, barbers)
			})
			r.Route("/services", func(r chi.Router) {
				catalogRoutes(r, s, services)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermBookingRead))
				r.Get("/", appointments.list)
				r.With(s.requirePermission(auth.PermBookingWrite)).Post("/", s.handleBookAppointment)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", appointments.get)
					r.Group(func(r chi.Router) {
						r.Use(s.requirePermission(auth.PermBookingWrite))
						r.Patch("/", appointments.patch)
						r.Post("/cancel", s.handleCancelAppointment)
						r.Post("/complete", s.handleCompleteAppointment)
					})
					r.With(s.requirePermission(auth.PermCatalogManage)).Delete("/", appointments.remove)
				})
			})
		})
	})

	return r
}

func catalogRoutes[T entity](r chi.Router, s *Server, res *resource[T]) {
	r.With(s.requirePermission(auth.PermBookingRead)).Get("/", res.list)
	r.With(s.requirePermission(auth.PermCatalogManage)).Post("/", res.create)
	r.Route("/{id}", func(r chi.Router) {
		r.With(s.requirePermission(auth.PermBookingRead)).Get("/", res.get)
		r.With(s.requirePermission(auth.PermCatalogManage)).Patch("/", res.patch)
		r.With(s.requirePermission(auth.PermCatalogManage)).Delete("/", res.remove)
	})
}

// Values of the per-dependency fields in the GET /health body.
const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
	healthDisabled    = "disabled"
)

// handleHealth reports service status. Only the database decides the status
// code; the broker and the metrics store are optional and reported as is.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	body := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"database": healthOK,
		"mqtt":     s.dependencyHealth(ctx, "mqtt", s.broker),
		"influxdb": s.dependencyHealth(ctx, "influxdb", s.metrics),
	}

	if err := s.db.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		body["status"] = "degraded"
		body["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// dependencyHealth checks an optional dependency. A nil dep is reported as
// disabled.
func (s *Server) dependencyHealth(ctx context.Context, name string, dep interface {
	HealthCheck(ctx context.Context) error
}) string {
	if dep == nil {
		return healthDisabled
	}
	if err := dep.HealthCheck(ctx); err != nil {
		s.logger.Warn("dependency unhealthy", "dependency", name, "error", err)
		return healthUnavailable
	}
	return healthOK
}
