package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/donbarbero/booking-core/internal/audit"
	"github.com/donbarbero/booking-core/internal/auth"
	"github.com/donbarbero/booking-core/internal/booking"
	"github.com/donbarbero/booking-core/internal/infrastructure/config"
	"github.com/donbarbero/booking-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Database is the part of the connection pool the API reports on.
// *database.DB satisfies it.
type Database interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// Broker reports event-bus connectivity. *mqtt.Client satisfies it.
type Broker interface {
	IsConnected() bool
	HealthCheck(ctx context.Context) error
}

// Metrics is the statement metrics sink. *influxdb.Client satisfies it.
type Metrics interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	DB        Database
	Repos     *booking.Repositories
	Scheduler *booking.Scheduler
	Auth      *auth.Authenticator
	Staff     *auth.StaffRepository
	Broker    Broker            // optional
	Metrics   Metrics           // optional
	Audit     *audit.Repository // optional
	Version   string
}

// Server is the HTTP API server for the booking core.
//
// It manages the HTTP listener, routes and middleware.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	db        Database
	repos     *booking.Repositories
	scheduler *booking.Scheduler
	auth      *auth.Authenticator
	staff     *auth.StaffRepository
	broker    Broker
	metrics   Metrics
	audit     *audit.Repository
	recorder  *audit.Recorder
	version   string
	startTime time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, database, repositories,
//     scheduler, authenticator)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.DB == nil:
		return nil, fmt.Errorf("database is required")
	case deps.Repos == nil:
		return nil, fmt.Errorf("repositories are required")
	case deps.Scheduler == nil:
		return nil, fmt.Errorf("scheduler is required")
	case deps.Auth == nil || deps.Staff == nil:
		return nil, fmt.Errorf("authenticator and staff repository are required")
	}

	var recorder *audit.Recorder
	if deps.Audit != nil {
		recorder = audit.NewRecorder(deps.Audit)
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		db:        deps.DB,
		repos:     deps.Repos,
		scheduler: deps.Scheduler,
		auth:      deps.Auth,
		staff:     deps.Staff,
		broker:    deps.Broker,
		metrics:   deps.Metrics,
		audit:     deps.Audit,
		recorder:  recorder,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Handler returns the fully wired router without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
//
// Parameters:
//   - ctx: Unused; the listener lives until Close()
//
// Returns:
//   - error: Always nil; listener failures are logged
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
