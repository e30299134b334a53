// Command donbarbero runs the booking core: the data accessor over the
// relational engine, the appointment scheduler and the staff HTTP API.
//
// Configuration is read from the YAML file named by BOOKING_CONFIG (default
// configs/config.yaml, optional), a .env file and the environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/donbarbero/booking-core/internal/api"
	"github.com/donbarbero/booking-core/internal/audit"
	"github.com/donbarbero/booking-core/internal/auth"
	"github.com/donbarbero/booking-core/internal/booking"
	"github.com/donbarbero/booking-core/internal/infrastructure/config"
	"github.com/donbarbero/booking-core/internal/infrastructure/database"
	"github.com/donbarbero/booking-core/internal/infrastructure/influxdb"
	"github.com/donbarbero/booking-core/internal/infrastructure/logging"
	"github.com/donbarbero/booking-core/internal/infrastructure/mqtt"
	"github.com/donbarbero/booking-core/internal/store"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is cancelled.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting booking core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"driver", cfg.Database.Driver,
		"level", cfg.Logging.Level,
	)

	db, err := database.Open(ctx, databaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "driver", db.Dialect().Name(), "target", db.Target())

	// The broker and the metrics store are optional: the service books
	// appointments without them.
	mqttClient := connectMQTT(cfg, log)
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	}

	influxClient := connectInfluxDB(cfg, log)
	if influxClient != nil {
		defer closeInfluxDB(influxClient, log)
	}

	st := store.New(db, storeOptions(cfg, log, influxClient)...)

	repos := booking.NewRepositories(st)
	auditRepo := audit.NewRepository(st)
	pubs := append(publishers(mqttClient, influxClient), audit.NewRecorder(auditRepo))
	scheduler := booking.NewScheduler(repos, pubs, log.Component("scheduler"))

	staff := auth.NewStaffRepository(st)
	if _, err := auth.SeedManager(ctx, staff, log.Logger); err != nil {
		return fmt.Errorf("seeding staff: %w", err)
	}
	authenticator := auth.NewAuthenticator(staff, cfg.Security.JWT.Secret, cfg.Security.JWT.AccessTokenTTL, log.Component("auth"))

	deps := api.Deps{
		Config:    cfg.API,
		Logger:    log.Component("api"),
		DB:        db,
		Repos:     repos,
		Scheduler: scheduler,
		Auth:      authenticator,
		Staff:     staff,
		Audit:     auditRepo,
		Version:   version,
	}
	if mqttClient != nil {
		deps.Broker = mqttClient
	}
	if influxClient != nil {
		deps.Metrics = influxClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred closes run in reverse order: API, InfluxDB, MQTT, database.
	return nil
}

// getConfigPath returns the configuration file path. BOOKING_CONFIG wins;
// otherwise the default is used when it exists, and no file at all when it
// does not.
func getConfigPath() string {
	if path := os.Getenv("BOOKING_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Name:            cfg.Database.Name,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Path:            cfg.Database.Path,
		BusyTimeout:     cfg.Database.BusyTimeout,
		WALMode:         cfg.Database.WALMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.GetConnMaxLifetime(),
		AcquireTimeout:  cfg.GetAcquireTimeout(),
	}
}

// storeOptions builds the accessor options. The table allow-list is the
// configured list, or every table the service owns.
func storeOptions(cfg *config.Config, log *logging.Logger, influxClient *influxdb.Client) []store.Option {
	tables := cfg.Database.Tables
	if len(tables) == 0 {
		tables = append(booking.Tables(), auth.TableStaff, audit.TableAuditLogs)
	}
	opts := []store.Option{
		store.WithLogger(log.Component("store")),
		store.WithTables(tables...),
	}
	if influxClient != nil {
		opts = append(opts, store.WithObserver(influxClient))
	}
	return opts
}

// connectMQTT connects to the broker when enabled. A failed connection is
// logged and the service runs without event publishing.
func connectMQTT(cfg *config.Config, log *logging.Logger) *mqtt.Client {
	if !cfg.MQTT.Enabled {
		log.Info("MQTT disabled")
		return nil
	}
	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.Warn("MQTT unavailable, booking events will not be published", "error", err)
		return nil
	}
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
		"client_id", cfg.MQTT.ClientID,
	)
	return client
}

// connectInfluxDB connects to InfluxDB when enabled. A failed connection is
// logged and statement metrics are not recorded.
func connectInfluxDB(cfg *config.Config, log *logging.Logger) *influxdb.Client {
	client, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
		return nil
	case err != nil:
		log.Warn("InfluxDB unavailable, statement metrics will not be recorded", "error", err)
		return nil
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client
}

// closeInfluxDB writes out buffered metrics points, then closes the client.
func closeInfluxDB(client *influxdb.Client, log *logging.Logger) {
	log.Info("flushing InfluxDB metrics")
	client.Flush()
	log.Info("closing InfluxDB connection")
	if err := client.Close(); err != nil {
		log.Error("error closing InfluxDB", "error", err)
	}
}

// publishers collects the connected event sinks. Nil clients are skipped so
// no typed nil ends up behind the interface.
func publishers(mqttClient *mqtt.Client, influxClient *influxdb.Client) booking.Publishers {
	var pubs booking.Publishers
	if mqttClient != nil {
		pubs = append(pubs, mqttClient)
	}
	if influxClient != nil {
		pubs = append(pubs, influxClient)
	}
	return pubs
}
