package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/donbarbero/booking-core/internal/infrastructure/database"
)

// Config is the root configuration structure for the booking core.
// Values come from defaults, an optional YAML file, an optional .env file and
// the process environment, in that order of precedence (last wins).
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
}

// DatabaseConfig contains relational engine connection settings.
type DatabaseConfig struct {
	// Driver selects the dialect: "mysql", "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Path is the database file, used by the sqlite driver only.
	Path string `yaml:"path"`

	// Pool sizing. MaxOpenConns bounds concurrent checkouts.
	MaxOpenConns    int `yaml:"max_open_conns"`
	MaxIdleConns    int `yaml:"max_idle_conns"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime"` // seconds

	// AcquireTimeout bounds how long a single checkout may wait (milliseconds).
	AcquireTimeout int `yaml:"acquire_timeout"`

	// BusyTimeout and WALMode only apply to sqlite.
	BusyTimeout int  `yaml:"busy_timeout"`
	WALMode     bool `yaml:"wal_mode"`

	// Tables, when non-empty, is the only set of tables the accessor will touch.
	Tables []string `yaml:"tables"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// CORSConfig lists the browser origins allowed to call the API. An empty
// AllowedOrigins allows every origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	TLS         bool   `yaml:"tls"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	QoS         int    `yaml:"qos"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// Load reads configuration and applies overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values, when path is non-empty
//  3. A .env file in the working directory, when present (never overrides
//     variables already set in the process environment)
//  4. Environment variables
//
// A missing value at every layer falls back to its default rather than
// failing; only contradictory values are rejected by Validate.
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for none
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read or parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads a dotenv file into the process environment if it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "127.0.0.1",
			Port:            3306,
			Name:            "barbearia01",
			Username:        "root",
			Path:            "./data/booking.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 3600,
			AcquireTimeout:  5000,
			BusyTimeout:     5,
			WALMode:         true,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		MQTT: MQTTConfig{
			Host:        "localhost",
			Port:        1883,
			ClientID:    "donbarbero-core",
			QoS:         1,
			TopicPrefix: "donbarbero",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Database variables keep the DB_* names the deployment .env files already use.
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v, ok := envInt("DB_PORT"); ok {
		cfg.Database.Port = v
	}
	if v := os.Getenv("DB_DATABASE"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("BOOKING_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v, ok := envInt("BOOKING_API_PORT"); ok {
		cfg.API.Port = v
	}

	// MQTT
	if v := os.Getenv("BOOKING_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
	}
	if v := os.Getenv("BOOKING_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("BOOKING_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	// InfluxDB
	if v := os.Getenv("BOOKING_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("BOOKING_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Security
	if v := os.Getenv("BOOKING_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// envInt reads an integer environment variable. Unparseable values are
// ignored so the previous layer's value stands.
func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Aliases such as "sqlite3" or "MariaDB" are normalised to the dialect name.
	if d, err := database.DialectFor(c.Database.Driver); err != nil {
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (mysql, sqlite, postgres)", c.Database.Driver))
	} else {
		c.Database.Driver = d.Name()
	}

	switch c.Database.Driver {
	case "mysql", "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			errs = append(errs, "database.port must be between 1 and 65535")
		}
		if c.Database.Name == "" {
			errs = append(errs, "database.name is required")
		}
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for sqlite")
		}
	}

	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, "database.max_open_conns must be at least 1")
	}
	if c.Database.AcquireTimeout < 1 {
		errs = append(errs, "database.acquire_timeout must be positive")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	// Staff tokens grant write access to every booking; a short secret
	// makes them forgeable.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set BOOKING_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetAcquireTimeout returns the per-checkout pool timeout as a Duration.
func (c *Config) GetAcquireTimeout() time.Duration {
	return time.Duration(c.Database.AcquireTimeout) * time.Millisecond
}

// GetConnMaxLifetime returns the pooled connection lifetime as a Duration.
func (c *Config) GetConnMaxLifetime() time.Duration {
	return time.Duration(c.Database.ConnMaxLifetime) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
