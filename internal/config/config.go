package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	config "github.com/0xsj/overwatch-pkg/config"
)

// Prefix is prepended to every environment variable.
const Prefix = "DIRECTORY_"

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the directory service.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Breaker   BreakerConfig
	Telemetry TelemetryConfig
	Bus       BusConfig
}

// ServerConfig holds gRPC server configuration.
type ServerConfig struct {
	Host              string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port              int           `env:"SERVER_PORT" default:"50061"`
	EnableReflection  bool          `env:"SERVER_ENABLE_REFLECTION" default:"true"`
	EnableHealthCheck bool          `env:"SERVER_ENABLE_HEALTH_CHECK" default:"true"`
	ShutdownTimeout   time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds read model storage configuration.
type DatabaseConfig struct {
	Driver            string        `env:"DATABASE_DRIVER" default:"postgres"`
	SQLitePath        string        `env:"DATABASE_SQLITE_PATH" default:"data/directory.db"`
	Host              string        `env:"DATABASE_HOST" default:"localhost"`
	Port              int           `env:"DATABASE_PORT" default:"5450"`
	User              string        `env:"DATABASE_USER" default:"overwatch"`
	Password          string        `env:"DATABASE_PASSWORD" default:"overwatch" sensitive:"true"`
	Database          string        `env:"DATABASE_NAME" default:"overwatch_directory"`
	SSLMode           string        `env:"DATABASE_SSL_MODE" default:"disable"`
	MaxConns          int           `env:"DATABASE_MAX_CONNS" default:"25"`
	MinConns          int           `env:"DATABASE_MIN_CONNS" default:"5"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" default:"30m"`
	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTH_CHECK_PERIOD" default:"1m"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled      bool          `env:"REDIS_ENABLED" default:"true"`
	Host         string        `env:"REDIS_HOST" default:"localhost"`
	Port         int           `env:"REDIS_PORT" default:"6390"`
	Password     string        `env:"REDIS_PASSWORD" default:"" sensitive:"true"`
	DB           int           `env:"REDIS_DB" default:"0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" default:"5"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" default:"3s"`
	TTL          time.Duration `env:"REDIS_TTL" default:"5m"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	Enabled       bool          `env:"NATS_ENABLED" default:"true"`
	URL           string        `env:"NATS_URL" default:"nats://localhost:4230"`
	SubjectPrefix string        `env:"NATS_SUBJECT_PREFIX" default:"overwatch"`
	QueueGroup    string        `env:"NATS_QUEUE_GROUP" default:"directory-projector"`
	MaxReconnects int           `env:"NATS_MAX_RECONNECTS" default:"10"`
	ReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" default:"2s"`
	ApplyTimeout  time.Duration `env:"NATS_APPLY_TIMEOUT" default:"5s"`
}

// BreakerConfig holds circuit breaker configuration for the read store.
type BreakerConfig struct {
	Enabled          bool          `env:"BREAKER_ENABLED" default:"true"`
	MaxRequests      int           `env:"BREAKER_MAX_REQUESTS" default:"3"`
	Interval         time.Duration `env:"BREAKER_INTERVAL" default:"10s"`
	Timeout          time.Duration `env:"BREAKER_TIMEOUT" default:"30s"`
	FailureThreshold int           `env:"BREAKER_FAILURE_THRESHOLD" default:"5"`
}

// TelemetryConfig holds tracing configuration.
type TelemetryConfig struct {
	Enabled      bool   `env:"TELEMETRY_ENABLED" default:"false"`
	ServiceName  string `env:"TELEMETRY_SERVICE_NAME" default:"overwatch-directory"`
	Environment  string `env:"TELEMETRY_ENVIRONMENT" default:"development"`
	OTLPEndpoint string `env:"TELEMETRY_OTLP_ENDPOINT" default:"localhost:4318"`
	Insecure     bool   `env:"TELEMETRY_INSECURE" default:"true"`
}

// BusConfig holds query bus configuration.
type BusConfig struct {
	DuplicatePolicy string `env:"BUS_DUPLICATE_POLICY" default:"reject"`
	LogQueries      bool   `env:"BUS_LOG_QUERIES" default:"true"`
}

// Load loads configuration from a .env file, if present, and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := config.Load(cfg, config.WithPrefix(Prefix)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad loads configuration and panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks values the loader cannot.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}

	switch strings.ToLower(c.Bus.DuplicatePolicy) {
	case "", "reject", "overwrite":
	default:
		return fmt.Errorf("config: unsupported duplicate policy %q", c.Bus.DuplicatePolicy)
	}

	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("config: breaker failure threshold must be positive, got %d", c.Breaker.FailureThreshold)
	}

	return nil
}

// Address returns the gRPC server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// IsSQLite reports whether the embedded store is selected.
func (c *DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(c.Driver, DriverSQLite)
}

// Address returns the Redis address.
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
