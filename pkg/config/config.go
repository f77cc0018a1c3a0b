package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/storage"
)

// EnvPrefix is prepended to every variable name
const EnvPrefix = "CADMDT_"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Rate limiting for the API and page routes
	RateLimit RateLimitConfig

	// Tenant lookup cache
	OrgCache OrgCacheConfig

	// Access denial audit trail
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// TrustedProxies are CIDRs or addresses allowed to set X-Forwarded-For
	TrustedProxies []string
}

// Addr returns host:port for net/http
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// RateLimitConfig holds per-user request limits
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// OrgCacheConfig sizes the slug to organization cache
type OrgCacheConfig struct {
	Size int
	TTL  time.Duration
}

// AuditConfig controls where guard denials are recorded
type AuditConfig struct {
	// Store writes events to the access_audit table; denials are always logged
	Store     bool
	Workers   int
	QueueSize int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevelName string
	LogLevel     observability.LogLevel
	LogFormat    string

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelSampleRatio    float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		RateLimit:     loadRateLimitConfig(),
		OrgCache:      loadOrgCacheConfig(),
		Audit:         loadAuditConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("HOST", "0.0.0.0"),
		Port:            getEnv("PORT", "8080"),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES"),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	cfg.Driver = getEnv("DATABASE_DRIVER", cfg.Driver)
	cfg.URL = getEnv("DATABASE_URL", "")
	cfg.Migrate = getEnvBool("DATABASE_MIGRATE", false)
	if maxConns := getEnvInt("DATABASE_MAX_CONNS", 0); maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if timeout := getEnvDuration("DATABASE_TIMEOUT", 0); timeout > 0 {
		cfg.Timeout = timeout
	}

	// Redis config
	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if redisDB := getEnvInt("REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if poolSize := getEnvInt("REDIS_POOL_SIZE", 0); poolSize > 0 {
		cfg.RedisPoolSize = poolSize
	}

	return cfg
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
		Burst:     getEnvInt("RATE_LIMIT_BURST", 60),
	}
}

func loadOrgCacheConfig() OrgCacheConfig {
	return OrgCacheConfig{
		Size: getEnvInt("ORG_CACHE_SIZE", 1024),
		TTL:  getEnvDuration("ORG_CACHE_TTL", 30*time.Second),
	}
}

func loadAuditConfig() AuditConfig {
	return AuditConfig{
		Store:     getEnvBool("AUDIT_STORE", true),
		Workers:   getEnvInt("AUDIT_WORKERS", 2),
		QueueSize: getEnvInt("AUDIT_QUEUE_SIZE", 1024),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	levelName := getEnv("LOG_LEVEL", "info")
	level, _ := observability.ParseLogLevel(levelName)

	return ObservabilityConfig{
		LogLevelName:       levelName,
		LogLevel:           level,
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", observability.FormatJSON)),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("OTEL_SERVICE_NAME", "cadmdt"),
		OTelServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("OTEL_SAMPLE_RATIO", 1),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Storage.Driver {
	case storage.DriverPostgres, storage.DriverSQLite:
	default:
		return fmt.Errorf("invalid database driver: %s (must be %s or %s)", c.Storage.Driver, storage.DriverPostgres, storage.DriverSQLite)
	}
	if c.Storage.URL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate limit per minute must be positive")
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit burst must not be negative")
	}

	if c.OrgCache.Size <= 0 {
		return fmt.Errorf("org cache size must be positive")
	}
	if c.OrgCache.TTL <= 0 {
		return fmt.Errorf("org cache TTL must be positive")
	}

	if c.Audit.Workers <= 0 {
		return fmt.Errorf("audit workers must be positive")
	}
	if c.Audit.QueueSize < 0 {
		return fmt.Errorf("audit queue size must not be negative")
	}

	if _, err := observability.ParseLogLevel(c.Observability.LogLevelName); err != nil {
		return err
	}
	switch c.Observability.LogFormat {
	case observability.FormatJSON, observability.FormatText:
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Observability.LogFormat)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
		if c.Observability.OTelSampleRatio < 0 || c.Observability.OTelSampleRatio > 1 {
			return fmt.Errorf("OpenTelemetry sample ratio must be between 0 and 1")
		}
	}

	return nil
}

// getEnv returns CADMDT_<key> or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated environment variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(EnvPrefix+key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
