package config

import (
	"strings"
	"testing"
	"time"

	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/storage"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	t.Setenv("CADMDT_TEST_VAR", "custom")

	if got := getEnv("TEST_VAR", "default"); got != "custom" {
		t.Errorf("getEnv() = %v, want custom", got)
	}
	if got := getEnv("TEST_VAR_NOT_SET", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want default", got)
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{"returns true for 'true'", false, "true", true},
		{"returns true for '1'", false, "1", true},
		{"returns true for 'TRUE'", false, "TRUE", true},
		{"returns false for 'false'", true, "false", false},
		{"returns default when not set", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CADMDT_TEST_BOOL", tt.envValue)

			got := getEnvBool("TEST_BOOL", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvInt tests the getEnvInt helper function
func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{"returns parsed int", "42", 42},
		{"returns default for invalid int", "invalid", 10},
		{"returns default when not set", "", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CADMDT_TEST_INT", tt.envValue)

			if got := getEnvInt("TEST_INT", 10); got != tt.want {
				t.Errorf("getEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvDuration tests the getEnvDuration helper function
func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{"returns parsed duration", "45s", 45 * time.Second},
		{"returns default for invalid duration", "soon", time.Minute},
		{"returns default when not set", "", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CADMDT_TEST_DURATION", tt.envValue)

			if got := getEnvDuration("TEST_DURATION", time.Minute); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadServerConfig(t *testing.T) {
	t.Setenv("CADMDT_HOST", "127.0.0.1")
	t.Setenv("CADMDT_PORT", "9000")
	t.Setenv("CADMDT_SHUTDOWN_TIMEOUT", "5s")

	cfg := loadServerConfig()
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", cfg.Addr())
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want default 15s", cfg.ReadTimeout)
	}
}

func TestLoadStorageConfig(t *testing.T) {
	t.Setenv("CADMDT_DATABASE_DRIVER", "sqlite3")
	t.Setenv("CADMDT_DATABASE_URL", "file:cadmdt.db")
	t.Setenv("CADMDT_DATABASE_MIGRATE", "true")
	t.Setenv("CADMDT_REDIS_URL", "redis://localhost:6379")
	t.Setenv("CADMDT_REDIS_DB", "2")

	cfg := loadStorageConfig()
	if cfg.Driver != storage.DriverSQLite {
		t.Errorf("Driver = %q, want sqlite3", cfg.Driver)
	}
	if cfg.URL != "file:cadmdt.db" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if !cfg.Migrate {
		t.Error("Migrate = false, want true")
	}
	if cfg.RedisURL != "redis://localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis config = %q db %d", cfg.RedisURL, cfg.RedisDB)
	}
	if cfg.MaxConns != storage.DefaultConfig().MaxConns {
		t.Errorf("MaxConns = %d, want default", cfg.MaxConns)
	}
}

func TestLoadObservabilityConfig(t *testing.T) {
	t.Setenv("CADMDT_LOG_LEVEL", "debug")
	t.Setenv("CADMDT_LOG_FORMAT", "TEXT")
	t.Setenv("CADMDT_OTEL_ENABLED", "true")
	t.Setenv("CADMDT_OTEL_SAMPLE_RATIO", "0.25")

	cfg := loadObservabilityConfig()
	if cfg.LogLevel != observability.DebugLevel {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if cfg.LogFormat != observability.FormatText {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if !cfg.OTelEnabled || cfg.OTelServiceName != "cadmdt" {
		t.Errorf("otel config = %+v", cfg)
	}
	if cfg.OTelSampleRatio != 0.25 {
		t.Errorf("OTelSampleRatio = %v, want 0.25", cfg.OTelSampleRatio)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled should default to true")
	}
}

func TestLoadServerConfig_TrustedProxies(t *testing.T) {
	t.Setenv("CADMDT_TRUSTED_PROXIES", "10.0.0.0/8, ,127.0.0.1")

	cfg := loadServerConfig()
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" || cfg.TrustedProxies[1] != "127.0.0.1" {
		t.Errorf("TrustedProxies = %q", cfg.TrustedProxies)
	}

	t.Setenv("CADMDT_TRUSTED_PROXIES", "")
	if got := loadServerConfig().TrustedProxies; len(got) != 0 {
		t.Errorf("TrustedProxies default = %q, want none", got)
	}
}

func validConfig() *Config {
	st := storage.DefaultConfig()
	st.URL = "postgres://localhost/cadmdt"
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Storage:   st,
		RateLimit: RateLimitConfig{PerMinute: 600, Burst: 60},
		OrgCache:  OrgCacheConfig{Size: 100, TTL: time.Minute},
		Audit:     AuditConfig{Store: true, Workers: 2, QueueSize: 16},
		Observability: ObservabilityConfig{
			LogLevelName: "info",
			LogFormat:    observability.FormatJSON,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mysql" }, wantErr: "invalid database driver"},
		{name: "missing database URL", mutate: func(c *Config) { c.Storage.URL = "" }, wantErr: "database URL"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.PerMinute = 0 }, wantErr: "rate limit"},
		{name: "negative burst", mutate: func(c *Config) { c.RateLimit.Burst = -1 }, wantErr: "burst"},
		{name: "zero cache size", mutate: func(c *Config) { c.OrgCache.Size = 0 }, wantErr: "cache size"},
		{name: "zero cache TTL", mutate: func(c *Config) { c.OrgCache.TTL = 0 }, wantErr: "cache TTL"},
		{name: "no audit workers", mutate: func(c *Config) { c.Audit.Workers = 0 }, wantErr: "audit workers"},
		{name: "bad log level", mutate: func(c *Config) { c.Observability.LogLevelName = "loud" }, wantErr: "unknown log level"},
		{name: "bad log format", mutate: func(c *Config) { c.Observability.LogFormat = "xml" }, wantErr: "log format"},
		{
			name: "otel without endpoint",
			mutate: func(c *Config) {
				c.Observability.OTelEnabled = true
				c.Observability.OTelServiceName = "cadmdt"
			},
			wantErr: "endpoint",
		},
		{
			name: "otel sample ratio above one",
			mutate: func(c *Config) {
				c.Observability.OTelEnabled = true
				c.Observability.OTelEndpoint = "localhost:4317"
				c.Observability.OTelServiceName = "cadmdt"
				c.Observability.OTelSampleRatio = 2
			},
			wantErr: "sample ratio",
		},
		{
			name: "sqlite driver",
			mutate: func(c *Config) {
				c.Storage.Driver = storage.DriverSQLite
				c.Storage.URL = ":memory:"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("requires a database URL", func(t *testing.T) {
		t.Setenv("CADMDT_DATABASE_URL", "")

		if _, err := LoadConfig(); err == nil {
			t.Error("LoadConfig() should fail without CADMDT_DATABASE_URL")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CADMDT_DATABASE_URL", "postgres://localhost/cadmdt")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Storage.Driver != storage.DriverPostgres {
			t.Errorf("Driver = %q, want postgres", cfg.Storage.Driver)
		}
		if cfg.RateLimit.PerMinute != 600 || cfg.RateLimit.Burst != 60 {
			t.Errorf("RateLimit = %+v", cfg.RateLimit)
		}
		if cfg.OrgCache.TTL != 30*time.Second {
			t.Errorf("OrgCache.TTL = %v", cfg.OrgCache.TTL)
		}
		if !cfg.Audit.Store || cfg.Audit.Workers != 2 || cfg.Audit.QueueSize != 1024 {
			t.Errorf("Audit = %+v", cfg.Audit)
		}
	})

	t.Run("audit overrides", func(t *testing.T) {
		t.Setenv("CADMDT_DATABASE_URL", "postgres://localhost/cadmdt")
		t.Setenv("CADMDT_AUDIT_STORE", "false")
		t.Setenv("CADMDT_AUDIT_QUEUE_SIZE", "8")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Audit.Store || cfg.Audit.QueueSize != 8 {
			t.Errorf("Audit = %+v", cfg.Audit)
		}
	})
}
