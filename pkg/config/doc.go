// Package config loads and validates configuration from CADMDT_* environment
// variables, with defaults for everything except the database URL.
//
// Server settings:
//
//	CADMDT_HOST="0.0.0.0"
//	CADMDT_PORT="8080"
//	CADMDT_READ_TIMEOUT="15s"
//	CADMDT_SHUTDOWN_TIMEOUT="30s"
//
// Storage settings:
//
//	CADMDT_DATABASE_DRIVER="postgres"  # postgres or sqlite3
//	CADMDT_DATABASE_URL="postgres://localhost/cadmdt?sslmode=disable"
//	CADMDT_DATABASE_MIGRATE="true"
//	CADMDT_REDIS_URL="redis://localhost:6379"  # optional, enables the shared rate limiter
//
// Access settings:
//
//	CADMDT_RATE_LIMIT_PER_MINUTE="600"
//	CADMDT_RATE_LIMIT_BURST="60"
//	CADMDT_ORG_CACHE_SIZE="1024"
//	CADMDT_ORG_CACHE_TTL="30s"
//
// Observability settings:
//
//	CADMDT_LOG_LEVEL="info"
//	CADMDT_LOG_FORMAT="json"  # json or text
//	CADMDT_METRICS_ENABLED="true"
//	CADMDT_OTEL_ENABLED="false"
//	CADMDT_OTEL_ENDPOINT="localhost:4317"
//
// Usage:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
