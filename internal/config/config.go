// Package config loads tripway client configuration from the
// environment, with optional .env support for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client configuration.
type Config struct {
	// BackendBaseURL is the trip backend base address.
	BackendBaseURL string

	// APIKey accompanies place searches.
	APIKey string

	// RequestTimeout bounds place and review requests.
	RequestTimeout time.Duration

	// RouteTimeout bounds the itinerary recommendation request, which is
	// much slower than a place lookup.
	RouteTimeout time.Duration

	// ParamsPath overrides the trip parameter store location. Empty means
	// the per-user config directory.
	ParamsPath string

	// JWTSigningKey signs session tokens.
	JWTSigningKey string

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration

	// Environment names the deployment environment.
	Environment string

	// OTLPEndpoint receives traces and metrics when telemetry is enabled.
	OTLPEndpoint string

	// TelemetryEnabled turns OpenTelemetry export on.
	TelemetryEnabled bool
}

// FromEnv creates a Config from environment variables. A .env file in
// the working directory is loaded first if present; real environment
// variables win over it.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		BackendBaseURL:   getEnvOrDefault("TRIPWAY_BACKEND_URL", "http://localhost:8080"),
		APIKey:           os.Getenv("TRIPWAY_API_KEY"),
		RequestTimeout:   getEnvAsDuration("TRIPWAY_REQUEST_TIMEOUT", 10*time.Second),
		RouteTimeout:     getEnvAsDuration("TRIPWAY_ROUTE_TIMEOUT", 30*time.Second),
		ParamsPath:       os.Getenv("TRIPWAY_PARAMS_PATH"),
		JWTSigningKey:    getEnvOrDefault("JWT_SIGNING_KEY", "local-dev-signing-key-change-in-production"),
		TokenTTL:         getEnvAsDuration("TRIPWAY_TOKEN_TTL", time.Hour),
		Environment:      getEnvOrDefault("APP_ENV", "development"),
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: getEnvAsBool("OTEL_ENABLED", false),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvAsBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}
