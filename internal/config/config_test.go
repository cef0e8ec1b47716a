package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"TRIPWAY_BACKEND_URL", "TRIPWAY_API_KEY", "TRIPWAY_REQUEST_TIMEOUT",
		"TRIPWAY_ROUTE_TIMEOUT", "TRIPWAY_PARAMS_PATH", "JWT_SIGNING_KEY",
		"TRIPWAY_TOKEN_TTL", "APP_ENV", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "http://localhost:8080", cfg.BackendBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.RouteTimeout)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.TelemetryEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TRIPWAY_BACKEND_URL", "https://api.tripway.example")
	t.Setenv("TRIPWAY_REQUEST_TIMEOUT", "2s")
	t.Setenv("TRIPWAY_ROUTE_TIMEOUT", "1m")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("APP_ENV", "production")

	cfg := FromEnv()

	assert.Equal(t, "https://api.tripway.example", cfg.BackendBaseURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.RouteTimeout)
	assert.True(t, cfg.TelemetryEnabled)
	assert.Equal(t, "production", cfg.Environment)
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("TRIPWAY_REQUEST_TIMEOUT", "soon")
	t.Setenv("OTEL_ENABLED", "maybe")

	cfg := FromEnv()

	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.TelemetryEnabled)
}
