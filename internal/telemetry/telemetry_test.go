package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripway/tripway/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "tripway-test",
		ServiceVersion: "0.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_Zero(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestTracerAndMeter_Global(t *testing.T) {
	assert.NotNil(t, telemetry.Tracer("tripway-component"))
	assert.NotNil(t, telemetry.Meter("tripway-component"))
}
