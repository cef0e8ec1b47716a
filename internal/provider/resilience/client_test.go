package resilience_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripway/tripway/internal/provider/resilience"
)

func TestClient_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.ClientConfig{
		Name:   "test-no-retry",
		Logger: zerolog.Nop(),
	})

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// No automatic retry: the 5xx is handed back after one attempt.
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.ClientConfig{
		Name:            "test-retry",
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Logger:          zerolog.Nop(),
	})

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.ClientConfig{
		Name:            "test-4xx",
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		Logger:          zerolog.Nop(),
	})

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_BreakerOpensOnRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := resilience.DefaultBreakerConfig("test-breaker")
	breaker.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.TotalFailures >= 3
	}

	client := resilience.NewClient(resilience.ClientConfig{
		Name:    "test-breaker",
		Breaker: &breaker,
		Logger:  zerolog.Nop(),
	})

	for range 3 {
		req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
		require.NoError(t, err)
		if resp, doErr := client.Do(req); doErr == nil {
			resp.Body.Close()
		}
	}

	require.Equal(t, gobreaker.StateOpen, client.BreakerState())

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	_, err = client.Do(req)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestRegistry_Health(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.ClientConfig{
		Name:   "tracked",
		Logger: zerolog.Nop(),
	})
	registry.Register("tracked", client)
	registry.RecordSuccess("tracked")
	registry.RecordFailure("tracked", assert.AnError)

	health := registry.Health()
	require.Len(t, health, 1)
	assert.Equal(t, "tracked", health[0].Name)
	assert.NotNil(t, health[0].LastSuccessAt)
	assert.NotNil(t, health[0].LastFailureAt)
	assert.Equal(t, assert.AnError.Error(), health[0].LastError)
	assert.True(t, health[0].Healthy())
}
