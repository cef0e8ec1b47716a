// Package resilience wraps outbound HTTP calls to the trip backend with a
// circuit breaker and, where a caller opts in, exponential-backoff retries.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the backend's circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the backend for breaker naming and health reporting.
	Name string

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first try.
	// Zero means no retries: the sync layer makes a single attempt and
	// degrades, leaving retries to the user.
	MaxRetries uint64

	// InitialInterval is the first retry backoff interval (default: 200ms).
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff interval (default: 5s).
	MaxInterval time.Duration

	// Breaker overrides the circuit breaker settings.
	// If nil, DefaultBreakerConfig(Name) is used.
	Breaker *BreakerConfig

	// Logger for breaker transitions and retry diagnostics.
	Logger zerolog.Logger
}

// Client is an HTTP client with circuit breaker and optional retry logic.
// It satisfies the HTTPDoer interface the backend clients consume.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
	logger     zerolog.Logger
}

// NewClient creates a resilient HTTP client and registers it with the
// default health registry under cfg.Name.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	breakerCfg := cfg.Breaker
	if breakerCfg == nil {
		def := DefaultBreakerConfig(cfg.Name)
		breakerCfg = &def
	}
	if breakerCfg.OnStateChange == nil {
		logger := cfg.Logger
		breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("backend", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		}
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    NewBreaker[*http.Response](*breakerCfg),
		config:     cfg,
		logger:     cfg.Logger,
	}
	DefaultRegistry.Register(cfg.Name, c)
	return c
}

// Do executes an HTTP request through the circuit breaker, retrying on
// transient failures when the client was configured with retries.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var lastResp *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			// 5xx counts as a failure so the breaker sees backend trouble.
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				DefaultRegistry.RecordFailure(c.config.Name, ErrCircuitOpen)
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			DefaultRegistry.RecordFailure(c.config.Name, err)
			return err
		}

		lastResp = resp
		DefaultRegistry.RecordSuccess(c.config.Name)
		return nil
	}

	err := backoff.Retry(attempt, c.newBackOff(ctx))
	if err != nil {
		// A 5xx that exhausted its attempts is still a response; hand it
		// to the caller so the status and body can be logged.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	if c.config.MaxRetries == 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts returns the current circuit breaker counts.
func (c *Client) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}

// ServerError represents an HTTP 5xx response from the backend.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}
