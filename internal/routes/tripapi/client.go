// Package tripapi provides the typed HTTP client for the trip backend's
// route recommendation endpoint.
package tripapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripway/tripway/internal/provider/resilience"
	"github.com/tripway/tripway/internal/routes"
)

const (
	// BackendName identifies this backend in health reporting.
	BackendName = "tripapi-routes"

	// DefaultTimeout bounds the recommendation request. The backend
	// generates itineraries, so this is far looser than the place client.
	DefaultTimeout = 30 * time.Second
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the route client.
type ClientConfig struct {
	// BaseURL is the backend base address (required).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient client
	// with no automatic retries is created; retries are user-initiated.
	HTTPClient HTTPDoer

	// Timeout for the recommendation request (default: DefaultTimeout).
	Timeout time.Duration

	// Logger for transport construction.
	Logger zerolog.Logger
}

// Client requests recommended itineraries from the trip backend.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a route client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:    BackendName,
			Timeout: timeout,
			Logger:  cfg.Logger,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

type recommendationResponse struct {
	Success bool `json:"success"`
	routes.Recommendation
}

// RequestRoute submits trip parameters and returns the recommended
// itinerary. Every failure mode wraps ErrRouteRequest so the caller can
// detect it with errors.Is and offer a retry.
func (c *Client) RequestRoute(ctx context.Context, req routes.RouteRequest) (*routes.Recommendation, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", routes.ErrRouteRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/recommend-route/travel-route", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", routes.ErrRouteRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", routes.ErrRouteRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: backend responded %d", routes.ErrRouteRequest, resp.StatusCode)
	}

	var result recommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", routes.ErrRouteRequest, err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: backend reported failure", routes.ErrRouteRequest)
	}

	rec := result.Recommendation
	return &rec, nil
}
