// Package tripapi provides the typed HTTP client for the trip backend's
// place, review and favorite endpoints.
package tripapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripway/tripway/internal/places"
	"github.com/tripway/tripway/internal/provider/resilience"
)

const (
	// BackendName identifies this backend in health reporting.
	BackendName = "tripapi-places"

	// DefaultTimeout bounds individual place/review/favorite requests.
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response body is kept for
	// diagnostics.
	maxErrorBody = 2048
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the places client.
type ClientConfig struct {
	// BaseURL is the backend base address (required; not hard-coded).
	BaseURL string

	// APIKey is forwarded on search and review-sync requests so the
	// backend can query the external place source.
	APIKey string

	// HTTPClient is the HTTP client to use. If nil, a resilient client
	// with no automatic retries is created.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: DefaultTimeout).
	Timeout time.Duration

	// Logger for transport construction.
	Logger zerolog.Logger
}

// Client is the raw trip-backend client. It returns errors; the degrading
// presentation of those errors lives in places.Service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// NewClient creates a places client.
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
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Backend response envelopes.

type searchResponse struct {
	Success bool   `json:"success"`
	PlaceID string `json:"placeId"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type detailResponse struct {
	Success bool `json:"success"`
	places.PlaceDetail
}

type reviewsResponse struct {
	Success bool            `json:"success"`
	Reviews []places.Review `json:"reviews"`
}

type favoritesResponse struct {
	Success   bool              `json:"success"`
	Favorites []places.Favorite `json:"favorites"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type favoriteStatusResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

// SearchPlace resolves a place name to its durable identifier.
// Returns ErrNotFound when the backend has no match.
func (c *Client) SearchPlace(ctx context.Context, name string) (*places.PlaceSummary, error) {
	body := map[string]string{"placeName": name, "apiKey": c.apiKey}

	var result searchResponse
	if err := c.post(ctx, "/places/search", "", body, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, places.ErrNotFound
	}

	return &places.PlaceSummary{
		PlaceID: result.PlaceID,
		Name:    result.Name,
		Address: result.Address,
	}, nil
}

// PlaceDetails fetches the full record for a resolved place id.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*places.PlaceDetail, error) {
	var result detailResponse
	if err := c.get(ctx, "/places/"+placeID+"/details", "", &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, places.ErrNotFound
	}

	detail := result.PlaceDetail
	if detail.PlaceID == "" {
		detail.PlaceID = placeID
	}
	return &detail, nil
}

// SyncReviews asks the backend to pull reviews from the external source
// and persist them, returning the resulting set. Safe to call repeatedly.
func (c *Client) SyncReviews(ctx context.Context, placeID, placeName string) ([]places.Review, error) {
	body := map[string]string{"placeId": placeID, "placeName": placeName, "apiKey": c.apiKey}

	var result reviewsResponse
	if err := c.post(ctx, "/places/sync-reviews", "", body, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, places.ErrRejected
	}
	return result.Reviews, nil
}

// Reviews fetches one page of reviews. The caller tracks the offset; the
// client keeps no cursor state.
func (c *Client) Reviews(ctx context.Context, placeID string, limit, offset int) ([]places.Review, error) {
	path := fmt.Sprintf("/reviews/%s?limit=%d&offset=%d", placeID, limit, offset)

	var result reviewsResponse
	if err := c.get(ctx, path, "", &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, places.ErrRejected
	}
	return result.Reviews, nil
}

// AddReview submits a user review. The created review is not returned;
// callers synthesize a local one for immediate display.
func (c *Client) AddReview(ctx context.Context, placeID, placeName, userName string, rating int, comment string) error {
	body := map[string]any{
		"placeId":   placeID,
		"placeName": placeName,
		"userName":  userName,
		"rating":    rating,
		"comment":   comment,
	}

	var result successResponse
	if err := c.post(ctx, "/reviews", "", body, &result); err != nil {
		return err
	}
	if !result.Success {
		return places.ErrRejected
	}
	return nil
}

// AddFavorite bookmarks a place for the bearer's user. The server is the
// sole arbiter of duplicate prevention.
func (c *Client) AddFavorite(ctx context.Context, token, placeID string) error {
	var result successResponse
	if err := c.post(ctx, "/places/favorites", token, map[string]string{"place_id": placeID}, &result); err != nil {
		return err
	}
	if !result.Success {
		return places.ErrRejected
	}
	return nil
}

// RemoveFavorite deletes a bookmark for the bearer's user.
func (c *Client) RemoveFavorite(ctx context.Context, token, placeID string) error {
	body, err := json.Marshal(map[string]string{"place_id": placeID})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/places/favorites", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var result successResponse
	if err := c.do(req, &result); err != nil {
		return err
	}
	if !result.Success {
		return places.ErrRejected
	}
	return nil
}

// FavoriteStatus reports whether the bearer's user has favorited the place.
func (c *Client) FavoriteStatus(ctx context.Context, token, placeID string) (bool, error) {
	var result favoriteStatusResponse
	if err := c.get(ctx, "/places/favorites/"+placeID, token, &result); err != nil {
		return false, err
	}
	return result.IsFavorite, nil
}

// Favorites lists the bearer's favorites in server order (typically recency).
func (c *Client) Favorites(ctx context.Context, token string) ([]places.Favorite, error) {
	var result favoritesResponse
	if err := c.get(ctx, "/places/favorites", token, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, places.ErrRejected
	}
	return result.Favorites, nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &places.APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
