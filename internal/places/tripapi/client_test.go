package tripapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripway/tripway/internal/places"
	"github.com/tripway/tripway/internal/places/tripapi"
)

func newClient(baseURL string) *tripapi.Client {
	return tripapi.NewClient(tripapi.ClientConfig{
		BaseURL:    baseURL,
		APIKey:     "test-api-key",
		HTTPClient: http.DefaultClient,
	})
}

func TestClient_SearchPlace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places/search", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Gyeongbokgung", body["placeName"])
		assert.Equal(t, "test-api-key", body["apiKey"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"placeId": "pid-123",
			"name":    "Gyeongbokgung Palace",
			"address": "161 Sajik-ro, Jongno-gu, Seoul",
		})
	}))
	defer server.Close()

	summary, err := newClient(server.URL).SearchPlace(context.Background(), "Gyeongbokgung")
	require.NoError(t, err)
	assert.Equal(t, "pid-123", summary.PlaceID)
	assert.Equal(t, "Gyeongbokgung Palace", summary.Name)
	assert.Equal(t, "161 Sajik-ro, Jongno-gu, Seoul", summary.Address)
}

func TestClient_SearchPlace_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer server.Close()

	_, err := newClient(server.URL).SearchPlace(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, places.ErrNotFound)
}

func TestClient_SearchPlace_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(server.URL).SearchPlace(context.Background(), "Gyeongbokgung")

	var apiErr *places.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestClient_SearchPlace_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newClient(server.URL).SearchPlace(ctx, "Gyeongbokgung")
	assert.Error(t, err)
}

func TestClient_PlaceDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/pid-123/details", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"place_id":       "pid-123",
			"name":           "Gyeongbokgung Palace",
			"address":        "161 Sajik-ro",
			"opening_hours":  "09:00-18:00",
			"closed_days":    "Tuesday",
			"latitude":       37.5796,
			"longitude":      126.977,
			"average_rating": 4.5,
			"reviews": []map[string]any{
				{"id": "r1", "place_id": "pid-123", "rating": 5, "source": "google"},
			},
			"activities": []map[string]any{
				{"id": 1, "place_id": "pid-123", "activity_type": "walk", "description": "Palace walk", "recommended_time": "morning"},
			},
		})
	}))
	defer server.Close()

	detail, err := newClient(server.URL).PlaceDetails(context.Background(), "pid-123")
	require.NoError(t, err)
	assert.Equal(t, "pid-123", detail.PlaceID)
	assert.Equal(t, "Gyeongbokgung Palace", detail.Name)
	assert.Equal(t, "Tuesday", detail.ClosedDays)
	assert.InDelta(t, 4.5, detail.AverageRating, 1e-9)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, places.SourceGoogle, detail.Reviews[0].Source)
	require.Len(t, detail.Activities, 1)
	assert.Equal(t, "walk", detail.Activities[0].ActivityType)
}

func TestClient_SyncReviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/sync-reviews", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pid-123", body["placeId"])
		assert.Equal(t, "Gyeongbokgung Palace", body["placeName"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"reviews": []map[string]any{
				{"id": "r1", "rating": 4, "source": "google"},
				{"id": "r2", "rating": 5, "source": "google"},
			},
		})
	}))
	defer server.Close()

	reviews, err := newClient(server.URL).SyncReviews(context.Background(), "pid-123", "Gyeongbokgung Palace")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestClient_Reviews_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reviews/pid-123", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"reviews": []map[string]any{{"id": "r21", "rating": 3, "source": "user"}},
		})
	}))
	defer server.Close()

	reviews, err := newClient(server.URL).Reviews(context.Background(), "pid-123", 10, 20)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "r21", reviews[0].ID)
}

func TestClient_AddReview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reviews", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pid-123", body["placeId"])
		assert.Equal(t, float64(5), body["rating"])

		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	err := newClient(server.URL).AddReview(context.Background(), "pid-123", "Gyeongbokgung", "Traveler", 5, "Great")
	assert.NoError(t, err)
}

func TestClient_FavoriteLifecycle(t *testing.T) {
	var sawAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = append(sawAuth, r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/places/favorites":
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		case r.Method == http.MethodGet && r.URL.Path == "/places/favorites/pid-123":
			json.NewEncoder(w).Encode(map[string]any{"isFavorite": true})
		case r.Method == http.MethodGet && r.URL.Path == "/places/favorites":
			json.NewEncoder(w).Encode(map[string]any{
				"success":   true,
				"favorites": []map[string]any{{"place_id": "pid-123", "name": "Gyeongbokgung"}},
			})
		case r.Method == http.MethodDelete && r.URL.Path == "/places/favorites":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pid-123", body["place_id"])
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newClient(server.URL)
	ctx := context.Background()

	require.NoError(t, client.AddFavorite(ctx, "tok", "pid-123"))

	favorited, err := client.FavoriteStatus(ctx, "tok", "pid-123")
	require.NoError(t, err)
	assert.True(t, favorited)

	favorites, err := client.Favorites(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "pid-123", favorites[0].PlaceID)

	require.NoError(t, client.RemoveFavorite(ctx, "tok", "pid-123"))

	for _, auth := range sawAuth {
		assert.Equal(t, "Bearer tok", auth)
	}
}
