// Package backendtest provides an in-memory implementation of the trip
// backend's HTTP surface for tests and local development.
package backendtest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripway/tripway/internal/places"
	"github.com/tripway/tripway/internal/routes"
)

// TokenValidator maps a bearer token to a user id. Returning an error
// rejects the request with 401.
type TokenValidator func(token string) (string, error)

// Config holds configuration for the fake backend.
type Config struct {
	// ValidateToken maps bearer tokens to user ids. If nil, the token
	// string itself is used as the user id.
	ValidateToken TokenValidator

	// RateLimit enables an httprate request limit per minute when > 0.
	RateLimit int

	// Logger for request logging.
	Logger zerolog.Logger
}

// Server is the seedable fake backend. All state is in memory.
type Server struct {
	validate  TokenValidator
	rateLimit int
	logger    zerolog.Logger

	mu             sync.Mutex
	placesByID     map[string]*places.PlaceDetail
	idByName       map[string]string
	reviewsByPlace map[string][]places.Review
	favorites      map[string]map[string]time.Time // user id → place id → created
	recommendation *routes.Recommendation
	requests       map[string]int
}

// New creates a fake backend.
func New(cfg Config) *Server {
	validate := cfg.ValidateToken
	if validate == nil {
		validate = func(token string) (string, error) { return token, nil }
	}
	return &Server{
		validate:       validate,
		rateLimit:      cfg.RateLimit,
		logger:         cfg.Logger,
		placesByID:     make(map[string]*places.PlaceDetail),
		idByName:       make(map[string]string),
		reviewsByPlace: make(map[string][]places.Review),
		favorites:      make(map[string]map[string]time.Time),
		requests:       make(map[string]int),
	}
}

// SeedPlace registers a place so searches by its name resolve.
func (s *Server) SeedPlace(detail places.PlaceDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := detail
	s.placesByID[d.PlaceID] = &d
	s.idByName[strings.ToLower(d.Name)] = d.PlaceID
}

// SeedExternalReviews sets the reviews that a sync-reviews call imports.
func (s *Server) SeedExternalReviews(placeID string, reviews []places.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviewsByPlace[placeID] = append([]places.Review(nil), reviews...)
}

// SeedRecommendation sets the itinerary returned by the route endpoint.
func (s *Server) SeedRecommendation(rec routes.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendation = &rec
}

// Requests returns how many times the named endpoint was hit.
func (s *Server) Requests(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[endpoint]
}

// Handler builds the chi router for the fake backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	if s.rateLimit > 0 {
		r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}
	r.Use(s.countRequests)

	r.Post("/places/search", s.handleSearch)
	r.Get("/places/{placeID}/details", s.handleDetails)
	r.Post("/places/sync-reviews", s.handleSyncReviews)
	r.Get("/reviews/{placeID}", s.handleListReviews)
	r.Post("/reviews", s.handleAddReview)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Post("/places/favorites", s.handleAddFavorite)
		r.Delete("/places/favorites", s.handleRemoveFavorite)
		r.Get("/places/favorites/{placeID}", s.handleFavoriteStatus)
		r.Get("/places/favorites", s.handleListFavorites)
	})

	r.Post("/recommend-route/travel-route", s.handleRecommendRoute)

	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type userIDKey struct{}

func contextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func userIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
			return
		}
		userID, err := s.validate(token)
		if err != nil {
			s.logger.Debug().Err(err).Msg("rejected bearer token")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
			return
		}
		ctx := contextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaceName string `json:"placeName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.idByName[strings.ToLower(req.PlaceName)]
	if !ok {
		// Fall back to substring matching, the way a real place search
		// tolerates partial names.
		for name, placeID := range s.idByName {
			if strings.Contains(name, strings.ToLower(req.PlaceName)) {
				id, ok = placeID, true
				break
			}
		}
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}

	place := s.placesByID[id]
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"placeId": place.PlaceID,
		"name":    place.Name,
		"address": place.Address,
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")

	s.mu.Lock()
	defer s.mu.Unlock()

	place, ok := s.placesByID[placeID]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}

	detail := *place
	detail.Reviews = append([]places.Review(nil), s.reviewsByPlace[placeID]...)
	if len(detail.Reviews) > 0 {
		sum := 0
		for _, rev := range detail.Reviews {
			sum += rev.Rating
		}
		detail.AverageRating = float64(sum) / float64(len(detail.Reviews))
	}

	payload := map[string]any{"success": true}
	raw, _ := json.Marshal(detail)
	_ = json.Unmarshal(raw, &payload)
	payload["success"] = true
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSyncReviews(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaceID string `json:"placeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Already-imported reviews stay put; syncing is idempotent here.
	reviews := s.reviewsByPlace[req.PlaceID]
	if reviews == nil {
		reviews = []places.Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reviews": reviews})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.reviewsByPlace[placeID]
	page := []places.Review{}
	for i := offset; i < len(all) && i < offset+limit; i++ {
		page = append(page, all[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reviews": page})
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaceID   string `json:"placeId"`
		PlaceName string `json:"placeName"`
		UserName  string `json:"userName"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaceID == "" || req.Rating < 1 || req.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	review := places.Review{
		ID:         uuid.NewString(),
		PlaceID:    req.PlaceID,
		PlaceName:  req.PlaceName,
		UserName:   req.UserName,
		Rating:     req.Rating,
		Comment:    req.Comment,
		ReviewDate: time.Now().Format("2006-01-02"),
		Source:     places.SourceUser,
	}

	s.mu.Lock()
	s.reviewsByPlace[req.PlaceID] = append([]places.Review{review}, s.reviewsByPlace[req.PlaceID]...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var req struct {
		PlaceID string `json:"place_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	s.mu.Lock()
	if s.favorites[userID] == nil {
		s.favorites[userID] = make(map[string]time.Time)
	}
	if _, dup := s.favorites[userID][req.PlaceID]; !dup {
		s.favorites[userID][req.PlaceID] = time.Now()
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var req struct {
		PlaceID string `json:"place_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	s.mu.Lock()
	delete(s.favorites[userID], req.PlaceID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleFavoriteStatus(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	placeID := chi.URLParam(r, "placeID")

	s.mu.Lock()
	_, favorited := s.favorites[userID][placeID]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"isFavorite": favorited})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	s.mu.Lock()
	list := make([]places.Favorite, 0, len(s.favorites[userID]))
	for placeID, created := range s.favorites[userID] {
		fav := places.Favorite{PlaceID: placeID, CreatedAt: created.Format(time.RFC3339)}
		if place, ok := s.placesByID[placeID]; ok {
			fav.Name = place.Name
			fav.Address = place.Address
		}
		list = append(list, fav)
	}
	s.mu.Unlock()

	// Most recent first, matching the real backend's typical ordering.
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt > list[j].CreatedAt })

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "favorites": list})
}

func (s *Server) handleRecommendRoute(w http.ResponseWriter, r *http.Request) {
	var req routes.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	s.mu.Lock()
	rec := s.recommendation
	s.mu.Unlock()

	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}

	response := *rec
	if req.StartLocation != "" {
		response.StartLocation = req.StartLocation
	}
	if req.EndLocation != "" {
		response.EndLocation = req.EndLocation
	}
	response.Preferences = routes.Preferences{
		LeisureType:    req.LeisureType,
		ExperienceType: req.ExperienceType,
	}

	payload := map[string]any{"success": true}
	raw, _ := json.Marshal(response)
	_ = json.Unmarshal(raw, &payload)
	payload["success"] = true
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}
