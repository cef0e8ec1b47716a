package places

import (
	"context"
	"errors"
	"net"

	"github.com/rs/zerolog"
)

// Backend is the raw client surface the service degrades over.
type Backend interface {
	SearchPlace(ctx context.Context, name string) (*PlaceSummary, error)
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error)
	SyncReviews(ctx context.Context, placeID, placeName string) ([]Review, error)
	Reviews(ctx context.Context, placeID string, limit, offset int) ([]Review, error)
	AddReview(ctx context.Context, placeID, placeName, userName string, rating int, comment string) error
	AddFavorite(ctx context.Context, token, placeID string) error
	RemoveFavorite(ctx context.Context, token, placeID string) error
	FavoriteStatus(ctx context.Context, token, placeID string) (bool, error)
	Favorites(ctx context.Context, token string) ([]Favorite, error)
}

// TokenSource mints bearer credentials for authenticated calls. The session
// provider satisfies it; tests inject fakes.
type TokenSource interface {
	MintCredential(ctx context.Context, forceRefresh bool) (string, error)
}

// Service translates UI intents into backend calls and collapses every
// transport or server failure into the operation's empty sentinel (absent,
// empty slice, or false). Place data is supplementary: a screen should
// render "no reviews" rather than crash, so nothing here raises. Failure
// detail goes to the log only.
type Service struct {
	backend Backend
	tokens  TokenSource
	logger  zerolog.Logger
}

// ServiceConfig holds configuration for the place service.
type ServiceConfig struct {
	// Backend is the raw trip-backend client.
	Backend Backend

	// Tokens mints bearer credentials for favorite operations.
	Tokens TokenSource

	// Logger for failure diagnostics.
	Logger zerolog.Logger
}

// NewService creates a place service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		backend: cfg.Backend,
		tokens:  cfg.Tokens,
		logger:  cfg.Logger,
	}
}

// SearchPlaceByName resolves a name to a place summary. A timeout is
// reported the same as no match: callers see absent either way.
func (s *Service) SearchPlaceByName(ctx context.Context, name string) (*PlaceSummary, bool) {
	summary, err := s.backend.SearchPlace(ctx, name)
	if err != nil {
		s.logFailure("search place", err, zerolog.Dict().Str("place_name", name))
		return nil, false
	}
	return summary, true
}

// GetPlaceDetails fetches the full place record, absent on any failure.
func (s *Service) GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, bool) {
	detail, err := s.backend.PlaceDetails(ctx, placeID)
	if err != nil {
		s.logFailure("get place details", err, zerolog.Dict().Str("place_id", placeID))
		return nil, false
	}
	return detail, true
}

// GetPlaceDetailsByName is the composite resolution path: search by name,
// sync reviews for the resolved id as a side effect, then fetch details.
// A failed search short-circuits to absent without the follow-up calls.
// There is no caching; every call re-runs all three round trips.
func (s *Service) GetPlaceDetailsByName(ctx context.Context, name string) (*PlaceDetail, bool) {
	summary, ok := s.SearchPlaceByName(ctx, name)
	if !ok {
		return nil, false
	}

	s.SyncPlaceReviews(ctx, summary.PlaceID, summary.Name)

	return s.GetPlaceDetails(ctx, summary.PlaceID)
}

// SyncPlaceReviews pulls external reviews into the backend and returns the
// resulting set, empty on any failure. Empty is not an error to callers.
func (s *Service) SyncPlaceReviews(ctx context.Context, placeID, placeName string) []Review {
	reviews, err := s.backend.SyncReviews(ctx, placeID, placeName)
	if err != nil {
		s.logFailure("sync reviews", err, zerolog.Dict().Str("place_id", placeID))
		return []Review{}
	}
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews
}

// GetReviewsByPlaceID returns one page of reviews. An empty page on failure
// is indistinguishable from "no more reviews"; pagination termination
// depends on that conflation, so it is preserved.
func (s *Service) GetReviewsByPlaceID(ctx context.Context, placeID string, limit, offset int) []Review {
	reviews, err := s.backend.Reviews(ctx, placeID, limit, offset)
	if err != nil {
		s.logFailure("get reviews", err, zerolog.Dict().
			Str("place_id", placeID).
			Int("limit", limit).
			Int("offset", offset))
		return []Review{}
	}
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews
}

// AddUserReview submits a review and reports success only. The caller
// synthesizes the local review (NewLocalReview) for immediate display.
func (s *Service) AddUserReview(ctx context.Context, placeID, placeName, userName string, rating int, comment string) bool {
	if err := s.backend.AddReview(ctx, placeID, placeName, userName, rating, comment); err != nil {
		s.logFailure("add review", err, zerolog.Dict().Str("place_id", placeID))
		return false
	}
	return true
}

// AddToFavorites bookmarks a place. Without a mintable credential it
// returns false and issues no network request.
func (s *Service) AddToFavorites(ctx context.Context, placeID string) bool {
	token, ok := s.mintToken(ctx, "add favorite")
	if !ok {
		return false
	}

	if err := s.backend.AddFavorite(ctx, token, placeID); err != nil {
		s.logFailure("add favorite", err, zerolog.Dict().Str("place_id", placeID))
		return false
	}
	return true
}

// RemoveFromFavorites deletes a bookmark, with the same credential gating
// as AddToFavorites.
func (s *Service) RemoveFromFavorites(ctx context.Context, placeID string) bool {
	token, ok := s.mintToken(ctx, "remove favorite")
	if !ok {
		return false
	}

	if err := s.backend.RemoveFavorite(ctx, token, placeID); err != nil {
		s.logFailure("remove favorite", err, zerolog.Dict().Str("place_id", placeID))
		return false
	}
	return true
}

// CheckFavoriteStatus reports whether the place is favorited. False covers
// both "not favorited" and "check failed": the UI only needs a binary
// render decision.
func (s *Service) CheckFavoriteStatus(ctx context.Context, placeID string) bool {
	token, ok := s.mintToken(ctx, "check favorite")
	if !ok {
		return false
	}

	favorited, err := s.backend.FavoriteStatus(ctx, token, placeID)
	if err != nil {
		s.logFailure("check favorite", err, zerolog.Dict().Str("place_id", placeID))
		return false
	}
	return favorited
}

// GetFavorites lists the user's favorites in server order. No session and
// fetch failure both yield an empty list.
func (s *Service) GetFavorites(ctx context.Context) []Favorite {
	token, ok := s.mintToken(ctx, "list favorites")
	if !ok {
		return []Favorite{}
	}

	favorites, err := s.backend.Favorites(ctx, token)
	if err != nil {
		s.logFailure("list favorites", err, zerolog.Dict())
		return []Favorite{}
	}
	if favorites == nil {
		favorites = []Favorite{}
	}
	return favorites
}

// mintToken force-refreshes a bearer credential. A missing session means
// "operation requires login", logged at debug since it is an expected state.
func (s *Service) mintToken(ctx context.Context, op string) (string, bool) {
	token, err := s.tokens.MintCredential(ctx, true)
	if err != nil {
		s.logger.Debug().Err(err).Str("op", op).Msg("no bearer credential")
		return "", false
	}
	return token, true
}

// logFailure records why an operation degraded, classifying the failure for
// operator diagnosis. The classification never changes caller-visible
// behavior.
func (s *Service) logFailure(op string, err error, fields *zerolog.Event) {
	s.logger.Warn().
		Str("op", op).
		Str("failure_class", classifyFailure(err)).
		Dict("detail", fields).
		Err(err).
		Msg("place operation degraded")
}

func classifyFailure(err error) string {
	var apiErr *APIError
	var netErr net.Error

	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &apiErr):
		return "server_error"
	case errors.Is(err, ErrRejected):
		return "rejected"
	default:
		return "no_response"
	}
}
