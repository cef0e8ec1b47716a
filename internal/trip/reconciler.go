// Package trip overlays resolved place identifiers and favorite status
// onto a freshly fetched itinerary.
package trip

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tripway/tripway/internal/places"
	"github.com/tripway/tripway/internal/routes"
)

// DefaultConcurrency bounds the place-name resolution fan-out.
const DefaultConcurrency = 4

// PlaceResolver is the slice of the place service the reconciler consumes.
type PlaceResolver interface {
	GetPlaceDetailsByName(ctx context.Context, name string) (*places.PlaceDetail, bool)
	GetFavorites(ctx context.Context) []places.Favorite
}

// Reconciler resolves itinerary place names to durable identifiers and
// flags the user's favorites, so the route screen can show "already
// favorited" without a per-place round trip.
type Reconciler struct {
	resolver    PlaceResolver
	logger      zerolog.Logger
	concurrency int
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	// Resolver is the place service used for name resolution and the
	// favorite set.
	Resolver PlaceResolver

	// Logger for reconciliation progress.
	Logger zerolog.Logger

	// Concurrency bounds the in-flight resolutions (default:
	// DefaultConcurrency).
	Concurrency int
}

// NewReconciler creates a reconciler.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Reconciler{
		resolver:    cfg.Resolver,
		logger:      cfg.Logger,
		concurrency: concurrency,
	}
}

// Reconcile augments the route in place. Each distinct stop name is
// resolved concurrently with settle-all discipline: a failed resolution
// leaves that stop without a place id and favorite capability, nothing
// more. The favorite set is fetched once after resolution and overlaid.
// Name, description, activity and time are never modified.
//
// The fan-out is bound to ctx: cancelling it stops outstanding work and
// Reconcile returns the context error. That is the only error it returns.
func (r *Reconciler) Reconcile(ctx context.Context, route *routes.TravelRoute) error {
	names := route.StopNames()
	if len(names) == 0 {
		return ctx.Err()
	}

	resolved := make(map[string]string, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, name := range names {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			detail, ok := r.resolver.GetPlaceDetailsByName(gctx, name)
			if !ok {
				// Best-effort: the stop simply stays unresolved.
				r.logger.Debug().Str("place_name", name).Msg("itinerary place not resolved")
				return nil
			}
			mu.Lock()
			resolved[name] = detail.PlaceID
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// One favorites fetch covers every resolved stop; favorite state is
	// always re-derived from the server, never trusted from a prior run.
	favoriteSet := make(map[string]struct{})
	for _, fav := range r.resolver.GetFavorites(ctx) {
		favoriteSet[fav.PlaceID] = struct{}{}
	}

	flagged := 0
	for di := range route.Days {
		for si := range route.Days[di].Stops {
			stop := &route.Days[di].Stops[si]
			placeID, ok := resolved[stop.Name]
			if !ok {
				continue
			}
			stop.PlaceID = placeID
			if _, fav := favoriteSet[placeID]; fav {
				stop.Favorite = true
				flagged++
			}
		}
	}

	r.logger.Info().
		Int("stops", len(names)).
		Int("resolved", len(resolved)).
		Int("favorited", flagged).
		Msg("itinerary reconciled")

	return ctx.Err()
}
