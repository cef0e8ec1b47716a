// Package main provides the travelctl command line client for the trip
// backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripway/tripway/internal/backendtest"
	"github.com/tripway/tripway/internal/config"
	"github.com/tripway/tripway/internal/places"
	placesapi "github.com/tripway/tripway/internal/places/tripapi"
	"github.com/tripway/tripway/internal/provider/resilience"
	"github.com/tripway/tripway/internal/routes"
	routesapi "github.com/tripway/tripway/internal/routes/tripapi"
	"github.com/tripway/tripway/internal/session"
	"github.com/tripway/tripway/internal/telemetry"
	"github.com/tripway/tripway/internal/trip"
	"github.com/tripway/tripway/internal/tripparams"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `usage: travelctl [flags] <command> [args]

commands:
  params show                 print the stored trip parameters
  params set <field> <value>  update one parameter (startLocation, endLocation,
                              leisureType, experienceType, travelDays)
  params clear                drop the stored parameters
  place <name>                look up a place with its reviews
  reviews <name>              page through a place's reviews
  favorites list              list the signed-in user's favorites
  favorites add <name>        favorite a place by name
  favorites remove <name>     unfavorite a place by name
  plan                        request and reconcile an itinerary
  signout                     sign out and clear stored parameters
  health                      report backend circuit health
  serve-fake                  run the in-memory fake backend

flags:
`

type app struct {
	cfg      config.Config
	log      zerolog.Logger
	store    tripparams.Store
	sessions *session.Provider
	service  *places.Service
	routes   *routesapi.Client
}

func main() {
	const serviceName = "travelctl"

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	flags := flag.NewFlagSet("travelctl", flag.ExitOnError)
	email := flags.String("email", "", "account email for authenticated commands")
	password := flags.String("password", "", "account password")
	displayName := flags.String("name", "", "display name used on sign-up and reviews")
	limit := flags.Int("limit", 10, "review page size")
	offset := flags.Int("offset", 0, "review page offset")
	addr := flags.String("addr", ":8080", "listen address for serve-fake")
	rate := flags.Int("rate", 0, "serve-fake requests per minute per IP, 0 disables")
	verbose := flags.Bool("v", false, "debug logging")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	store := tripparams.NewFileStore(tripparams.FileStoreConfig{
		Path:   cfg.ParamsPath,
		Logger: log,
	})

	sessions := session.NewProvider(session.ProviderConfig{
		SigningKey: cfg.JWTSigningKey,
		Issuer:     serviceName,
		TokenTTL:   cfg.TokenTTL,
		Logger:     log,
	})

	placeClient := placesapi.NewClient(placesapi.ClientConfig{
		BaseURL: cfg.BackendBaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	})
	service := places.NewService(places.ServiceConfig{
		Backend: placeClient,
		Tokens:  sessions,
		Logger:  log,
	})

	routeClient := routesapi.NewClient(routesapi.ClientConfig{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.RouteTimeout,
		Logger:  log,
	})

	a := &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		sessions: sessions,
		service:  service,
		routes:   routeClient,
	}

	// Authenticated commands sign in up front so token minting has an
	// identity to work with. Accounts live for the process only.
	if *email != "" {
		if err := a.signIn(ctx, *email, *password, *displayName); err != nil {
			log.Fatal().Err(err).Msg("sign-in failed")
		}
	}

	if err := a.run(ctx, args, *limit, *offset, *addr, *rate, *displayName); err != nil {
		log.Fatal().Err(err).Msg(args[0] + " failed")
	}
}

func (a *app) run(ctx context.Context, args []string, limit, offset int, addr string, rate int, displayName string) error {
	switch args[0] {
	case "params":
		return a.runParams(args[1:])
	case "place":
		if len(args) < 2 {
			return errors.New("place requires a name")
		}
		return a.runPlace(ctx, args[1])
	case "reviews":
		if len(args) < 2 {
			return errors.New("reviews requires a place name")
		}
		return a.runReviews(ctx, args[1], limit, offset)
	case "favorites":
		return a.runFavorites(ctx, args[1:])
	case "plan":
		return a.runPlan(ctx)
	case "signout":
		a.sessions.SignOut()
		a.store.Clear()
		fmt.Println("signed out")
		return nil
	case "health":
		return printJSON(resilience.DefaultRegistry.Health())
	case "serve-fake":
		return a.runServeFake(addr, rate)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) signIn(ctx context.Context, email, password, displayName string) error {
	if _, err := a.sessions.SignIn(ctx, email, password); err == nil {
		return nil
	}
	_, err := a.sessions.SignUp(ctx, email, password, displayName)
	return err
}

func (a *app) runParams(args []string) error {
	if len(args) == 0 {
		return errors.New("params requires show, set or clear")
	}
	switch args[0] {
	case "show":
		params, ok := a.store.Load()
		if !ok {
			fmt.Println("no stored trip parameters")
			return nil
		}
		return printJSON(params)
	case "set":
		if len(args) != 3 {
			return errors.New("params set requires a field and a value")
		}
		field := tripparams.Field(args[1])
		switch field {
		case tripparams.FieldStartLocation, tripparams.FieldEndLocation,
			tripparams.FieldLeisureType, tripparams.FieldExperienceType,
			tripparams.FieldTravelDays:
		default:
			return fmt.Errorf("unknown field %q", args[1])
		}
		a.store.UpdateField(field, args[2])
		return nil
	case "clear":
		a.store.Clear()
		return nil
	default:
		return fmt.Errorf("unknown params subcommand %q", args[0])
	}
}

func (a *app) runPlace(ctx context.Context, name string) error {
	detail, ok := a.service.GetPlaceDetailsByName(ctx, name)
	if !ok {
		fmt.Printf("no place found for %q\n", name)
		return nil
	}
	return printJSON(detail)
}

func (a *app) runReviews(ctx context.Context, name string, limit, offset int) error {
	summary, ok := a.service.SearchPlaceByName(ctx, name)
	if !ok {
		fmt.Printf("no place found for %q\n", name)
		return nil
	}
	reviews := a.service.GetReviewsByPlaceID(ctx, summary.PlaceID, limit, offset)
	return printJSON(reviews)
}

func (a *app) runFavorites(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("favorites requires list, add or remove")
	}
	switch args[0] {
	case "list":
		return printJSON(a.service.GetFavorites(ctx))
	case "add", "remove":
		if len(args) != 2 {
			return fmt.Errorf("favorites %s requires a place name", args[0])
		}
		summary, ok := a.service.SearchPlaceByName(ctx, args[1])
		if !ok {
			fmt.Printf("no place found for %q\n", args[1])
			return nil
		}
		var done bool
		if args[0] == "add" {
			done = a.service.AddToFavorites(ctx, summary.PlaceID)
		} else {
			done = a.service.RemoveFromFavorites(ctx, summary.PlaceID)
		}
		if !done {
			fmt.Println("favorite update did not go through; are you signed in?")
			return nil
		}
		fmt.Printf("%s %s\n", args[0], summary.Name)
		return nil
	default:
		return fmt.Errorf("unknown favorites subcommand %q", args[0])
	}
}

func (a *app) runPlan(ctx context.Context) error {
	params, _ := a.store.Load()
	if !params.ReadyForRoute() {
		return errors.New("set leisureType and experienceType first (travelctl params set)")
	}
	params = params.WithRouteDefaults()
	a.store.Save(params)

	rec, err := a.routes.RequestRoute(ctx, routes.RouteRequest{
		StartLocation:  params.StartLocation,
		EndLocation:    params.EndLocation,
		LeisureType:    params.LeisureType,
		ExperienceType: params.ExperienceType,
		TravelDays:     params.TravelDays,
	})
	if err != nil {
		return err
	}

	reconciler := trip.NewReconciler(trip.ReconcilerConfig{
		Resolver: a.service,
		Logger:   a.log,
	})
	if err := reconciler.Reconcile(ctx, &rec.Route); err != nil {
		return err
	}

	return printJSON(planView(rec))
}

// planView flattens the reconciled route for display, surfacing the
// in-memory place id and favorite flag that the wire form omits.
func planView(rec *routes.Recommendation) any {
	type stopView struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Activity    string `json:"activity,omitempty"`
		Time        string `json:"time,omitempty"`
		PlaceID     string `json:"placeId,omitempty"`
		Favorite    bool   `json:"favorite,omitempty"`
	}
	type dayView struct {
		Day   int        `json:"day"`
		Stops []stopView `json:"stops"`
	}

	days := make([]dayView, 0, len(rec.Route.Days))
	for _, day := range rec.Route.Days {
		dv := dayView{Day: day.Day}
		for _, stop := range day.Stops {
			dv.Stops = append(dv.Stops, stopView{
				Name:        stop.Name,
				Description: stop.Description,
				Activity:    stop.Activity,
				Time:        stop.Time,
				PlaceID:     stop.PlaceID,
				Favorite:    stop.Favorite,
			})
		}
		days = append(days, dv)
	}

	return map[string]any{
		"title":         rec.Route.Title,
		"description":   rec.Route.Description,
		"startLocation": rec.StartLocation,
		"endLocation":   rec.EndLocation,
		"preferences":   rec.Preferences,
		"days":          days,
	}
}

func (a *app) runServeFake(addr string, rate int) error {
	signingKey := a.cfg.JWTSigningKey

	backend := backendtest.New(backendtest.Config{
		ValidateToken: func(token string) (string, error) {
			return session.ParseSubject(token, signingKey)
		},
		RateLimit: rate,
		Logger:    a.log,
	})
	seedFakeBackend(backend)

	server := &http.Server{
		Addr:         addr,
		Handler:      backend.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		a.log.Info().Str("addr", addr).Msg("fake backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Fatal().Err(err).Msg("fake backend error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.log.Info().Msg("shutting down fake backend")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// seedFakeBackend loads a small Korea itinerary so plan and place
// commands work against serve-fake out of the box.
func seedFakeBackend(backend *backendtest.Server) {
	backend.SeedPlace(places.PlaceDetail{
		PlaceID:      "gbg-001",
		Name:         "Gyeongbokgung",
		Description:  "Principal royal palace of the Joseon dynasty",
		Address:      "161 Sajik-ro, Jongno-gu, Seoul",
		OpeningHours: "09:00-18:00",
		ClosedDays:   "Tuesday",
	})
	backend.SeedPlace(places.PlaceDetail{
		PlaceID:     "jhv-001",
		Name:        "Jeonju Hanok Village",
		Description: "Historic village of over 800 hanok houses",
		Address:     "Gyo-dong, Wansan-gu, Jeonju",
	})
	backend.SeedPlace(places.PlaceDetail{
		PlaceID:     "hdb-001",
		Name:        "Haeundae Beach",
		Description: "Busan's best known beach",
		Address:     "Haeundae-gu, Busan",
	})
	backend.SeedExternalReviews("gbg-001", []places.Review{
		{ID: "seed-1", PlaceID: "gbg-001", UserName: "jiho", Rating: 5,
			Comment: "Changing of the guard is worth the wait", ReviewDate: "2025-11-02", Source: places.SourceGoogle},
		{ID: "seed-2", PlaceID: "gbg-001", UserName: "sora", Rating: 4,
			Comment: "Go early, it fills up fast", ReviewDate: "2025-12-18", Source: places.SourceGoogle},
	})
	backend.SeedRecommendation(routes.Recommendation{
		StartLocation: "Seoul",
		EndLocation:   "Busan",
		Route: routes.TravelRoute{
			Title:       "Seoul to Busan, three days",
			Description: "Palaces, hanok and the coast",
			Days: []routes.Day{
				{Day: 1, Stops: []routes.Stop{
					{Name: "Gyeongbokgung", Description: "Joseon palace", Activity: "palace walk", Time: "morning"},
				}},
				{Day: 2, Stops: []routes.Stop{
					{Name: "Jeonju Hanok Village", Description: "Hanok stay and street food", Activity: "food tour", Time: "all day"},
				}},
				{Day: 3, Stops: []routes.Stop{
					{Name: "Haeundae Beach", Description: "Coastal afternoon", Activity: "beach", Time: "afternoon"},
				}},
			},
		},
	})
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
