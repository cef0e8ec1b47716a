// Package routes holds the recommended-itinerary domain model.
package routes

import "errors"

// ErrRouteRequest is the surfaced failure of the route recommendation call.
// Unlike place data there is no sane empty-itinerary fallback, so callers
// must present an explicit error state with a manual retry; the client
// itself never retries.
var ErrRouteRequest = errors.New("route recommendation request failed")

// RouteRequest holds the trip parameters submitted for recommendation.
// TravelDays is a numeric string, matching the stored parameter form.
type RouteRequest struct {
	StartLocation  string `json:"startLocation"`
	EndLocation    string `json:"endLocation"`
	LeisureType    string `json:"leisureType"`
	ExperienceType string `json:"experienceType"`
	TravelDays     string `json:"travelDays"`
}

// Stop is one recommended place within a day. Name, Description, Activity
// and Time come from the recommendation backend and are never modified.
// PlaceID and Favorite are filled in-memory by reconciliation and are
// discarded with the route; the augmented form is never persisted.
type Stop struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Activity    string `json:"activity"`
	Time        string `json:"time"`

	PlaceID  string `json:"-"`
	Favorite bool   `json:"-"`
}

// Day is one day of the itinerary. Day numbering starts at 1.
type Day struct {
	Day   int    `json:"day"`
	Stops []Stop `json:"places"`
}

// TravelRoute is the multi-day itinerary returned by the recommendation
// backend. Read-only from the client's perspective.
type TravelRoute struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Days        []Day  `json:"days"`
}

// Preferences echoes the travel style the recommendation was built from.
type Preferences struct {
	LeisureType    string `json:"leisureType"`
	ExperienceType string `json:"experienceType"`
}

// Recommendation wraps a TravelRoute with the echoed request context.
type Recommendation struct {
	StartLocation string      `json:"startLocation"`
	EndLocation   string      `json:"endLocation"`
	Preferences   Preferences `json:"preferences"`
	Route         TravelRoute `json:"routeRecommendation"`
}

// StopNames returns the distinct stop names across all days, in first-seen
// order. Dedup is by exact name match.
func (r *TravelRoute) StopNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, day := range r.Days {
		for _, stop := range day.Stops {
			if _, ok := seen[stop.Name]; ok {
				continue
			}
			seen[stop.Name] = struct{}{}
			names = append(names, stop.Name)
		}
	}
	return names
}
