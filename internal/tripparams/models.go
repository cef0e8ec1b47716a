// Package tripparams persists the user's last-entered trip parameters.
package tripparams

// Field identifies a single TravelParams field for partial updates.
type Field string

// TravelParams fields addressable via UpdateField.
const (
	FieldStartLocation  Field = "startLocation"
	FieldEndLocation    Field = "endLocation"
	FieldLeisureType    Field = "leisureType"
	FieldExperienceType Field = "experienceType"
	FieldTravelDays     Field = "travelDays"
)

// Route request fallbacks when the user left a field empty.
const (
	DefaultStartLocation = "Current location"
	DefaultEndLocation   = "Seoul"
	DefaultTravelDays    = "3"
)

// TravelParams holds the trip parameters entered on the home screen.
// All fields are optional; TravelDays is a numeric string (e.g. "3").
// There is a single record per device, not per user.
type TravelParams struct {
	StartLocation  string `json:"startLocation,omitempty"`
	EndLocation    string `json:"endLocation,omitempty"`
	LeisureType    string `json:"leisureType,omitempty"`
	ExperienceType string `json:"experienceType,omitempty"`
	TravelDays     string `json:"travelDays,omitempty"`
}

// Set overwrites one field by key. Unknown fields are ignored.
func (p *TravelParams) Set(field Field, value string) {
	switch field {
	case FieldStartLocation:
		p.StartLocation = value
	case FieldEndLocation:
		p.EndLocation = value
	case FieldLeisureType:
		p.LeisureType = value
	case FieldExperienceType:
		p.ExperienceType = value
	case FieldTravelDays:
		p.TravelDays = value
	}
}

// ReadyForRoute reports whether enough has been entered to request a route.
// A route request needs both style preferences; everything else has a default.
func (p TravelParams) ReadyForRoute() bool {
	return p.LeisureType != "" && p.ExperienceType != ""
}

// WithRouteDefaults returns a copy with empty start/end/days filled in.
func (p TravelParams) WithRouteDefaults() TravelParams {
	if p.StartLocation == "" {
		p.StartLocation = DefaultStartLocation
	}
	if p.EndLocation == "" {
		p.EndLocation = DefaultEndLocation
	}
	if p.TravelDays == "" {
		p.TravelDays = DefaultTravelDays
	}
	return p
}
