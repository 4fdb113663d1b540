// Package ports declares the external-provider contracts the core depends on.
// Concrete adapters live under internal/adapters; services depend only on
// these interfaces so tests can inject hand-written fakes.
package ports

import (
	"context"
	"errors"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// ErrNoRoute is returned by RoutingProvider.Directions when the provider
// found no route between the two points. Callers treat it as an empty,
// silent outcome rather than a failure.
var ErrNoRoute = errors.New("no route found")

// RouteLeg is one leg of a routed journey.
// DurationInTrafficSeconds is zero when the provider returned no traffic
// estimate; callers fall back to DurationSeconds.
type RouteLeg struct {
	DurationSeconds          int
	DurationInTrafficSeconds int
	DistanceMeters           int
}

// Route is a routed journey with representative waypoints along the path
// (step endpoints, in travel order, excluding origin and destination).
type Route struct {
	Legs      []RouteLeg
	Waypoints []domain.Position
}

// Duration returns the traffic-aware total duration in seconds, falling back
// to the static duration when no traffic estimate is available.
func (r Route) Duration() int {
	total := 0
	for _, l := range r.Legs {
		if l.DurationInTrafficSeconds > 0 {
			total += l.DurationInTrafficSeconds
		} else {
			total += l.DurationSeconds
		}
	}
	return total
}

// Distance returns the total route distance in meters.
func (r Route) Distance() int {
	total := 0
	for _, l := range r.Legs {
		total += l.DistanceMeters
	}
	return total
}

// RoutingProvider computes driving routes with traffic-aware durations.
type RoutingProvider interface {
	// Directions returns a route from origin to dest.
	// Returns ErrNoRoute when no route exists.
	Directions(ctx context.Context, origin, dest domain.Position) (Route, error)
}

// Place is a point of interest returned by a places provider.
type Place struct {
	ID         string
	Name       string
	Rating     *float64
	Coords     domain.Position
	PriceLevel *int
	OpenNow    *bool
}

// NearbyQuery describes one nearby search around a point.
type NearbyQuery struct {
	Center  domain.Position
	RadiusM float64
	Type    string // provider place type, e.g. "restaurant", "campground"
	Keyword string
}

// PlacesProvider searches points of interest near a coordinate.
type PlacesProvider interface {
	NearbySearch(ctx context.Context, q NearbyQuery) ([]Place, error)
}

// Conditions is a current-weather snapshot.
type Conditions struct {
	// Condition is the provider's short description, e.g. "light rain".
	Condition string
	TempF     float64
	// PrecipChance is the probability of precipitation in percent [0,100].
	PrecipChance float64
}

// WeatherProvider reports current conditions at a coordinate.
type WeatherProvider interface {
	CurrentConditions(ctx context.Context, pos domain.Position) (Conditions, error)
}
