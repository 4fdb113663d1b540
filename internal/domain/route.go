package domain

import "time"

// RouteCandidate is a point of interest found by corridor search.
// Computed fresh per request, never persisted.
type RouteCandidate struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name"`
	Rating  *float64 `json:"rating,omitempty"`
	Coords  Position `json:"coords"`
	// DetourMinutes is the extra route time incurred by visiting this stop
	// versus going direct. Zero or negative means it lies effectively on the
	// direct path.
	DetourMinutes float64 `json:"detour_minutes"`
	MapsURL       string  `json:"maps_url"`
	OpenNow       *bool   `json:"open_now,omitempty"`
	PriceLevel    *int    `json:"price_level,omitempty"`
}

// ETA is a single traffic-aware arrival estimate.
type ETA struct {
	DurationSeconds int `json:"duration_seconds"`
	DistanceMeters  int `json:"distance_meters"`
}

// ActivityETA pairs an itinerary activity with its current arrival estimate.
// DriftMinutes is nil when the activity has no scheduled time; positive drift
// means running late.
type ActivityETA struct {
	ActivityID       string    `json:"activity_id"`
	ActivityName     string    `json:"activity_name"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
	DriftMinutes     *float64  `json:"drift_minutes,omitempty"`
}
