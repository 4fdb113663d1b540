// Package domain contains the core data types for Trip Sentinel.
// This package has zero infrastructure dependencies and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Position is a geographic coordinate in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PositionSample is a single GPS fix received from the family's device.
// The system keeps only the most recent sample on the trip state; the full
// track is not retained.
type PositionSample struct {
	Position
	At time.Time `json:"at"`
}

// TripState is the top-level aggregate: one document per monitored trip.
// It is loaded once, mutated in memory, and saved once per heartbeat or
// position tick. The heartbeat orchestrator is the sole mutator; callers
// serialize access per trip ID.
type TripState struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Timezone     string               `json:"timezone"` // IANA name, e.g. "America/Los_Angeles"
	Days         []Day                `json:"days"`
	Bookings     []Booking            `json:"bookings,omitempty"`
	Patterns     Patterns             `json:"patterns"`
	Deferred     []DeferredRequest    `json:"deferred,omitempty"`
	AlertRecord  map[string]time.Time `json:"alert_record,omitempty"`
	LastPosition *PositionSample      `json:"last_position,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Day is an ordered container of activities for one calendar date.
// Day order within TripState.Days is chronological and meaningful:
// "today" and "tomorrow" are derived positionally by date.
type Day struct {
	Date       string     `json:"date"` // YYYY-MM-DD in the trip's timezone
	Activities []Activity `json:"activities"`
}

// BookingKind distinguishes lodging from other reservations.
type BookingKind string

const (
	BookingLodging BookingKind = "lodging"
	BookingOther   BookingKind = "other"
)

// Booking is a confirmed reservation attached to the trip, ingested by the
// booking collaborator. Lodging bookings drive the evening lodging nudge.
type Booking struct {
	Kind     BookingKind `json:"kind"`
	Name     string      `json:"name"`
	CheckIn  string      `json:"check_in"`  // YYYY-MM-DD
	CheckOut string      `json:"check_out"` // YYYY-MM-DD, exclusive
}

// Patterns accumulates schedule-drift observations so the buffer provider
// can learn how much slack this particular family tends to need.
type Patterns struct {
	DriftObservations []DriftObservation `json:"drift_observations,omitempty"`
}

// DriftObservation is one observed-but-not-alert-worthy schedule drift.
type DriftObservation struct {
	At      time.Time `json:"at"`
	Minutes float64   `json:"minutes"`
}

// LodgingCoveredOn reports whether a lodging booking covers the night of the
// given date (check-in on or before it, check-out strictly after it).
// Dates are compared lexically, which is safe for YYYY-MM-DD.
func (t *TripState) LodgingCoveredOn(date string) bool {
	for _, b := range t.Bookings {
		if b.Kind != BookingLodging {
			continue
		}
		if b.CheckIn <= date && date < b.CheckOut {
			return true
		}
	}
	return false
}
