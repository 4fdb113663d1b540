// Package geo provides the geospatial primitives used across Trip Sentinel:
// great-circle distance, radius containment, and human-readable formatting
// of distances and durations.
package geo

import (
	"fmt"
	"math"
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000

// Haversine returns the great-circle distance between two positions in meters.
func Haversine(a, b domain.Position) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// Within reports whether b lies within radiusM meters of a.
func Within(a, b domain.Position, radiusM float64) bool {
	return Haversine(a, b) <= radiusM
}

// FormatDistance renders a distance in meters for humans:
// "850 m" below one kilometer, "12.4 km" above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatDuration renders a duration for humans: "45 min" below an hour,
// "1 h 10 min" above. Sub-minute durations round to "1 min".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "1 min"
	}
	mins := int(math.Round(d.Minutes()))
	if mins < 60 {
		return fmt.Sprintf("%d min", mins)
	}
	h := mins / 60
	m := mins % 60
	if m == 0 {
		return fmt.Sprintf("%d h", h)
	}
	return fmt.Sprintf("%d h %d min", h, m)
}
