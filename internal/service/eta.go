package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
)

// Schedule-drift significance thresholds, in minutes. Drift at or above
// driftObserveMin is recorded for pattern learning; the alert-worthy
// threshold is configured per deploy (reference 40).
const driftObserveMin = 10

// ETACalculator produces traffic-aware arrival estimates and compares them
// to the itinerary's scheduled times.
type ETACalculator struct {
	routing ports.RoutingProvider
	log     *slog.Logger

	// DriftAlertMin is the drift, in minutes, that qualifies as alert-worthy.
	DriftAlertMin float64
}

// NewETACalculator constructs an ETACalculator.
func NewETACalculator(routing ports.RoutingProvider, driftAlertMin float64, log *slog.Logger) *ETACalculator {
	return &ETACalculator{routing: routing, DriftAlertMin: driftAlertMin, log: log}
}

// Estimate returns a single arrival estimate from origin to dest.
// Provider failure surfaces as an error; no fallback duration is fabricated.
func (c *ETACalculator) Estimate(ctx context.Context, origin, dest domain.Position) (domain.ETA, error) {
	route, err := c.routing.Directions(ctx, origin, dest)
	if err != nil {
		return domain.ETA{}, fmt.Errorf("service.ETACalculator.Estimate: %w", err)
	}
	return domain.ETA{
		DurationSeconds: route.Duration(),
		DistanceMeters:  route.Distance(),
	}, nil
}

// EstimateItinerary computes an ETA for every non-completed,
// coordinate-bearing activity. Per-activity provider failures are logged and
// skipped; the result is partial, never aborted.
//
// Drift is measured against the scheduled time after adding the family's
// learned buffer. Drift in [10, alert threshold) is recorded on patterns for
// learning; callers decide alert-worthiness via DriftAlertMin.
func (c *ETACalculator) EstimateItinerary(
	ctx context.Context,
	pos domain.Position,
	state *domain.TripState,
	buffer ActivityBufferProvider,
	now time.Time,
) []domain.ActivityETA {
	var out []domain.ActivityETA

	for _, day := range state.Days {
		for _, a := range day.Activities {
			if a.State == domain.StateCompleted || !a.HasCoords() {
				continue
			}

			eta, err := c.Estimate(ctx, pos, *a.Coords)
			if err != nil {
				c.log.Warn("eta skipped", "activity", a.ID, "error", err)
				continue
			}

			arrival := now.Add(time.Duration(eta.DurationSeconds) * time.Second)
			if buffer != nil {
				arrival = arrival.Add(time.Duration(buffer.BufferMinutes(a) * float64(time.Minute)))
			}

			entry := domain.ActivityETA{
				ActivityID:       a.ID,
				ActivityName:     a.Name,
				EstimatedArrival: arrival,
			}

			if a.ScheduledAt != nil {
				drift := arrival.Sub(*a.ScheduledAt).Minutes()
				entry.DriftMinutes = &drift

				if drift >= driftObserveMin && drift < c.DriftAlertMin {
					RecordDrift(&state.Patterns, now, drift)
				}
			}

			out = append(out, entry)
		}
	}

	return out
}

// WorstDrift returns the entry with the largest drift at or above threshold,
// or nil when no activity qualifies.
func WorstDrift(etas []domain.ActivityETA, threshold float64) *domain.ActivityETA {
	var worst *domain.ActivityETA
	for i := range etas {
		d := etas[i].DriftMinutes
		if d == nil || *d < threshold {
			continue
		}
		if worst == nil || *d > *worst.DriftMinutes {
			worst = &etas[i]
		}
	}
	return worst
}
