package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// The deferred reminder queue lives inside the trip-state document and is
// pull-based: nothing schedules a timer, the heartbeat polls CheckAndFire.
// Both functions are pure over the passed state; the caller serializes
// access per trip and persists the mutation.

// AddReminder creates a one-shot reminder that fires after delay. At most
// one pending request exists per category: a new request replaces any
// pending one in the same category.
func AddReminder(state *domain.TripState, category string, delay time.Duration, text string, origin *domain.Position, now time.Time) domain.DeferredRequest {
	req := domain.DeferredRequest{
		ID:        uuid.New(),
		Category:  category,
		Text:      text,
		FireAt:    now.Add(delay),
		CreatedAt: now,
		Origin:    origin,
	}

	kept := state.Deferred[:0]
	for _, existing := range state.Deferred {
		if existing.Category != category {
			kept = append(kept, existing)
		}
	}
	state.Deferred = append(kept, req)

	return req
}

// CheckAndFire removes and returns every reminder whose fire time has
// elapsed, in queue order.
func CheckAndFire(state *domain.TripState, now time.Time) []domain.DeferredRequest {
	var fired []domain.DeferredRequest
	kept := state.Deferred[:0]

	for _, req := range state.Deferred {
		if !req.FireAt.After(now) {
			fired = append(fired, req)
		} else {
			kept = append(kept, req)
		}
	}

	state.Deferred = kept
	return fired
}
