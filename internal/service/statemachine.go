// Package service implements the trip-monitoring core: the activity state
// machine, ETA and schedule-drift calculation, route-corridor search, the
// deferred reminder queue, the no-repeat guard, and the heartbeat
// orchestrator that composes them.
package service

import (
	"fmt"
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/geo"
)

// StateMachine infers per-stop activity state from position and dwell time.
// It is a pure-function core: Advance and AdvanceAll never touch shared
// state, so the caller is responsible for serializing itinerary writes.
type StateMachine struct {
	// ArriveRadiusM is the inner radius: within it presence is confirmed.
	ArriveRadiusM float64
	// UncertainRadiusM is the outer radius: between the two radii the family
	// is plausibly at the stop, but not confirmably.
	UncertainRadiusM float64
	// DwellThreshold promotes arrived to in-progress once the family has
	// been at the stop continuously for this long.
	DwellThreshold time.Duration
}

// NewStateMachine returns a StateMachine with the given policy constants.
func NewStateMachine(arriveRadiusM, uncertainRadiusM float64, dwellThreshold time.Duration) *StateMachine {
	return &StateMachine{
		ArriveRadiusM:    arriveRadiusM,
		UncertainRadiusM: uncertainRadiusM,
		DwellThreshold:   dwellThreshold,
	}
}

// Advance evaluates one activity against the current position and returns
// the updated activity plus the event for a genuine transition, or nil when
// nothing changed.
//
// Rules, in precedence order:
//  1. completed is absorbing.
//  2. in-progress → completed when the family left the inner radius.
//  3. arrived → in-progress when inside the inner radius with enough dwell.
//  4. pending/uncertain → arrived when inside the inner radius.
//  5. pending → uncertain when between the radii (emits an ask event;
//     an activity already uncertain stays put silently).
//  6. otherwise unchanged.
func (m *StateMachine) Advance(a domain.Activity, pos domain.Position, now time.Time) (domain.Activity, *domain.Event) {
	if a.State == domain.StateCompleted || !a.HasCoords() {
		return a, nil
	}

	dist := geo.Haversine(pos, *a.Coords)

	if a.State == domain.StateInProgress {
		if dist > m.ArriveRadiusM {
			a.State = domain.StateCompleted
			t := now
			a.CompletedAt = &t
			return a, transitionEvent(a, domain.StateInProgress)
		}
		return a, nil
	}

	if a.State == domain.StateArrived {
		if dist <= m.ArriveRadiusM && m.dwell(a, now) >= m.DwellThreshold {
			a.State = domain.StateInProgress
			return a, transitionEvent(a, domain.StateArrived)
		}
		return a, nil
	}

	// pending or uncertain from here on.
	from := a.State

	if dist <= m.ArriveRadiusM {
		a.State = domain.StateArrived
		t := now
		a.ArrivedAt = &t
		return a, transitionEvent(a, from)
	}

	if dist <= m.UncertainRadiusM && a.State != domain.StateUncertain {
		a.State = domain.StateUncertain
		return a, &domain.Event{
			Kind:         domain.EventAsk,
			ActivityID:   a.ID,
			ActivityName: a.Name,
			From:         from,
			To:           domain.StateUncertain,
			Question: fmt.Sprintf("You look close to %s (about %s away). Have you arrived? (yes/no)",
				a.Name, geo.FormatDistance(dist)),
		}
	}

	return a, nil
}

// dwell returns elapsed time since the activity's arrival. Activities with
// no (or future) arrival timestamp yield zero rather than an error.
func (m *StateMachine) dwell(a domain.Activity, now time.Time) time.Duration {
	if a.ArrivedAt == nil {
		return 0
	}
	d := now.Sub(*a.ArrivedAt)
	if d < 0 {
		return 0
	}
	return d
}

// AdvanceAll evaluates every non-completed, coordinate-bearing activity in
// itinerary order and returns the updated state plus all emitted events.
// Transitions are independent per activity; emission order follows traversal
// order so callers get deterministic output.
func (m *StateMachine) AdvanceAll(state domain.TripState, pos domain.Position, now time.Time) (domain.TripState, []domain.Event) {
	var events []domain.Event

	for di := range state.Days {
		for ai := range state.Days[di].Activities {
			updated, ev := m.Advance(state.Days[di].Activities[ai], pos, now)
			state.Days[di].Activities[ai] = updated
			if ev != nil {
				events = append(events, *ev)
			}
		}
	}

	return state, events
}

func transitionEvent(a domain.Activity, from domain.ActivityState) *domain.Event {
	return &domain.Event{
		Kind:         domain.EventStateChange,
		ActivityID:   a.ID,
		ActivityName: a.Name,
		From:         from,
		To:           a.State,
	}
}
