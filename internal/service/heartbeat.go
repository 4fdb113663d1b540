package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
	"github.com/mfeldt/trip-sentinel/internal/repo"
)

// lodgingNudgeHour is the local hour from which an unbooked night becomes
// worth interrupting the family about.
const lodgingNudgeHour = 17

// adverseKeywords flag a condition description as adverse regardless of the
// precipitation probability.
var adverseKeywords = []string{"rain", "storm", "thunder", "drizzle", "sleet", "hail", "snow"}

// adversePrecipChance is the precipitation probability (percent) above which
// conditions count as adverse even without a matching keyword.
const adversePrecipChance = 60

// Heartbeat is the proactive orchestrator. On each cycle it advances the
// state machine, recomputes ETAs, checks weather and lodging, surfaces due
// reminders, and reduces everything to an at-most-one-alert decision.
//
// It is the sole mutator of state-machine and guard state; each cycle is one
// load-mutate-save of the trip document under the trip's lock.
type Heartbeat struct {
	store   repo.TripStateRepo
	machine *StateMachine
	eta     *ETACalculator
	weather ports.WeatherProvider
	guard   *Guard
	locks   *TripLocks
	log     *slog.Logger
}

// NewHeartbeat constructs the orchestrator.
func NewHeartbeat(
	store repo.TripStateRepo,
	machine *StateMachine,
	eta *ETACalculator,
	weather ports.WeatherProvider,
	guard *Guard,
	locks *TripLocks,
	log *slog.Logger,
) *Heartbeat {
	return &Heartbeat{
		store:   store,
		machine: machine,
		eta:     eta,
		weather: weather,
		guard:   guard,
		locks:   locks,
		log:     log,
	}
}

// Tick handles a position update outside the heartbeat cadence: it advances
// the state machine, records the position, persists, and returns the emitted
// events. Unlike Run, persistence failures surface to the caller.
func (h *Heartbeat) Tick(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) ([]domain.Event, error) {
	unlock := h.locks.Lock(tripID)
	defer unlock()

	state, err := h.store.Get(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.Heartbeat.Tick: %w", err)
	}

	state, events := h.machine.AdvanceAll(state, pos, now)
	state.LastPosition = &domain.PositionSample{Position: pos, At: now}

	if err := h.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("service.Heartbeat.Tick: %w", err)
	}
	return events, nil
}

// Run executes one heartbeat cycle for a trip. Every internal step is
// independently fault-tolerant: a failing provider contributes nothing and
// the cycle continues. Run only returns an error when the trip itself cannot
// be loaded; any other failure yields autopilot, because proactive
// monitoring must fail silent, not fail loud, to a family driving a car.
func (h *Heartbeat) Run(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) (result domain.HeartbeatResult, err error) {
	unlock := h.locks.Lock(tripID)
	defer unlock()

	state, err := h.store.Get(ctx, tripID)
	if err != nil {
		return domain.HeartbeatResult{}, fmt.Errorf("service.Heartbeat.Run: %w", err)
	}

	// A panic anywhere below must not crash the scheduler: log it and report
	// a silent cycle.
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("heartbeat panic", "trip", tripID, "panic", r)
			result = domain.HeartbeatResult{Mode: domain.ModeAutopilot}
			err = nil
		}
	}()

	// Step 1: advance the state machine with the current position.
	state, events := h.machine.AdvanceAll(state, pos, now)
	state.LastPosition = &domain.PositionSample{Position: pos, At: now}

	// Step 2: recompute ETAs over the updated itinerary. Partial on provider
	// errors; drift observations are recorded on state.Patterns.
	buffer := LearnedBufferProvider{Patterns: state.Patterns}
	etas := h.eta.EstimateItinerary(ctx, pos, &state, buffer, now)

	// Step 3: weather for the nearest upcoming outdoor stop.
	var (
		weatherTarget *domain.Activity
		conditions    ports.Conditions
		haveWeather   bool
	)
	if a := nextOutdoorActivity(state); a != nil {
		cond, werr := h.weather.CurrentConditions(ctx, *a.Coords)
		if werr != nil {
			h.log.Warn("weather check skipped", "activity", a.ID, "error", werr)
		} else {
			weatherTarget = a
			conditions = cond
			haveWeather = true
		}
	}

	// Step 4: candidate alerts.
	var candidates []domain.Alert
	if worst := WorstDrift(etas, h.eta.DriftAlertMin); worst != nil {
		candidates = append(candidates, DriftAlert(*worst))
	}
	if haveWeather && adverse(conditions) {
		candidates = append(candidates, WeatherAlert(*weatherTarget, conditions))
	}

	// Step 5: no-repeat guard.
	kept := candidates[:0]
	for _, c := range candidates {
		if h.guard.ShouldSuppress(state.AlertRecord, c.Type, now) {
			h.log.Debug("alert suppressed", "trip", tripID, "type", c.Type)
			continue
		}
		kept = append(kept, c)
	}
	candidates = kept

	// Step 6: evening lodging nudge.
	if local, date, ok := localTime(state, now); ok &&
		local.Hour() >= lodgingNudgeHour &&
		!state.LodgingCoveredOn(date) &&
		!h.guard.ShouldSuppress(state.AlertRecord, domain.AlertLodging, now) {
		candidates = append(candidates, LodgingAlert(date))
	}

	// Step 7: fired reminders surface unconditionally; they are one-shot by
	// construction and bypass the guard.
	for _, req := range CheckAndFire(&state, now) {
		candidates = append(candidates, ReminderAlert(req))
	}

	// Step 8: reduce to one primary message.
	result = domain.HeartbeatResult{Mode: domain.ModeAutopilot, Events: events}
	if len(candidates) > 0 {
		primary := pickPrimary(candidates)
		state.AlertRecord = h.guard.MarkSent(state.AlertRecord, primary.Type, now)
		result.Mode = domain.ModeAlert
		result.Message = primary.Message
		result.Alerts = candidates
	}

	if serr := h.store.Save(ctx, state); serr != nil {
		// The decision stands even if persistence hiccups; next cycle
		// recomputes from the last good document.
		h.log.Error("heartbeat save failed", "trip", tripID, "error", serr)
	}

	return result, nil
}

// pickPrimary selects the highest-severity candidate; within a tier the
// first candidate wins.
func pickPrimary(candidates []domain.Alert) domain.Alert {
	primary := candidates[0]
	for _, c := range candidates[1:] {
		if c.Severity > primary.Severity {
			primary = c
		}
	}
	return primary
}

// adverse reports whether conditions warrant a weather alert.
func adverse(c ports.Conditions) bool {
	desc := strings.ToLower(c.Condition)
	for _, kw := range adverseKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return c.PrecipChance >= adversePrecipChance
}

// nextOutdoorActivity returns the first non-completed, coordinate-bearing
// activity tagged outdoor, in itinerary order, or nil.
func nextOutdoorActivity(state domain.TripState) *domain.Activity {
	for di := range state.Days {
		for ai := range state.Days[di].Activities {
			a := &state.Days[di].Activities[ai]
			if a.State == domain.StateCompleted || !a.HasCoords() {
				continue
			}
			if a.HasTag(domain.TagOutdoor) {
				return a
			}
		}
	}
	return nil
}

// localTime converts now into the trip's timezone and returns it with the
// local calendar date. A missing or invalid timezone disables the lodging
// nudge rather than guessing a zone.
func localTime(state domain.TripState, now time.Time) (time.Time, string, bool) {
	if state.Timezone == "" {
		return time.Time{}, "", false
	}
	loc, err := time.LoadLocation(state.Timezone)
	if err != nil {
		return time.Time{}, "", false
	}
	local := now.In(loc)
	return local, local.Format("2006-01-02"), true
}
