package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/repo"
)

// TripService implements trip-state lifecycle operations: ingesting an
// itinerary, reading state back, and queuing deferred reminders.
type TripService struct {
	store repo.TripStateRepo
	locks *TripLocks
}

// NewTripService constructs a TripService backed by the provided store.
// The locks table must be shared with the heartbeat orchestrator so ticks
// and reminder writes serialize against heartbeats per trip.
func NewTripService(store repo.TripStateRepo, locks *TripLocks) *TripService {
	return &TripService{store: store, locks: locks}
}

// Create validates and persists a freshly ingested itinerary. Every activity
// starts pending; arrival and completion timestamps are cleared regardless
// of what the ingest payload carried.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, state domain.TripState) (domain.TripState, error) {
	if err := validateTripState(state); err != nil {
		return domain.TripState{}, err
	}

	state.ID = uuid.New()
	for di := range state.Days {
		for ai := range state.Days[di].Activities {
			a := &state.Days[di].Activities[ai]
			a.State = domain.StatePending
			a.ArrivedAt = nil
			a.CompletedAt = nil
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			if a.Category == "" {
				a.Category = domain.CategoryOpen
			}
		}
	}

	created, err := s.store.Create(ctx, state)
	if err != nil {
		return domain.TripState{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// Get returns the current state document for a trip.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) Get(ctx context.Context, id uuid.UUID) (domain.TripState, error) {
	state, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.TripState{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return state, nil
}

// AddReminder queues a deferred reminder on the trip, replacing any pending
// reminder in the same category, and persists the updated document.
func (s *TripService) AddReminder(ctx context.Context, tripID uuid.UUID, category string, delay time.Duration, text string, origin *domain.Position) (domain.DeferredRequest, error) {
	if strings.TrimSpace(category) == "" {
		return domain.DeferredRequest{}, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return domain.DeferredRequest{}, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if delay <= 0 {
		return domain.DeferredRequest{}, fmt.Errorf("%w: delay must be positive", domain.ErrValidation)
	}

	unlock := s.locks.Lock(tripID)
	defer unlock()

	state, err := s.store.Get(ctx, tripID)
	if err != nil {
		return domain.DeferredRequest{}, fmt.Errorf("service.TripService.AddReminder: %w", err)
	}

	req := AddReminder(&state, category, delay, text, origin, time.Now().UTC())

	if err := s.store.Save(ctx, state); err != nil {
		return domain.DeferredRequest{}, fmt.Errorf("service.TripService.AddReminder: %w", err)
	}
	return req, nil
}

// validateTripState enforces ingest business rules.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Timezone must be a valid IANA zone when set.
//   - Day dates must be YYYY-MM-DD.
func validateTripState(state domain.TripState) error {
	if strings.TrimSpace(state.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if state.Timezone != "" {
		if _, err := time.LoadLocation(state.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", domain.ErrValidation, state.Timezone)
		}
	}
	for _, day := range state.Days {
		if _, err := time.Parse("2006-01-02", day.Date); err != nil {
			return fmt.Errorf("%w: day date %q is not YYYY-MM-DD", domain.ErrValidation, day.Date)
		}
	}
	return nil
}
