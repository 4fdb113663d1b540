package service_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
	"github.com/mfeldt/trip-sentinel/internal/repo"
)

// ---- provider mocks --------------------------------------------------------

// mockRouting is a hand-written test double for ports.RoutingProvider.
type mockRouting struct {
	directions func(ctx context.Context, origin, dest domain.Position) (ports.Route, error)
}

func (m *mockRouting) Directions(ctx context.Context, origin, dest domain.Position) (ports.Route, error) {
	return m.directions(ctx, origin, dest)
}

var _ ports.RoutingProvider = (*mockRouting)(nil)

// mockPlaces is a hand-written test double for ports.PlacesProvider.
type mockPlaces struct {
	nearby func(ctx context.Context, q ports.NearbyQuery) ([]ports.Place, error)
}

func (m *mockPlaces) NearbySearch(ctx context.Context, q ports.NearbyQuery) ([]ports.Place, error) {
	return m.nearby(ctx, q)
}

var _ ports.PlacesProvider = (*mockPlaces)(nil)

// mockWeather is a hand-written test double for ports.WeatherProvider.
type mockWeather struct {
	conditions func(ctx context.Context, pos domain.Position) (ports.Conditions, error)
}

func (m *mockWeather) CurrentConditions(ctx context.Context, pos domain.Position) (ports.Conditions, error) {
	return m.conditions(ctx, pos)
}

var _ ports.WeatherProvider = (*mockWeather)(nil)

// ---- store mock ------------------------------------------------------------

// memStore is an in-memory repo.TripStateRepo for orchestrator tests.
type memStore struct {
	states map[uuid.UUID]domain.TripState
	// saveErr, when set, is returned by Save to simulate persistence failure.
	saveErr error
	saves   int
}

func newMemStore(states ...domain.TripState) *memStore {
	s := &memStore{states: make(map[uuid.UUID]domain.TripState)}
	for _, st := range states {
		s.states[st.ID] = st
	}
	return s
}

func (s *memStore) Create(_ context.Context, state domain.TripState) (domain.TripState, error) {
	state.CreatedAt = time.Now().UTC()
	s.states[state.ID] = state
	return state, nil
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (domain.TripState, error) {
	st, ok := s.states[id]
	if !ok {
		return domain.TripState{}, domain.ErrNotFound
	}
	return st, nil
}

func (s *memStore) Save(_ context.Context, state domain.TripState) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if _, ok := s.states[state.ID]; !ok {
		return domain.ErrNotFound
	}
	s.saves++
	s.states[state.ID] = state
	return nil
}

func (s *memStore) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ repo.TripStateRepo = (*memStore)(nil)

// ---- helpers ---------------------------------------------------------------

// discardLogger swallows log output in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// straightRoute returns a routing mock whose duration is fixed regardless of
// endpoints, with no waypoints.
func straightRoute(seconds int) *mockRouting {
	return &mockRouting{
		directions: func(_ context.Context, _, _ domain.Position) (ports.Route, error) {
			return ports.Route{Legs: []ports.RouteLeg{{DurationSeconds: seconds, DistanceMeters: seconds * 15}}}, nil
		},
	}
}
