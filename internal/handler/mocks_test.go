package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/handler"
	"github.com/mfeldt/trip-sentinel/internal/service"
)

// mockTripServicer is a hand-written test double for handler.TripServicer.
// Each method is a function field; set only the ones your test needs.
type mockTripServicer struct {
	create      func(ctx context.Context, state domain.TripState) (domain.TripState, error)
	get         func(ctx context.Context, id uuid.UUID) (domain.TripState, error)
	addReminder func(ctx context.Context, tripID uuid.UUID, category string, delay time.Duration, text string, origin *domain.Position) (domain.DeferredRequest, error)
}

func (m *mockTripServicer) Create(ctx context.Context, state domain.TripState) (domain.TripState, error) {
	return m.create(ctx, state)
}

func (m *mockTripServicer) Get(ctx context.Context, id uuid.UUID) (domain.TripState, error) {
	return m.get(ctx, id)
}

func (m *mockTripServicer) AddReminder(ctx context.Context, tripID uuid.UUID, category string, delay time.Duration, text string, origin *domain.Position) (domain.DeferredRequest, error) {
	return m.addReminder(ctx, tripID, category, delay, text, origin)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockMonitor is a hand-written test double for handler.MonitorServicer.
type mockMonitor struct {
	tick func(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) ([]domain.Event, error)
	run  func(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) (domain.HeartbeatResult, error)
}

func (m *mockMonitor) Tick(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) ([]domain.Event, error) {
	return m.tick(ctx, tripID, pos, now)
}

func (m *mockMonitor) Run(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) (domain.HeartbeatResult, error) {
	return m.run(ctx, tripID, pos, now)
}

var _ handler.MonitorServicer = (*mockMonitor)(nil)

// mockCorridor is a hand-written test double for handler.CorridorSearcher.
type mockCorridor struct {
	search func(ctx context.Context, q service.CorridorQuery) ([]domain.RouteCandidate, error)
}

func (m *mockCorridor) Search(ctx context.Context, q service.CorridorQuery) ([]domain.RouteCandidate, error) {
	return m.search(ctx, q)
}

var _ handler.CorridorSearcher = (*mockCorridor)(nil)

// newTestRouter mounts a Server built from the given doubles on a fresh chi
// router, the same way main wires it.
func newTestRouter(trips handler.TripServicer, monitor handler.MonitorServicer, corridor handler.CorridorSearcher) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(trips, monitor, corridor).Routes(r)
	return r
}

// do executes a request against the router and returns the recorder.
func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
