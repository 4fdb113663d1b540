// Package handler implements the HTTP handlers for the Trip Sentinel API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, monitor.go, ...) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/service"
)

// TripServicer defines the trip lifecycle operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, state domain.TripState) (domain.TripState, error)
	Get(ctx context.Context, id uuid.UUID) (domain.TripState, error)
	AddReminder(ctx context.Context, tripID uuid.UUID, category string, delay time.Duration, text string, origin *domain.Position) (domain.DeferredRequest, error)
}

// MonitorServicer defines the monitoring operations: a position tick and a
// full heartbeat cycle.
type MonitorServicer interface {
	Tick(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) ([]domain.Event, error)
	Run(ctx context.Context, tripID uuid.UUID, pos domain.Position, now time.Time) (domain.HeartbeatResult, error)
}

// CorridorSearcher runs the on-the-way point-of-interest search.
type CorridorSearcher interface {
	Search(ctx context.Context, q service.CorridorQuery) ([]domain.RouteCandidate, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips    TripServicer
	monitor  MonitorServicer
	corridor CorridorSearcher
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, monitor MonitorServicer, corridor CorridorSearcher) *Server {
	return &Server{trips: trips, monitor: monitor, corridor: corridor}
}

// Routes registers every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.getHealth)
	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.createTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.getTrip)
			r.Post("/position", s.postPosition)
			r.Post("/heartbeat", s.postHeartbeat)
			r.Get("/corridor", s.getCorridor)
			r.Post("/reminders", s.postReminder)
		})
	})
}
