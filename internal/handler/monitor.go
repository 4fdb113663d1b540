package handler

import (
	"net/http"
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// positionRequest is a GPS fix pushed by the family's device.
type positionRequest struct {
	Lat float64    `json:"lat"`
	Lon float64    `json:"lon"`
	At  *time.Time `json:"at,omitempty"`
}

func (p positionRequest) position() domain.Position {
	return domain.Position{Lat: p.Lat, Lon: p.Lon}
}

func (p positionRequest) observedAt() time.Time {
	if p.At != nil {
		return *p.At
	}
	return time.Now().UTC()
}

func (p positionRequest) validate() string {
	if p.Lat < -90 || p.Lat > 90 {
		return "lat must be in [-90, 90]"
	}
	if p.Lon < -180 || p.Lon > 180 {
		return "lon must be in [-180, 180]"
	}
	return ""
}

// postPosition handles POST /trips/{tripID}/position: advance the activity
// state machine with a fresh fix and return the emitted events.
func (s *Server) postPosition(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid position: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondBadRequest(w, msg)
		return
	}

	events, err := s.monitor.Tick(r.Context(), id, req.position(), req.observedAt())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Event{"events": events})
}

// postHeartbeat handles POST /trips/{tripID}/heartbeat: run one full
// monitoring cycle at the given position and return the decision.
func (s *Server) postHeartbeat(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid position: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondBadRequest(w, msg)
		return
	}

	result, err := s.monitor.Run(r.Context(), id, req.position(), req.observedAt())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
