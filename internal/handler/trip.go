package handler

import (
	"net/http"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// createTrip handles POST /trips: ingest an itinerary document and start
// monitoring it. The service resets all runtime fields, so a client cannot
// create a trip that is already half-completed.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var state domain.TripState
	if err := decodeJSON(r, &state); err != nil {
		respondBadRequest(w, "invalid trip document: "+err.Error())
		return
	}

	created, err := s.trips.Create(r.Context(), state)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// getTrip handles GET /trips/{tripID}.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	state, err := s.trips.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}
