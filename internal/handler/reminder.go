package handler

import (
	"net/http"
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// reminderRequest queues a deferred reminder on a trip.
type reminderRequest struct {
	Category     string           `json:"category"`
	Text         string           `json:"text"`
	DelayMinutes float64          `json:"delay_minutes"`
	Origin       *domain.Position `json:"origin,omitempty"`
}

// postReminder handles POST /trips/{tripID}/reminders.
func (s *Server) postReminder(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid reminder: "+err.Error())
		return
	}

	delay := time.Duration(req.DelayMinutes * float64(time.Minute))
	created, err := s.trips.AddReminder(r.Context(), id, req.Category, delay, req.Text, req.Origin)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
