package handler

import (
	"net/http"
	"strconv"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/service"
)

// getCorridor handles GET /trips/{tripID}/corridor: find points of interest
// that are genuinely on the way to a destination.
//
// Query parameters: dest_lat, dest_lon and detour_budget_min are required;
// origin_lat/origin_lon default to the trip's last known position; type and
// keyword are passed through to the places provider.
func (s *Server) getCorridor(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	q := r.URL.Query()

	dest, ok := parseLatLon(q.Get("dest_lat"), q.Get("dest_lon"))
	if !ok {
		respondBadRequest(w, "dest_lat and dest_lon are required")
		return
	}
	budget, err := strconv.ParseFloat(q.Get("detour_budget_min"), 64)
	if err != nil || budget <= 0 {
		respondBadRequest(w, "detour_budget_min must be a positive number")
		return
	}

	origin, ok := parseLatLon(q.Get("origin_lat"), q.Get("origin_lon"))
	if !ok {
		state, err := s.trips.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if state.LastPosition == nil {
			respondBadRequest(w, "origin_lat and origin_lon are required: the trip has no known position yet")
			return
		}
		origin = state.LastPosition.Position
	}

	candidates, err := s.corridor.Search(r.Context(), service.CorridorQuery{
		Origin:          origin,
		Dest:            dest,
		PlaceType:       q.Get("type"),
		Keyword:         q.Get("keyword"),
		DetourBudgetMin: budget,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if candidates == nil {
		candidates = []domain.RouteCandidate{}
	}
	writeJSON(w, http.StatusOK, map[string][]domain.RouteCandidate{"candidates": candidates})
}

// parseLatLon parses a coordinate pair; ok is false when either part is
// missing or malformed or the pair is out of range.
func parseLatLon(latStr, lonStr string) (domain.Position, bool) {
	if latStr == "" || lonStr == "" {
		return domain.Position{}, false
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Position{}, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Position{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.Position{}, false
	}
	return domain.Position{Lat: lat, Lon: lon}, true
}
