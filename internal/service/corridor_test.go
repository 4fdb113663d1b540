package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
	"github.com/mfeldt/trip-sentinel/internal/service"
)

// gridRouting routes on a taxicab grid at sixty minutes of driving per
// degree, so detours come out of the geometry instead of hand-wired returns.
func gridRouting(waypoints ...domain.Position) *mockRouting {
	return &mockRouting{
		directions: func(_ context.Context, origin, dest domain.Position) (ports.Route, error) {
			dist := math.Abs(origin.Lat-dest.Lat) + math.Abs(origin.Lon-dest.Lon)
			return ports.Route{
				Legs:      []ports.RouteLeg{{DurationSeconds: int(dist * 3600)}},
				Waypoints: waypoints,
			}, nil
		},
	}
}

func placesAt(places ...ports.Place) *mockPlaces {
	return &mockPlaces{
		nearby: func(_ context.Context, _ ports.NearbyQuery) ([]ports.Place, error) {
			return places, nil
		},
	}
}

var corridorQuery = service.CorridorQuery{
	Origin:          domain.Position{Lat: 0, Lon: 0},
	Dest:            domain.Position{Lat: 0, Lon: 1},
	PlaceType:       "restaurant",
	DetourBudgetMin: 5,
}

func newSearch(routing ports.RoutingProvider, places ports.PlacesProvider) *service.CorridorSearch {
	return service.NewCorridorSearch(routing, places, 5000, 5, 12, discardLogger())
}

func TestCorridorSearch_FiltersAndRanks(t *testing.T) {
	fourStars, fiveStars := 4.0, 5.0
	places := placesAt(
		// 0.3 degrees off the corridor: 36 min detour, over budget.
		ports.Place{ID: "far", Name: "Far Diner", Coords: domain.Position{Lat: 0.3, Lon: 0.5}},
		// On the direct path: zero detour.
		ports.Place{ID: "onpath", Name: "On Path Cafe", Rating: &fourStars, Coords: domain.Position{Lat: 0, Lon: 0.4}},
		// 0.02 degrees off: 2.4 min detour.
		ports.Place{ID: "near", Name: "Near Grill", Rating: &fiveStars, Coords: domain.Position{Lat: 0.02, Lon: 0.6}},
	)

	got, err := newSearch(gridRouting(), places).Search(context.Background(), corridorQuery)

	require.NoError(t, err)
	require.Len(t, got, 2, "over-budget candidate is dropped")
	assert.Equal(t, "onpath", got[0].PlaceID, "smallest detour ranks first")
	assert.InDelta(t, 0, got[0].DetourMinutes, 0.01)
	assert.Equal(t, "near", got[1].PlaceID)
	assert.InDelta(t, 2.4, got[1].DetourMinutes, 0.01)
	assert.Contains(t, got[0].MapsURL, "google.com/maps/dir")
}

func TestCorridorSearch_RatingBreaksDetourTies(t *testing.T) {
	low, high := 3.5, 4.8
	places := placesAt(
		ports.Place{ID: "meh", Name: "Meh", Rating: &low, Coords: domain.Position{Lat: 0, Lon: 0.3}},
		ports.Place{ID: "good", Name: "Good", Rating: &high, Coords: domain.Position{Lat: 0, Lon: 0.7}},
		ports.Place{ID: "unrated", Name: "Unrated", Coords: domain.Position{Lat: 0, Lon: 0.5}},
	)

	got, err := newSearch(gridRouting(), places).Search(context.Background(), corridorQuery)

	require.NoError(t, err)
	require.Len(t, got, 3, "all three sit on the path with zero detour")
	assert.Equal(t, "good", got[0].PlaceID)
	assert.Equal(t, "meh", got[1].PlaceID)
	assert.Equal(t, "unrated", got[2].PlaceID, "missing rating sorts last")
}

func TestCorridorSearch_NoRouteYieldsEmpty(t *testing.T) {
	routing := &mockRouting{
		directions: func(_ context.Context, _, _ domain.Position) (ports.Route, error) {
			return ports.Route{}, ports.ErrNoRoute
		},
	}

	got, err := newSearch(routing, placesAt()).Search(context.Background(), corridorQuery)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCorridorSearch_RouteProviderFailureIsError(t *testing.T) {
	routing := &mockRouting{
		directions: func(_ context.Context, _, _ domain.Position) (ports.Route, error) {
			return ports.Route{}, errors.New("routing down")
		},
	}

	_, err := newSearch(routing, placesAt()).Search(context.Background(), corridorQuery)

	assert.Error(t, err)
}

func TestCorridorSearch_WaypointFanOutIsBounded(t *testing.T) {
	// A long route with many waypoints must be downsampled before the places
	// queries go out.
	wps := make([]domain.Position, 40)
	for i := range wps {
		wps[i] = domain.Position{Lat: 0, Lon: float64(i) / 40}
	}

	var (
		mu    sync.Mutex
		calls int
	)
	places := &mockPlaces{
		nearby: func(_ context.Context, _ ports.NearbyQuery) ([]ports.Place, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil, nil
		},
	}

	_, err := newSearch(gridRouting(wps...), places).Search(context.Background(), corridorQuery)

	require.NoError(t, err)
	assert.Equal(t, 5, calls)
}

func TestCorridorSearch_DeduplicatesAndCaps(t *testing.T) {
	// Every waypoint returns the same 15 places; the candidate set must be 12
	// unique entries, not 5x15.
	var dupes []ports.Place
	for i := 0; i < 15; i++ {
		dupes = append(dupes, ports.Place{
			ID:     string(rune('a' + i)),
			Name:   "Stop",
			Coords: domain.Position{Lat: 0, Lon: float64(i) / 20},
		})
	}

	got, err := newSearch(gridRouting(), placesAt(dupes...)).Search(context.Background(), corridorQuery)

	require.NoError(t, err)
	assert.Len(t, got, 12)
}

func TestCorridorSearch_PlacesFailureSkipsWaypoint(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	places := &mockPlaces{
		nearby: func(_ context.Context, _ ports.NearbyQuery) ([]ports.Place, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				return nil, errors.New("places down")
			}
			return []ports.Place{{ID: "p", Name: "P", Coords: domain.Position{Lat: 0, Lon: 0.5}}}, nil
		},
	}

	got, err := newSearch(gridRouting(), places).Search(context.Background(), corridorQuery)

	require.NoError(t, err, "one failed waypoint search never fails the request")
	require.Len(t, got, 1)
}

func TestCorridorSearch_DetourFailureDropsCandidate(t *testing.T) {
	bad := domain.Position{Lat: 0.01, Lon: 0.5}
	routing := &mockRouting{
		directions: func(_ context.Context, origin, dest domain.Position) (ports.Route, error) {
			if origin == bad || dest == bad {
				return ports.Route{}, errors.New("leg failed")
			}
			dist := math.Abs(origin.Lat-dest.Lat) + math.Abs(origin.Lon-dest.Lon)
			return ports.Route{Legs: []ports.RouteLeg{{DurationSeconds: int(dist * 3600)}}}, nil
		},
	}
	places := placesAt(
		ports.Place{ID: "ok", Name: "OK", Coords: domain.Position{Lat: 0, Lon: 0.3}},
		ports.Place{ID: "broken", Name: "Broken", Coords: bad},
	)

	got, err := newSearch(routing, places).Search(context.Background(), corridorQuery)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].PlaceID)
}
