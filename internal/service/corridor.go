package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
)

// candidateConcurrency bounds how many candidates have their detour legs in
// flight at once, to respect third-party rate limits.
const candidateConcurrency = 4

// CorridorQuery describes one route-corridor search.
type CorridorQuery struct {
	Origin          domain.Position
	Dest            domain.Position
	PlaceType       string
	Keyword         string
	DetourBudgetMin float64
}

// CorridorSearch finds points of interest that are genuinely "on the way":
// it samples waypoints along the route, searches near each, estimates the
// detour cost per candidate, and filters and ranks the survivors.
//
// External-call fan-out is bounded deliberately: waypoints are downsampled
// before the places queries, and candidates are capped before the expensive
// three-leg detour estimate.
type CorridorSearch struct {
	routing ports.RoutingProvider
	places  ports.PlacesProvider
	log     *slog.Logger

	// RadiusM is the nearby-search radius around each sampled waypoint.
	RadiusM float64
	// MaxWaypoints caps the sampled waypoints (first and last preserved).
	MaxWaypoints int
	// MaxCandidates caps the candidates that reach the detour estimate.
	MaxCandidates int
}

// NewCorridorSearch constructs a CorridorSearch with the given policy knobs.
func NewCorridorSearch(routing ports.RoutingProvider, places ports.PlacesProvider, radiusM float64, maxWaypoints, maxCandidates int, log *slog.Logger) *CorridorSearch {
	return &CorridorSearch{
		routing:       routing,
		places:        places,
		log:           log,
		RadiusM:       radiusM,
		MaxWaypoints:  maxWaypoints,
		MaxCandidates: maxCandidates,
	}
}

// Search runs the corridor algorithm. No route between origin and
// destination yields an empty list and a nil error; a provider failure on
// the initial route is an error. Candidates whose detour legs fail are
// dropped, not retried.
func (s *CorridorSearch) Search(ctx context.Context, q CorridorQuery) ([]domain.RouteCandidate, error) {
	route, err := s.routing.Directions(ctx, q.Origin, q.Dest)
	if err != nil {
		if errors.Is(err, ports.ErrNoRoute) {
			return []domain.RouteCandidate{}, nil
		}
		return nil, fmt.Errorf("service.CorridorSearch.Search: route: %w", err)
	}

	waypoints := make([]domain.Position, 0, len(route.Waypoints)+2)
	waypoints = append(waypoints, q.Origin)
	waypoints = append(waypoints, route.Waypoints...)
	waypoints = append(waypoints, q.Dest)
	waypoints = downsample(waypoints, s.MaxWaypoints)

	// Merge nearby hits across waypoints, de-duplicating by provider ID and
	// preserving first-seen order for deterministic capping.
	seen := make(map[string]struct{})
	var candidates []ports.Place
	for _, wp := range waypoints {
		places, err := s.places.NearbySearch(ctx, ports.NearbyQuery{
			Center:  wp,
			RadiusM: s.RadiusM,
			Type:    q.PlaceType,
			Keyword: q.Keyword,
		})
		if err != nil {
			s.log.Warn("nearby search skipped", "lat", wp.Lat, "lon", wp.Lon, "error", err)
			continue
		}
		for _, p := range places {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			candidates = append(candidates, p)
		}
	}

	if len(candidates) > s.MaxCandidates {
		candidates = candidates[:s.MaxCandidates]
	}

	var (
		mu      sync.Mutex
		results []domain.RouteCandidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(candidateConcurrency)

	for _, cand := range candidates {
		cand := cand
		g.Go(func() error {
			detour, err := s.detourMinutes(gctx, q.Origin, q.Dest, cand.Coords)
			if err != nil {
				// A failed leg drops the candidate, never the search.
				s.log.Warn("detour estimate dropped candidate", "place", cand.ID, "error", err)
				return nil
			}
			if detour > q.DetourBudgetMin {
				return nil
			}

			mu.Lock()
			results = append(results, domain.RouteCandidate{
				PlaceID:       cand.ID,
				Name:          cand.Name,
				Rating:        cand.Rating,
				Coords:        cand.Coords,
				DetourMinutes: detour,
				MapsURL:       mapsURL(cand.Coords),
				OpenNow:       cand.OpenNow,
				PriceLevel:    cand.PriceLevel,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service.CorridorSearch.Search: %w", err)
	}

	sortCandidates(results)
	return results, nil
}

// detourMinutes resolves the three legs concurrently and returns
// (origin→candidate + candidate→dest) − (origin→dest) in minutes.
// Zero or negative means the candidate lies effectively on the direct path.
func (s *CorridorSearch) detourMinutes(ctx context.Context, origin, dest, cand domain.Position) (float64, error) {
	var toCand, fromCand, direct ports.Route

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		toCand, err = s.routing.Directions(gctx, origin, cand)
		return err
	})
	g.Go(func() (err error) {
		fromCand, err = s.routing.Directions(gctx, cand, dest)
		return err
	})
	g.Go(func() (err error) {
		direct, err = s.routing.Directions(gctx, origin, dest)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	extra := toCand.Duration() + fromCand.Duration() - direct.Duration()
	return float64(extra) / 60, nil
}

// sortCandidates orders by detour ascending, ties broken by rating
// descending with missing ratings sorting last.
func sortCandidates(cs []domain.RouteCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].DetourMinutes != cs[j].DetourMinutes {
			return cs[i].DetourMinutes < cs[j].DetourMinutes
		}
		return ratingOf(cs[i]) > ratingOf(cs[j])
	})
}

func ratingOf(c domain.RouteCandidate) float64 {
	if c.Rating == nil {
		return -1
	}
	return *c.Rating
}

// downsample picks at most max evenly spaced entries, always preserving the
// first and last.
func downsample(pts []domain.Position, max int) []domain.Position {
	if max < 2 || len(pts) <= max {
		return pts
	}

	out := make([]domain.Position, 0, max)
	step := float64(len(pts)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(float64(i)*step + 0.5)
		if idx > len(pts)-1 {
			idx = len(pts) - 1
		}
		out = append(out, pts[idx])
	}
	return out
}

// mapsURL builds a navigation link for a candidate.
func mapsURL(p domain.Position) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%f,%f", p.Lat, p.Lon)
}
