package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
)

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration          valueField `json:"duration"`
			DurationInTraffic valueField `json:"duration_in_traffic"`
			Distance          valueField `json:"distance"`
			Steps             []struct {
				EndLocation latLng `json:"end_location"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
	ErrorMessage string `json:"error_message"`
}

type valueField struct {
	Value int `json:"value"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Directions requests a traffic-aware driving route from origin to dest.
// departure_time=now makes the service include duration_in_traffic.
// Returns ports.ErrNoRoute when the service reports ZERO_RESULTS.
func (c *Client) Directions(ctx context.Context, origin, dest domain.Position) (ports.Route, error) {
	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lon))
	q.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lon))
	q.Set("mode", "driving")
	q.Set("departure_time", "now")

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, "/maps/api/directions/json", q)
	})
	if err != nil {
		return ports.Route{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.Route{}, fmt.Errorf("decode directions response: %w", err)
	}

	switch dr.Status {
	case "OK":
	case "ZERO_RESULTS":
		return ports.Route{}, ports.ErrNoRoute
	default:
		return ports.Route{}, fmt.Errorf("directions status %s: %s", dr.Status, dr.ErrorMessage)
	}

	if len(dr.Routes) == 0 || len(dr.Routes[0].Legs) == 0 {
		return ports.Route{}, ports.ErrNoRoute
	}

	var route ports.Route
	for _, leg := range dr.Routes[0].Legs {
		route.Legs = append(route.Legs, ports.RouteLeg{
			DurationSeconds:          leg.Duration.Value,
			DurationInTrafficSeconds: leg.DurationInTraffic.Value,
			DistanceMeters:           leg.Distance.Value,
		})
		for _, step := range leg.Steps {
			route.Waypoints = append(route.Waypoints, domain.Position{
				Lat: step.EndLocation.Lat,
				Lon: step.EndLocation.Lng,
			})
		}
	}

	return route, nil
}
