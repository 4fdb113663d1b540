package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
)

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string   `json:"place_id"`
		Name     string   `json:"name"`
		Rating   *float64 `json:"rating"`
		Geometry struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
		PriceLevel   *int `json:"price_level"`
		OpeningHours *struct {
			OpenNow *bool `json:"open_now"`
		} `json:"opening_hours"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// NearbySearch queries the Places Nearby Search service around q.Center.
// ZERO_RESULTS yields an empty slice, not an error.
func (c *Client) NearbySearch(ctx context.Context, q ports.NearbyQuery) ([]ports.Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", q.Center.Lat, q.Center.Lon))
	params.Set("radius", strconv.Itoa(int(q.RadiusM)))
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, "/maps/api/place/nearbysearch/json", params)
	})
	if err != nil {
		return nil, fmt.Errorf("nearby search request failed: %w", err)
	}
	defer resp.Body.Close()

	var nr nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("decode nearby search response: %w", err)
	}

	switch nr.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []ports.Place{}, nil
	default:
		return nil, fmt.Errorf("nearby search status %s: %s", nr.Status, nr.ErrorMessage)
	}

	places := make([]ports.Place, 0, len(nr.Results))
	for _, r := range nr.Results {
		p := ports.Place{
			ID:         r.PlaceID,
			Name:       r.Name,
			Rating:     r.Rating,
			PriceLevel: r.PriceLevel,
			Coords: domain.Position{
				Lat: r.Geometry.Location.Lat,
				Lon: r.Geometry.Location.Lng,
			},
		}
		if r.OpeningHours != nil {
			p.OpenNow = r.OpeningHours.OpenNow
		}
		places = append(places, p)
	}

	return places, nil
}
