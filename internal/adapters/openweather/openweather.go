// Package openweather implements the weather provider port against the
// OpenWeatherMap forecast API.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/ports"
)

// Client calls the OpenWeatherMap 3-hour forecast endpoint. The first
// forecast slot carries condition, temperature, and precipitation
// probability in a single call, which is all the heartbeat needs.
// Safe for concurrent use.
type Client struct {
	session *http.Client
	apiKey  string
	baseURL string
}

// NewClient constructs a Client authenticated with apiKey.
func NewClient(apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openweather api key is empty")
	}
	return &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
	}, nil
}

type forecastResponse struct {
	List []struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Pop float64 `json:"pop"` // precipitation probability, [0,1]
	} `json:"list"`
}

// CurrentConditions returns the nearest-term forecast slot for pos.
func (c *Client) CurrentConditions(ctx context.Context, pos domain.Position) (ports.Conditions, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", pos.Lat))
	q.Set("lon", fmt.Sprintf("%f", pos.Lon))
	q.Set("units", "imperial")
	q.Set("cnt", "1")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/data/2.5/forecast?"+q.Encode(), nil)
	if err != nil {
		return ports.Conditions{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return ports.Conditions{}, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return ports.Conditions{}, fmt.Errorf("forecast status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return ports.Conditions{}, fmt.Errorf("decode forecast response: %w", err)
	}

	if len(fr.List) == 0 {
		return ports.Conditions{}, errors.New("forecast returned no slots")
	}

	slot := fr.List[0]
	cond := ports.Conditions{
		TempF:        slot.Main.Temp,
		PrecipChance: slot.Pop * 100,
	}
	if len(slot.Weather) > 0 {
		cond.Condition = slot.Weather[0].Description
	}

	return cond, nil
}
