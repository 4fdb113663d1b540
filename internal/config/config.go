// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the Trip Sentinel server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// GoogleMapsAPIKey authenticates Directions and Places calls. Required.
	GoogleMapsAPIKey string

	// OpenWeatherAPIKey authenticates current-conditions calls. Required.
	OpenWeatherAPIKey string

	// Monitor holds the proactive-monitoring policy knobs.
	Monitor MonitorConfig
}

// MonitorConfig groups the policy constants of the trip-monitoring core.
// These are policy, not physics: every one of them is tunable per deploy.
type MonitorConfig struct {
	// ArriveRadiusM is the inner radius: within it the family is considered
	// at the activity. Default 1000.
	ArriveRadiusM float64

	// UncertainRadiusM is the outer radius: between the inner and outer
	// radius the family is plausibly-but-not-confirmably there. Default 2000.
	UncertainRadiusM float64

	// DwellThreshold is the continuous at-stop time that promotes arrived to
	// in-progress. Default 20m.
	DwellThreshold time.Duration

	// DriftAlertMin is the schedule drift, in minutes, that qualifies as
	// alert-worthy. Default 40.
	DriftAlertMin float64

	// Cooldown is the per-alert-type no-repeat window. Default 30m.
	Cooldown time.Duration

	// HeartbeatInterval is the proactive evaluation cadence. Default 15m.
	HeartbeatInterval time.Duration

	// CorridorRadiusM is the nearby-search radius around each sampled
	// waypoint. Default 5000.
	CorridorRadiusM float64

	// CorridorMaxWaypoints caps the sampled waypoints per corridor search.
	// Default 5.
	CorridorMaxWaypoints int

	// CorridorMaxCandidates caps the candidates that reach the expensive
	// per-candidate detour estimate. Default 12.
	CorridorMaxCandidates int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Monitor: MonitorConfig{
			ArriveRadiusM:         getEnvFloat("ARRIVE_RADIUS_M", 1000),
			UncertainRadiusM:      getEnvFloat("UNCERTAIN_RADIUS_M", 2000),
			DwellThreshold:        getEnvDuration("DWELL_THRESHOLD", 20*time.Minute),
			DriftAlertMin:         getEnvFloat("DRIFT_ALERT_MIN", 40),
			Cooldown:              getEnvDuration("ALERT_COOLDOWN", 30*time.Minute),
			HeartbeatInterval:     getEnvDuration("HEARTBEAT_INTERVAL", 15*time.Minute),
			CorridorRadiusM:       getEnvFloat("CORRIDOR_RADIUS_M", 5000),
			CorridorMaxWaypoints:  getEnvInt("CORRIDOR_MAX_WAYPOINTS", 5),
			CorridorMaxCandidates: getEnvInt("CORRIDOR_MAX_CANDIDATES", 12),
		},
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	if cfg.GoogleMapsAPIKey == "" {
		missing = append(missing, "GOOGLE_MAPS_API_KEY")
	}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvFloat parses a float environment variable, falling back on absence
// or parse failure.
func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// getEnvInt parses an integer environment variable, falling back on absence
// or parse failure.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration parses a Go duration string ("20m", "1h"), falling back on
// absence or parse failure.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
