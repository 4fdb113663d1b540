package service

import (
	"fmt"
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
	"github.com/mfeldt/trip-sentinel/internal/geo"
	"github.com/mfeldt/trip-sentinel/internal/ports"
)

// The alert catalogue renders heartbeat decisions into human text with two
// or three tradeoff options. Pure templating: no decisions are made here.

// DriftAlert renders a schedule-drift alert for the worst-drifting activity.
func DriftAlert(eta domain.ActivityETA) domain.Alert {
	drift := time.Duration(*eta.DriftMinutes * float64(time.Minute))
	return domain.Alert{
		Type:     domain.AlertScheduleDrift,
		Severity: domain.SeverityHigh,
		Message: fmt.Sprintf("Heads up: you're running about %s behind for %s (now looking like %s).",
			geo.FormatDuration(drift), eta.ActivityName, eta.EstimatedArrival.Format("3:04 PM")),
		Options: []string{
			fmt.Sprintf("Shorten an earlier stop and keep %s", eta.ActivityName),
			fmt.Sprintf("Push %s later today", eta.ActivityName),
			"Keep the plan and arrive late",
		},
	}
}

// WeatherAlert renders an adverse-weather alert for an upcoming outdoor stop.
func WeatherAlert(a domain.Activity, cond ports.Conditions) domain.Alert {
	return domain.Alert{
		Type:     domain.AlertWeather,
		Severity: domain.SeverityMedium,
		Message: fmt.Sprintf("Weather check for %s: %s, %.0f°F with a %.0f%% chance of rain.",
			a.Name, cond.Condition, cond.TempF, cond.PrecipChance),
		Options: []string{
			fmt.Sprintf("Swap %s with an indoor stop", a.Name),
			"Go anyway with rain gear",
			"Wait an hour and re-check",
		},
	}
}

// LodgingAlert renders the evening no-lodging nudge.
func LodgingAlert(date string) domain.Alert {
	return domain.Alert{
		Type:     domain.AlertLodging,
		Severity: domain.SeverityHigh,
		Message:  fmt.Sprintf("It's getting late and nothing is booked for tonight (%s). Want help finding a place?", date),
		Options: []string{
			"Search lodging near your route",
			"Stay near where you are now",
		},
	}
}

// ReminderAlert surfaces a fired deferred reminder verbatim.
func ReminderAlert(req domain.DeferredRequest) domain.Alert {
	return domain.Alert{
		Type:     domain.AlertReminder,
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("Reminder: %s", req.Text),
	}
}
