package service

import (
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// Guard is the no-repeat guard: a per-alert-type cool-down preventing
// duplicate notifications. It is pure over caller-supplied state; the
// last-sent table lives on the trip-state document, so suppression
// continuity survives restarts.
type Guard struct {
	Cooldown time.Duration
}

// NewGuard returns a Guard with the given cool-down window.
func NewGuard(cooldown time.Duration) *Guard {
	return &Guard{Cooldown: cooldown}
}

// ShouldSuppress reports whether an alert of the given type must be held
// back: true when one was sent less than the cool-down window ago. A type
// never sent is never suppressed.
func (g *Guard) ShouldSuppress(record map[string]time.Time, alertType domain.AlertType, now time.Time) bool {
	lastSent, ok := record[string(alertType)]
	if !ok {
		return false
	}
	return now.Sub(lastSent) < g.Cooldown
}

// MarkSent records the send time for an alert type. It returns the updated
// map so callers holding a nil record can assign the result back.
func (g *Guard) MarkSent(record map[string]time.Time, alertType domain.AlertType, now time.Time) map[string]time.Time {
	if record == nil {
		record = make(map[string]time.Time)
	}
	record[string(alertType)] = now
	return record
}
