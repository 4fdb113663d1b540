package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeferredRequest is a one-shot timed reminder ("remind us about firewood
// when we get closer"). At most one pending request exists per category;
// adding another in the same category replaces it.
type DeferredRequest struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	FireAt    time.Time `json:"fire_at"`
	CreatedAt time.Time `json:"created_at"`
	// Origin is the position at which the request was created.
	// Informational only; firing is purely time-based.
	Origin *Position `json:"origin,omitempty"`
}
