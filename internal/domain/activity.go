package domain

import "time"

// ActivityState is the per-stop state tracked by the state machine.
//
// Lifecycle: pending → arrived → in-progress → completed, with uncertain
// reachable from pending/uncertain while the position is near but not
// confirmed. completed is terminal.
type ActivityState string

const (
	StatePending    ActivityState = "pending"
	StateArrived    ActivityState = "arrived"
	StateInProgress ActivityState = "in-progress"
	StateCompleted  ActivityState = "completed"
	StateUncertain  ActivityState = "uncertain"
)

// Category classifies how movable a planned stop is.
type Category string

const (
	// CategoryHard is a fixed commitment (reservation, tour slot).
	CategoryHard Category = "hard"
	// CategorySoft is flexible and can be shifted or dropped.
	CategorySoft Category = "soft"
	// CategoryOpen is an unresolved placeholder ("lunch somewhere").
	CategoryOpen Category = "open"
)

// TagOutdoor marks activities whose enjoyment depends on the weather.
const TagOutdoor = "outdoor"

// Activity is a single planned stop in the itinerary.
//
// An activity without coordinates is inert: it is never transitioned and is
// skipped by every positional computation.
type Activity struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Coords             *Position     `json:"coords,omitempty"`
	Category           Category      `json:"category"`
	ScheduledAt        *time.Time    `json:"scheduled_at,omitempty"`
	PlannedDurationMin int           `json:"planned_duration_min,omitempty"`
	State              ActivityState `json:"state"`
	ArrivedAt          *time.Time    `json:"arrived_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	Tags               []string      `json:"tags,omitempty"`
}

// HasCoords reports whether the activity can participate in positional logic.
func (a Activity) HasCoords() bool { return a.Coords != nil }

// HasTag reports whether the activity carries the given tag.
func (a Activity) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Started reports whether the family has confirmed presence at the activity.
// Uncertain does not count as started: the near-miss has not been confirmed.
func (a Activity) Started() bool {
	return a.State == StateArrived || a.State == StateInProgress || a.State == StateCompleted
}

// EventKind distinguishes confirmed transitions from confirmation questions.
type EventKind string

const (
	// EventStateChange is a confirmed activity transition.
	EventStateChange EventKind = "state-change"
	// EventAsk is emitted when an activity lands in uncertain: the family is
	// close enough to plausibly be there but not close enough to confirm.
	EventAsk EventKind = "ask"
)

// Event is emitted by the state machine for every genuine transition.
// Emission order follows itinerary traversal order.
type Event struct {
	Kind         EventKind     `json:"kind"`
	ActivityID   string        `json:"activity_id"`
	ActivityName string        `json:"activity_name"`
	From         ActivityState `json:"from,omitempty"`
	To           ActivityState `json:"to,omitempty"`
	Question     string        `json:"question,omitempty"`
}
