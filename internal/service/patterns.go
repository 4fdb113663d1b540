package service

import (
	"time"

	"github.com/mfeldt/trip-sentinel/internal/domain"
)

// ActivityBufferProvider supplies the extra minutes a family typically needs
// before reaching a stop. The ETA calculator consults it through this
// interface, injected by the orchestrator, instead of reaching into the
// pattern store itself.
type ActivityBufferProvider interface {
	// BufferMinutes returns the slack to add to an activity's arrival
	// estimate.
	BufferMinutes(a domain.Activity) float64
}

// StaticBufferProvider returns the same buffer for every activity.
// The zero value adds no buffer.
type StaticBufferProvider struct {
	Minutes float64
}

func (p StaticBufferProvider) BufferMinutes(domain.Activity) float64 { return p.Minutes }

// maxLearnedBufferMin caps the learned buffer so a streak of bad traffic
// days cannot talk the system into padding every estimate by an hour.
const maxLearnedBufferMin = 30

// patternWindow bounds how many drift observations are retained per trip.
const patternWindow = 20

// LearnedBufferProvider derives the buffer from the trip's recorded drift
// observations: the mean of recent observed-but-not-alert-worthy drifts.
// Hard commitments get the full buffer; soft and open stops get half, since
// being a little late to a flexible stop costs nothing.
type LearnedBufferProvider struct {
	Patterns domain.Patterns
}

func (p LearnedBufferProvider) BufferMinutes(a domain.Activity) float64 {
	obs := p.Patterns.DriftObservations
	if len(obs) == 0 {
		return 0
	}

	var sum float64
	for _, o := range obs {
		sum += o.Minutes
	}
	buffer := sum / float64(len(obs))
	if buffer > maxLearnedBufferMin {
		buffer = maxLearnedBufferMin
	}
	if buffer < 0 {
		buffer = 0
	}

	if a.Category != domain.CategoryHard {
		buffer /= 2
	}
	return buffer
}

// RecordDrift appends a drift observation to the pattern store, keeping only
// the most recent patternWindow entries.
func RecordDrift(p *domain.Patterns, at time.Time, minutes float64) {
	p.DriftObservations = append(p.DriftObservations, domain.DriftObservation{At: at, Minutes: minutes})
	if n := len(p.DriftObservations); n > patternWindow {
		p.DriftObservations = p.DriftObservations[n-patternWindow:]
	}
}
