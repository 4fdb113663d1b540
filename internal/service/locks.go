package service

import (
	"sync"

	"github.com/google/uuid"
)

// TripLocks serializes trip-state mutation per trip ID. Two concurrent
// position ticks (or a tick racing a heartbeat) for the same trip must not
// interleave their load-mutate-save cycles, or one write is lost. Different
// trips never contend.
type TripLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewTripLocks returns an empty lock table.
func NewTripLocks() *TripLocks {
	return &TripLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for the given trip and returns its unlock func.
func (t *TripLocks) Lock(id uuid.UUID) func() {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
