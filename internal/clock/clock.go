package clock

import (
	"sync"
	"time"
)

// Clock allows injecting time and waiting into the orchestration layer.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now and time.After.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Manual is a clock that only moves when waited on or advanced (useful for tests).
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a manual clock starting at t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After advances the clock by d and returns an already-fired channel.
func (m *Manual) After(d time.Duration) <-chan time.Time {
	now := m.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Advance moves the clock forward and returns the new instant.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
