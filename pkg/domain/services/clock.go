package services

import (
	"sync"
	"time"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// Clock holds the current simulated day. Only the scheduler advances it.
type Clock struct {
	mu    sync.RWMutex
	today time.Time
}

// NewClock creates a clock positioned at the given day
func NewClock(start time.Time) *Clock {
	return &Clock{today: entities.Day(start)}
}

// Today returns the current simulated day
func (c *Clock) Today() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.today
}

// Tomorrow returns the day after the current one without moving the clock
func (c *Clock) Tomorrow() time.Time {
	return entities.AddDays(c.Today(), 1)
}

// Advance moves the clock one day forward and returns the new day
func (c *Clock) Advance() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = entities.AddDays(c.today, 1)
	return c.today
}

// Set repositions the clock, used when restoring a snapshot
func (c *Clock) Set(day time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = entities.Day(day)
}
