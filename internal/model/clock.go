package model

import (
	"sync"
	"time"
)

// FrameClock measures the time between frame ticks. The first tick after a
// reset reports zero.
type FrameClock struct {
	mu        sync.Mutex
	now       func() time.Time
	lastTick  time.Time
	isRunning bool
	// maxDelta caps a single step so a stalled ticker does not teleport
	// animations to their end in one frame.
	maxDelta time.Duration
}

func NewFrameClock(maxDelta time.Duration) *FrameClock {
	return &FrameClock{now: time.Now, maxDelta: maxDelta}
}

// Tick returns seconds since the previous tick.
func (c *FrameClock) Tick() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.isRunning {
		c.lastTick = now
		c.isRunning = true
		return 0
	}
	delta := now.Sub(c.lastTick)
	c.lastTick = now
	if delta < 0 {
		delta = 0
	}
	if c.maxDelta > 0 && delta > c.maxDelta {
		delta = c.maxDelta
	}
	return delta.Seconds()
}

// Reset makes the next tick report zero again.
func (c *FrameClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isRunning = false
}
