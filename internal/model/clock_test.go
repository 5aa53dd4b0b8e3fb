package model

import (
	"testing"
	"time"
)

func TestFrameClock(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewFrameClock(100 * time.Millisecond)
	c.now = func() time.Time { return now }

	if dt := c.Tick(); dt != 0 {
		t.Fatalf("first tick = %v, want 0", dt)
	}
	now = now.Add(16 * time.Millisecond)
	if dt := c.Tick(); dt != 0.016 {
		t.Fatalf("second tick = %v, want 0.016", dt)
	}
	now = now.Add(5 * time.Second)
	if dt := c.Tick(); dt != 0.1 {
		t.Fatalf("stalled tick = %v, want capped 0.1", dt)
	}
	c.Reset()
	now = now.Add(time.Second)
	if dt := c.Tick(); dt != 0 {
		t.Fatalf("tick after reset = %v, want 0", dt)
	}
}
