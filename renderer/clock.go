package renderer

import (
	"context"
	"sync/atomic"
	"time"
)

// Clock is a logical millisecond counter. Tick may run on its own goroutine
// while the render loop takes snapshots with Seconds.
type Clock struct {
	ms atomic.Int64
}

// Tick advances the clock by one millisecond.
func (c *Clock) Tick() {
	c.ms.Add(1)
}

// Advance moves the clock forward by d, rounded down to whole milliseconds.
func (c *Clock) Advance(d time.Duration) {
	c.ms.Add(d.Milliseconds())
}

func (c *Clock) Milliseconds() int64 {
	return c.ms.Load()
}

// Seconds returns a snapshot of the clock in seconds.
func (c *Clock) Seconds() float64 {
	return float64(c.ms.Load()) / 1000
}

// Run ticks the clock once per interval until ctx is done.
func (c *Clock) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}
