package renderer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTickAndAdvance(t *testing.T) {
	var c Clock
	for i := 0; i < 1500; i++ {
		c.Tick()
	}
	assert.EqualValues(t, 1500, c.Milliseconds())
	assert.InDelta(t, 1.5, c.Seconds(), 1e-9)

	c.Advance(2*time.Second + 999*time.Microsecond)
	assert.EqualValues(t, 3500, c.Milliseconds())
}

func TestClockConcurrentTicks(t *testing.T) {
	var c Clock
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				c.Tick()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 8000, c.Milliseconds())
}

func TestClockRunStopsWithContext(t *testing.T) {
	var c Clock
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.Milliseconds() > 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock did not stop")
	}
	stopped := c.Milliseconds()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, stopped, c.Milliseconds())
}
