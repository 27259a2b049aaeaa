package controller

import (
	"sync"
	"time"
)

// coalescer is a trailing-edge debouncer: each call cancels any pending
// timer and schedules a new one, so a burst of calls inside the window
// collapses to exactly one commit carrying the last call's closure.
type coalescer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func newCoalescer(delay time.Duration) *coalescer {
	return &coalescer{delay: delay}
}

// Do schedules fn to run once the window elapses with no further calls.
func (c *coalescer) Do(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, fn)
}

// Cancel drops any pending commit.
func (c *coalescer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
