/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"fmt"
	"time"
)

const zeroTime = "00:00"

// Scheduler arranges for frame to run once, at the host's next display
// frame, and returns a function that cancels it. Frames must run on the same
// logical thread as every other call into the session.
type Scheduler func(frame func()) (cancel func())

// FormatElapsed renders d as zero-padded MM:SS. Minutes are not capped.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d / time.Second)

	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Clock is a self-rescheduling stopwatch. Each frame publishes the elapsed
// time, if it changed, and schedules the next frame.
//
// A Clock is not safe for concurrent use.
type Clock struct {
	now      func() time.Time
	schedule Scheduler
	display  func(string)

	startedAt time.Time
	stoppedAt time.Time
	started   bool
	running   bool

	// generation invalidates frames that were queued before a stop.
	generation uint64
	cancel     func()

	lastRendered string
}

func NewClock(schedule Scheduler, display func(string), now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	if display == nil {
		display = func(string) {}
	}

	return &Clock{
		now:          now,
		schedule:     schedule,
		display:      display,
		lastRendered: zeroTime,
	}
}

// Start begins timing from now. It does nothing while already running, so a
// second Start never produces a second frame loop.
func (c *Clock) Start() {
	if c.running {
		return
	}

	c.generation++
	c.startedAt = c.now()
	c.started = true
	c.running = true

	c.next()
}

// Stop freezes the clock and publishes the frozen value. Frames already
// queued become no-ops.
func (c *Clock) Stop() {
	if !c.running {
		return
	}

	c.stoppedAt = c.now()
	c.running = false
	c.generation++

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.render()
}

// Reset stops the clock and shows 00:00.
func (c *Clock) Reset() {
	c.Stop()

	c.started = false
	c.startedAt = time.Time{}
	c.stoppedAt = time.Time{}
	c.lastRendered = zeroTime

	c.display(zeroTime)
}

func (c *Clock) Running() bool {
	return c.running
}

func (c *Clock) Elapsed() time.Duration {
	switch {
	case !c.started:
		return 0
	case c.running:
		return c.now().Sub(c.startedAt)
	default:
		return c.stoppedAt.Sub(c.startedAt)
	}
}

// String returns the elapsed time as MM:SS.
func (c *Clock) String() string {
	return FormatElapsed(c.Elapsed())
}

func (c *Clock) next() {
	if c.schedule == nil {
		return
	}

	generation := c.generation
	c.cancel = c.schedule(func() {
		c.frame(generation)
	})
}

func (c *Clock) frame(generation uint64) {
	if !c.running || generation != c.generation {
		return
	}

	c.render()
	c.next()
}

func (c *Clock) render() {
	s := c.String()
	if s == c.lastRendered {
		return
	}

	c.lastRendered = s
	c.display(s)
}
