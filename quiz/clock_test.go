package quiz_test

import (
	"testing"
	"time"

	"github.com/Seednode/yokaiquiz/quiz"
)

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "00:00"},
		{d: 999 * time.Millisecond, want: "00:00"},
		{d: time.Second, want: "00:01"},
		{d: 59*time.Second + 999*time.Millisecond, want: "00:59"},
		{d: time.Minute, want: "01:00"},
		{d: 8*time.Minute + 45*time.Second, want: "08:45"},
		{d: 100*time.Minute + 5*time.Second, want: "100:05"},
		{d: -time.Second, want: "00:00"},
	}

	for _, c := range cases {
		if got := quiz.FormatElapsed(c.d); got != c.want {
			t.Fatalf("FormatElapsed(%v) = %q, expected %q", c.d, got, c.want)
		}
	}
}

func TestClockFramesPublishElapsedTime(t *testing.T) {
	t.Parallel()

	var shown []string
	f := &frames{}
	now := newFakeTime()
	c := quiz.NewClock(f.schedule, func(s string) { shown = append(shown, s) }, now.now)

	c.Start()
	if !c.Running() {
		t.Fatalf("expected the clock to run")
	}

	now.advance(400 * time.Millisecond)
	f.step(false)
	if len(shown) != 0 {
		t.Fatalf("expected no update within the first second, got %v", shown)
	}

	now.advance(700 * time.Millisecond)
	f.step(false)
	now.advance(65 * time.Second)
	f.step(false)

	if len(shown) != 2 || shown[0] != "00:01" || shown[1] != "01:06" {
		t.Fatalf("expected [00:01 01:06], got %v", shown)
	}

	for i := 1; i < len(shown); i++ {
		if shown[i] < shown[i-1] {
			t.Fatalf("time went backwards: %v", shown)
		}
	}
}

func TestClockDoubleStartKeepsOneFrameLoop(t *testing.T) {
	t.Parallel()

	f := &frames{}
	now := newFakeTime()
	c := quiz.NewClock(f.schedule, nil, now.now)

	c.Start()
	now.advance(5 * time.Second)
	c.Start()

	if len(f.queue) != 1 {
		t.Fatalf("expected a single pending frame, got %d", len(f.queue))
	}
	if got := c.String(); got != "00:05" {
		t.Fatalf("expected the second Start not to restart timing, got %s", got)
	}
}

func TestClockStopFreezesDisplay(t *testing.T) {
	t.Parallel()

	var shown []string
	f := &frames{}
	now := newFakeTime()
	c := quiz.NewClock(f.schedule, func(s string) { shown = append(shown, s) }, now.now)

	c.Start()
	now.advance(3 * time.Second)
	f.step(false)
	now.advance(1500 * time.Millisecond)
	c.Stop()

	if got := shown[len(shown)-1]; got != "00:04" {
		t.Fatalf("expected Stop to publish 00:04, got %s", got)
	}

	// a frame that was already dispatched before Stop must do nothing
	before := len(shown)
	now.advance(10 * time.Second)
	if ran := f.step(true); ran != 1 {
		t.Fatalf("expected the stale frame to be dispatched, ran %d", ran)
	}
	if len(shown) != before || len(f.queue) != 0 {
		t.Fatalf("expected a stale frame to neither render nor reschedule, got %v", shown)
	}
	if got := c.String(); got != "00:04" {
		t.Fatalf("expected a stopped clock to stay at 00:04, got %s", got)
	}

	c.Stop()
	if len(shown) != before {
		t.Fatalf("expected a second Stop to be a no-op")
	}
}

func TestClockReset(t *testing.T) {
	t.Parallel()

	var shown []string
	f := &frames{}
	now := newFakeTime()
	c := quiz.NewClock(f.schedule, func(s string) { shown = append(shown, s) }, now.now)

	c.Start()
	now.advance(90 * time.Second)
	f.step(false)
	c.Reset()

	if c.Running() || c.String() != "00:00" || shown[len(shown)-1] != "00:00" {
		t.Fatalf("expected Reset to show 00:00, got %v", shown)
	}
	if ran := f.step(false); ran != 0 {
		t.Fatalf("expected Reset to cancel the pending frame")
	}

	// reset while idle still shows 00:00
	c.Reset()
	if shown[len(shown)-1] != "00:00" {
		t.Fatalf("expected 00:00 after idle reset")
	}

	c.Start()
	now.advance(2 * time.Second)
	f.step(false)
	if got := shown[len(shown)-1]; got != "00:02" {
		t.Fatalf("expected a restarted clock to count from zero, got %s", got)
	}
}
