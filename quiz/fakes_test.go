package quiz_test

import (
	"fmt"
	"time"

	"github.com/Seednode/yokaiquiz/quiz"
	"github.com/Seednode/yokaiquiz/roster"
)

// frames is a manual Scheduler: queued frames run only when step is called.
type frames struct {
	queue []*frame
}

type frame struct {
	fn        func()
	cancelled bool
}

func (f *frames) schedule(fn func()) func() {
	fr := &frame{fn: fn}
	f.queue = append(f.queue, fr)

	return func() { fr.cancelled = true }
}

// step runs every frame queued so far. cancelled frames still run when
// ignoreCancel is set, simulating a callback that was already dispatched.
func (f *frames) step(ignoreCancel bool) int {
	queued := f.queue
	f.queue = nil

	ran := 0
	for _, fr := range queued {
		if fr.cancelled && !ignoreCancel {
			continue
		}
		fr.fn()
		ran++
	}

	return ran
}

type fakeTime struct {
	t time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeTime) now() time.Time {
	return f.t
}

func (f *fakeTime) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

type recorder struct {
	reveals   []string
	scores    []string
	resets    []int
	times     []string
	victories []quiz.Victory
}

func (r *recorder) Reveal(e *roster.Entity, lang string) {
	r.reveals = append(r.reveals, fmt.Sprintf("%d:%s", e.ID, lang))
}

func (r *recorder) UpdateScore(total, found int) {
	r.scores = append(r.scores, fmt.Sprintf("%d/%d", found, total))
}

func (r *recorder) ResetScore(total int) {
	r.resets = append(r.resets, total)
}

func (r *recorder) ShowTime(elapsed string) {
	r.times = append(r.times, elapsed)
}

func (r *recorder) Victory(v quiz.Victory) {
	r.victories = append(r.victories, v)
}

func entity(id int, display string, aliases ...string) roster.Entity {
	return roster.Entity{
		ID: id,
		Names: roster.Names{
			"en": {Display: display, Aliases: aliases},
		},
	}
}
