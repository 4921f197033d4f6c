/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

// Tracker holds the ids found so far, in discovery order.
type Tracker struct {
	found map[int]struct{}
	order []int
}

func NewTracker() *Tracker {
	return &Tracker{
		found: make(map[int]struct{}),
	}
}

// Add records id. Adding an id twice is a no-op.
func (t *Tracker) Add(id int) {
	if _, ok := t.found[id]; ok {
		return
	}

	t.found[id] = struct{}{}
	t.order = append(t.order, id)
}

func (t *Tracker) Has(id int) bool {
	_, ok := t.found[id]

	return ok
}

func (t *Tracker) Count() int {
	return len(t.order)
}

// IsComplete reports whether every entity of a pool of poolSize has been
// found.
func (t *Tracker) IsComplete(poolSize int) bool {
	return t.Count() == poolSize
}

// IDs returns the found ids in the order they were found.
func (t *Tracker) IDs() []int {
	out := make([]int, len(t.order))
	copy(out, t.order)

	return out
}

func (t *Tracker) Reset() {
	clear(t.found)
	t.order = t.order[:0]
}
