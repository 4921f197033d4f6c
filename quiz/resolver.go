/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"github.com/Seednode/yokaiquiz/roster"
)

// DefaultExclusions are names that collide with other names while being
// typed, so each may only be credited once per session.
var DefaultExclusions = []string{"casteliusi", "casteliusii", "cuttanah"}

// Resolver turns one input event into the entities it newly identifies.
//
// Exclusions suppress by text, not by entity: once an excluded name has been
// accepted, later inputs of the same text match nothing, even if they would
// match a different entity.
type Resolver struct {
	index      *NameIndex
	exclusions map[string]struct{}
	consumed   map[string]struct{}
}

func NewResolver(index *NameIndex, exclusions []string) *Resolver {
	r := &Resolver{
		index:      index,
		exclusions: make(map[string]struct{}, len(exclusions)),
		consumed:   make(map[string]struct{}),
	}

	for _, name := range exclusions {
		if n := Normalize(name); n != "" {
			r.exclusions[n] = struct{}{}
		}
	}

	return r
}

// Resolve returns the entities of pool whose names match raw, in pool order.
// The returned pointers refer into pool.
func (r *Resolver) Resolve(raw string, pool []roster.Entity) []*roster.Entity {
	text := Normalize(raw)
	if text == "" {
		return nil
	}

	var matches []*roster.Entity
	for i := range pool {
		if r.index.Matches(text, &pool[i]) {
			matches = append(matches, &pool[i])
		}
	}

	if _, excluded := r.exclusions[text]; excluded {
		if _, done := r.consumed[text]; done {
			return nil
		}
		r.consumed[text] = struct{}{}
	}

	return matches
}

// Consumed reports whether an excluded name has already been credited.
func (r *Resolver) Consumed(name string) bool {
	_, ok := r.consumed[Normalize(name)]

	return ok
}

// Reset forgets consumed exclusions.
func (r *Resolver) Reset() {
	clear(r.consumed)
}
