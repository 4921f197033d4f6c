/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package quiz implements the name-matching game: normalizing typed names,
// resolving them against the active pool, tracking progress and timing the
// session.
package quiz

import (
	"strings"
	"unicode"

	"github.com/Seednode/yokaiquiz/roster"
)

// Normalize lower-cases s and drops whitespace, periods, hyphens and
// apostrophes. Two names are the same name iff their normalized forms are
// equal.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		switch r {
		case '.', '-', '\'':
			return -1
		}

		return r
	}, strings.ToLower(s))
}

// Candidates returns every normalized display name and alias of e, across
// all languages.
func Candidates(e *roster.Entity) []string {
	var out []string

	for _, name := range e.Names {
		out = append(out, Normalize(name.Display))
		for _, alias := range name.Aliases {
			out = append(out, Normalize(alias))
		}
	}

	return out
}

// NameIndex memoizes the candidate names of a set of entities, keyed by id.
type NameIndex struct {
	names map[int]map[string]struct{}
}

func NewNameIndex(entities []roster.Entity) *NameIndex {
	x := &NameIndex{
		names: make(map[int]map[string]struct{}, len(entities)),
	}

	for i := range entities {
		set := make(map[string]struct{})
		for _, c := range Candidates(&entities[i]) {
			set[c] = struct{}{}
		}
		x.names[entities[i].ID] = set
	}

	return x
}

// Matches reports whether normalized equals one of e's candidate names.
// Entities that were not indexed are checked directly.
func (x *NameIndex) Matches(normalized string, e *roster.Entity) bool {
	if normalized == "" {
		return false
	}

	if set, ok := x.names[e.ID]; ok {
		_, found := set[normalized]
		return found
	}

	for _, c := range Candidates(e) {
		if c == normalized {
			return true
		}
	}

	return false
}
