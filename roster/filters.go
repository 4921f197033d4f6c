/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"fmt"
	"slices"
	"strings"
)

const ModeAll = "all"

// Mode is one selectable quiz category.
type Mode struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func filter(all []Entity, keep func(*Entity) bool) []Entity {
	out := make([]Entity, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}

	return out
}

func ByTribe(all []Entity, id string) []Entity {
	return filter(all, func(e *Entity) bool { return e.TribeID == id })
}

func ByRank(all []Entity, id string) []Entity {
	return filter(all, func(e *Entity) bool { return e.RankID == id })
}

func ByType(all []Entity, id string) []Entity {
	return filter(all, func(e *Entity) bool { return e.Type == id })
}

func ByFirstGame(all []Entity, id string) []Entity {
	return filter(all, func(e *Entity) bool { return e.FirstGameID == id })
}

// ByGame keeps every entity that appears in the game, not only those that
// debuted there.
func ByGame(all []Entity, id string) []Entity {
	return filter(all, func(e *Entity) bool { return slices.Contains(e.GameIDs, id) })
}

// Modes lists the quiz modes offered to players: everything, then each game,
// then each tribe, in file order.
func (r *Roster) Modes(lang, allLabel string) []Mode {
	modes := make([]Mode, 0, 1+len(r.Games)+len(r.Tribes))
	modes = append(modes, Mode{Key: ModeAll, Label: allLabel})

	for i := range r.Games {
		modes = append(modes, Mode{Key: "game:" + r.Games[i].ID, Label: r.Games[i].Label(lang)})
	}

	for i := range r.Tribes {
		modes = append(modes, Mode{Key: "tribe:" + r.Tribes[i].ID, Label: r.Tribes[i].Label(lang)})
	}

	return modes
}

// Pool returns the entities for a mode key. Besides the keys returned by
// Modes, rank:, type: and first-game: keys are accepted.
func (r *Roster) Pool(key string) ([]Entity, error) {
	if key == ModeAll {
		return slices.Clone(r.Yokai), nil
	}

	kind, id, ok := strings.Cut(key, ":")
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, key)
	}

	switch kind {
	case "game":
		if !hasCategory(r.Games, id) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMode, key)
		}
		return ByGame(r.Yokai, id), nil
	case "first-game":
		if !hasCategory(r.Games, id) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMode, key)
		}
		return ByFirstGame(r.Yokai, id), nil
	case "tribe":
		if !hasCategory(r.Tribes, id) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMode, key)
		}
		return ByTribe(r.Yokai, id), nil
	case "rank":
		return ByRank(r.Yokai, id), nil
	case "type":
		return ByType(r.Yokai, id), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, key)
}

// Label returns the localized label of a mode key.
func (r *Roster) Label(key, lang, allLabel string) string {
	if key == ModeAll {
		return allLabel
	}

	kind, id, _ := strings.Cut(key, ":")

	switch kind {
	case "game", "first-game":
		if c := findCategory(r.Games, id); c != nil {
			return c.Label(lang)
		}
	case "tribe":
		if c := findCategory(r.Tribes, id); c != nil {
			return c.Label(lang)
		}
	}

	return strings.ToUpper(id)
}

func findCategory(categories []Category, id string) *Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}

	return nil
}

func hasCategory(categories []Category, id string) bool {
	return findCategory(categories, id) != nil
}
