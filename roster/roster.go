/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package roster loads the Yo-kai roster and the categories (tribes and games)
// used to build quiz pools.
package roster

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultLanguage is used whenever an entity or category lacks a name in the
// requested language.
const DefaultLanguage = "en"

var (
	ErrInvalidRoster = errors.New("invalid roster")
	ErrUnknownMode   = errors.New("unknown quiz mode")
)

// Name is the display name of an entity in one language, plus any accepted
// alternate spellings.
type Name struct {
	Display string   `json:"display" yaml:"display"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Names maps a language code to the name in that language.
type Names map[string]Name

// Language returns lang if a name exists for it. Otherwise it returns the
// default language, or failing that the first language in sorted order, and
// false.
func (n Names) Language(lang string) (string, bool) {
	if _, ok := n[lang]; ok {
		return lang, true
	}
	if _, ok := n[DefaultLanguage]; ok {
		return DefaultLanguage, false
	}

	langs := make([]string, 0, len(n))
	for l := range n {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	if len(langs) == 0 {
		return "", false
	}

	return langs[0], false
}

// Display returns the display name in lang, falling back as Language does.
func (n Names) Display(lang string) string {
	l, _ := n.Language(lang)

	return n[l].Display
}

// Entity is a single Yo-kai.
type Entity struct {
	ID          int      `json:"id" yaml:"id"`
	Image       string   `json:"image" yaml:"image"`
	TribeID     string   `json:"tribe_id" yaml:"tribe_id"`
	RankID      string   `json:"rank_id" yaml:"rank_id"`
	Type        string   `json:"yokai_type" yaml:"yokai_type"`
	FirstGameID string   `json:"first_game_id" yaml:"first_game_id"`
	GameIDs     []string `json:"game_ids" yaml:"game_ids"`
	Names       Names    `json:"names" yaml:"names"`
}

func (e *Entity) DisplayName(lang string) string {
	return e.Names.Display(lang)
}

// Category is a tribe or a game.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Names Names  `json:"names" yaml:"names"`
}

func (c *Category) Label(lang string) string {
	if label := c.Names.Display(lang); label != "" {
		return label
	}

	return c.ID
}

type Roster struct {
	Yokai  []Entity
	Tribes []Category
	Games  []Category
}

func (r *Roster) validate() error {
	seen := make(map[int]bool, len(r.Yokai))

	for _, e := range r.Yokai {
		if seen[e.ID] {
			return fmt.Errorf("%w: duplicate yokai id %d", ErrInvalidRoster, e.ID)
		}
		seen[e.ID] = true

		if len(e.Names) == 0 {
			return fmt.Errorf("%w: yokai %d has no names", ErrInvalidRoster, e.ID)
		}

		for lang, name := range e.Names {
			if name.Display == "" {
				return fmt.Errorf("%w: yokai %d has an empty %q display name", ErrInvalidRoster, e.ID, lang)
			}
			for _, alias := range name.Aliases {
				if alias == "" {
					return fmt.Errorf("%w: yokai %d has an empty %q alias", ErrInvalidRoster, e.ID, lang)
				}
			}
		}
	}

	for _, categories := range [][]Category{r.Tribes, r.Games} {
		ids := make(map[string]bool, len(categories))
		for _, c := range categories {
			if c.ID == "" || ids[c.ID] {
				return fmt.Errorf("%w: missing or duplicate category id %q", ErrInvalidRoster, c.ID)
			}
			ids[c.ID] = true
		}
	}

	return nil
}
