/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import "github.com/Seednode/yokaiquiz/roster"

// Victory is published once, when the last entity of the pool is found.
type Victory struct {
	Label   string
	Elapsed string
}

// Renderer receives everything a session wants shown. Calls are made from
// within session methods and clock frames, never concurrently.
type Renderer interface {
	// Reveal shows the true name of e in lang.
	Reveal(e *roster.Entity, lang string)
	UpdateScore(total, found int)
	ResetScore(total int)
	ShowTime(elapsed string)
	Victory(v Victory)
}
