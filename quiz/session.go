/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/looplab/fsm"

	"github.com/Seednode/yokaiquiz/roster"
)

const (
	StateNotStarted = "not_started"
	StateInProgress = "in_progress"
	StateWon        = "won"
)

const (
	eventStart = "start"
	eventWin   = "win"
	eventReset = "reset"
)

type Option func(*Session)

// WithLanguage sets the language entities are revealed in.
func WithLanguage(lang string) Option {
	return func(s *Session) {
		s.lang = lang
	}
}

// WithExclusions replaces DefaultExclusions.
func WithExclusions(names []string) Option {
	return func(s *Session) {
		s.exclusions = slices.Clone(names)
	}
}

// WithDiagnostics receives data-integrity warnings, such as an entity
// without a name in the active language.
func WithDiagnostics(logf func(format string, args ...any)) Option {
	return func(s *Session) {
		s.logf = logf
	}
}

// WithNow replaces time.Now for the session clock.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session runs one play-through at a time: it owns the active pool, the
// found set, the consumed exclusions and the clock.
//
// A Session is not safe for concurrent use; the caller serializes input,
// clock frames and lifecycle calls.
type Session struct {
	state *fsm.FSM

	render     Renderer
	resolver   *Resolver
	progress   *Tracker
	clock      *Clock
	exclusions []string
	now        func() time.Time
	logf       func(format string, args ...any)

	pool  []roster.Entity
	label string
	lang  string
}

func NewSession(render Renderer, schedule Scheduler, opts ...Option) *Session {
	s := &Session{
		render:     render,
		progress:   NewTracker(),
		exclusions: DefaultExclusions,
		lang:       roster.DefaultLanguage,
		logf:       func(string, ...any) {},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.clock = NewClock(schedule, render.ShowTime, s.now)
	s.resolver = NewResolver(NewNameIndex(nil), s.exclusions)

	s.state = fsm.NewFSM(
		StateNotStarted,
		fsm.Events{
			{Name: eventStart, Src: []string{StateNotStarted, StateInProgress, StateWon}, Dst: StateInProgress},
			{Name: eventWin, Src: []string{StateInProgress}, Dst: StateWon},
			{Name: eventReset, Src: []string{StateNotStarted, StateInProgress, StateWon}, Dst: StateNotStarted},
		},
		fsm.Callbacks{},
	)

	return s
}

// Start begins a session over pool. Any session in progress is replaced.
func (s *Session) Start(pool []roster.Entity, label string) error {
	if len(pool) == 0 {
		return fmt.Errorf("%w: no yokai in %q", ErrConfiguration, label)
	}

	s.clock.Reset()
	s.progress.Reset()

	s.pool = slices.Clone(pool)
	s.label = label
	s.resolver = NewResolver(NewNameIndex(s.pool), s.exclusions)

	if err := s.transition(eventStart); err != nil {
		return err
	}

	s.render.ResetScore(len(s.pool))
	s.clock.Start()

	return nil
}

// HandleInput resolves raw against the pool and returns how many entities it
// newly found. Outside of a running session it returns ErrInvalidState.
func (s *Session) HandleInput(raw string) (int, error) {
	if !s.state.Is(StateInProgress) {
		return 0, ErrInvalidState
	}

	added := 0
	for _, e := range s.resolver.Resolve(raw, s.pool) {
		s.reveal(e)

		if s.progress.Has(e.ID) {
			continue
		}

		s.progress.Add(e.ID)
		added++

		s.render.UpdateScore(len(s.pool), s.progress.Count())
	}

	if added > 0 && s.progress.IsComplete(len(s.pool)) {
		s.clock.Stop()

		if err := s.transition(eventWin); err != nil {
			return added, err
		}

		s.render.Victory(Victory{
			Label:   s.label,
			Elapsed: s.clock.String(),
		})
	}

	return added, nil
}

// Reset returns to NotStarted from any state.
func (s *Session) Reset() {
	s.clock.Reset()
	s.progress.Reset()
	s.resolver.Reset()

	s.pool = nil
	s.label = ""

	// reset is valid from every state
	_ = s.transition(eventReset)

	s.render.ResetScore(0)
}

func (s *Session) State() string {
	return s.state.Current()
}

func (s *Session) Label() string {
	return s.label
}

func (s *Session) Language() string {
	return s.lang
}

// SetLanguage changes the language of later reveals.
func (s *Session) SetLanguage(lang string) {
	s.lang = lang
}

func (s *Session) Total() int {
	return len(s.pool)
}

func (s *Session) Found() int {
	return s.progress.Count()
}

// Elapsed returns the clock as MM:SS.
func (s *Session) Elapsed() string {
	return s.clock.String()
}

// Pool returns a copy of the active pool.
func (s *Session) Pool() []roster.Entity {
	return slices.Clone(s.pool)
}

// Revealed returns the found entities in discovery order.
func (s *Session) Revealed() []*roster.Entity {
	out := make([]*roster.Entity, 0, s.progress.Count())

	for _, id := range s.progress.IDs() {
		for i := range s.pool {
			if s.pool[i].ID == id {
				out = append(out, &s.pool[i])
				break
			}
		}
	}

	return out
}

func (s *Session) reveal(e *roster.Entity) {
	lang, ok := e.Names.Language(s.lang)
	if !ok {
		s.logf("QUIZ: yokai %d has no %q name, revealing in %q", e.ID, s.lang, lang)
	}

	s.render.Reveal(e, lang)
}

func (s *Session) transition(event string) error {
	err := s.state.Event(context.Background(), event)

	var same fsm.NoTransitionError
	if err != nil && !errors.As(err, &same) {
		return err
	}

	return nil
}
