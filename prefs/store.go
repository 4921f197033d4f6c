/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package prefs stores per-player preferences such as language and theme.
package prefs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const (
	KeyLang  = "lang"
	KeyTheme = "theme"
)

var ErrInvalidPref = errors.New("invalid preference")

var langPattern = regexp.MustCompile(`^[a-z]{2,3}$`)

type Store interface {
	Get(player, key string) (string, bool, error)
	Set(player, key, value string) error
	All(player string) (map[string]string, error)
	Close() error
}

// Validate checks that key is known and value is acceptable for it.
func Validate(key, value string) error {
	switch key {
	case KeyLang:
		if !langPattern.MatchString(value) {
			return fmt.Errorf("%w: language %q", ErrInvalidPref, value)
		}
	case KeyTheme:
		if value != "light" && value != "dark" {
			return fmt.Errorf("%w: theme %q", ErrInvalidPref, value)
		}
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidPref, key)
	}

	return nil
}

// Open returns a sqlite store at path, or an in-memory store if path is
// empty.
func Open(path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return NewMemoryStore(), nil
	}

	return NewSQLiteStore(path)
}

type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prefs: make(map[string]map[string]string),
	}
}

func (s *MemoryStore) Get(player, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.prefs[player][key]

	return v, ok, nil
}

func (s *MemoryStore) Set(player, key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs[player] == nil {
		s.prefs[player] = make(map[string]string)
	}
	s.prefs[player][key] = value

	return nil
}

func (s *MemoryStore) All(player string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.prefs[player]))
	for k, v := range s.prefs[player] {
		out[k] = v
	}

	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
