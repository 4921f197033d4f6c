/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import "errors"

var (
	// ErrConfiguration is returned when a session cannot be started with the
	// given pool.
	ErrConfiguration = errors.New("invalid session configuration")

	// ErrInvalidState is returned for input outside of a running session.
	// Callers are expected to ignore it.
	ErrInvalidState = errors.New("session is not in progress")
)
