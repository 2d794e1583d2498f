package domain

import "errors"

// ErrNoValidTransition is returned when no step of the current group satisfies its condition.
var ErrNoValidTransition = errors.New("no valid transition")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptySessionID is returned by stores when asked to persist an anonymous session.
var ErrEmptySessionID = errors.New("session id cannot be empty")

// ErrInvalidSessionID is returned by stores that cannot represent a session ID (e.g. path separators on disk).
var ErrInvalidSessionID = errors.New("invalid session id")

// ErrInvalidAnswer is returned when a submitted answer is rejected before it reaches the session.
var ErrInvalidAnswer = errors.New("invalid answer")
