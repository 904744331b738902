package domain

import "errors"

// Sentinel errors used across layers.
var (
	// ErrInvalidFormat: the text is not exactly two colon-separated digit fields.
	ErrInvalidFormat = errors.New("invalid time format")
	// ErrEmptyOrZero: start was requested with blank or zero pending time.
	ErrEmptyOrZero = errors.New("time is empty or zero")
	// ErrNothingToRestart: restart was requested before any duration was started.
	ErrNothingToRestart = errors.New("no previous time to restart")

	ErrNotFound        = errors.New("not found")
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	ErrNotRunning      = errors.New("supervisor is not running")
)
