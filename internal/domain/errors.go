package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage rejects empty or whitespace-only user input.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrTurnInFlight rejects a submit while another turn is unresolved.
	// Submissions are rejected, never queued.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrSessionCompleted rejects turns on a finalized session.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrSessionReset reports that a session was reset while a turn was in
	// flight; the stale response is discarded without touching the log.
	ErrSessionReset = errors.New("session was reset while the turn was in flight")

	ErrSessionNotFound = errors.New("session not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnauthorized    = errors.New("missing or invalid credentials")
)

// DataQualityError reports a malformed assessment payload, e.g. a confidence
// outside [0,1] or an unknown urgency token. Such payloads are logged and
// refused, never coerced into a plausible-looking value.
type DataQualityError struct {
	Field  string
	Value  any
	Reason string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality: %s=%v: %s", e.Field, e.Value, e.Reason)
}
