package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAlreadySyncing means a sync is in flight for this (user, source)
	// pair; the trigger is rejected, never queued.
	ErrAlreadySyncing = errors.New("sync already in progress")
	// ErrUnsupportedSelector means the connector does not implement the
	// requested fetch capability (e.g. fetch-by-ids on a source without it).
	ErrUnsupportedSelector = errors.New("selector not supported by source")
	// ErrUnknownSource means no connector is registered for the source type.
	ErrUnknownSource = errors.New("unknown source type")
)

// TransientError marks a fetch failure worth retrying: rate limits,
// network errors, upstream 5xx. Anything else aborts the unit immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient fetch error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err should be retried with backoff.
// Deadline expiry counts: a timed-out fetch is retried, not crashed.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
