package actions

import (
	"context"
	"errors"
	"net"
)

// TransientError marks a failure worth retrying: network errors, timeouts,
// resource exhaustion.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure that retrying cannot fix: bad config,
// permission denied, unresolvable template fields.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// MarkTransient wraps err as retriable.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}

	return &TransientError{Err: err}
}

// MarkPermanent wraps err as non-retriable.
func MarkPermanent(err error) error {
	if err == nil {
		return nil
	}

	return &PermanentError{Err: err}
}

// IsTransient reports whether err should be retried. Unclassified network
// timeouts and context deadline expiry count as transient; anything marked
// permanent does not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
