package domain

import "errors"

var (
	// ErrMalformedNotification indicates an undecodable push envelope.
	// Terminal for the invocation; the missing data will not appear on
	// a retry.
	ErrMalformedNotification = errors.New("malformed notification envelope")

	// ErrDuplicateSuppressed is a no-op outcome, not a failure: the
	// message was already filed within the suppression window.
	ErrDuplicateSuppressed = errors.New("duplicate message suppressed")

	// ErrClassifierUnreachable is a soft failure; the triage record
	// stays pending for manual review.
	ErrClassifierUnreachable = errors.New("classifier unreachable")

	// ErrPersistenceFailure indicates a database write failed.
	ErrPersistenceFailure = errors.New("persistence failure")
)
