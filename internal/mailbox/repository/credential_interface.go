package repository

import (
	"time"

	mailboxdomain "crmhub-backend/internal/mailbox/domain"
)

// CredentialRepository defines the interface for mailbox credential persistence
type CredentialRepository interface {
	// FindByEmailAddress matches case-insensitively; returns (nil, nil) when no record exists
	FindByEmailAddress(emailAddress string) (*mailboxdomain.MailboxCredential, error)
	FindByID(id string) (*mailboxdomain.MailboxCredential, error)
	UpdateTokens(cred *mailboxdomain.MailboxCredential) error
	// UpdateWatch records the push watch expiration; nil clears it.
	UpdateWatch(id string, expiration *time.Time) error
	// ListWatchesExpiringBefore returns credentials with an active
	// watch that lapses before the given time.
	ListWatchesExpiringBefore(deadline time.Time) ([]*mailboxdomain.MailboxCredential, error)
	// AdvanceCursor moves the history cursor forward with a conditional
	// write keyed on the expected previous value. Returns whether the
	// update applied; a lost race against a concurrent invocation is
	// reported as false, not as an error.
	AdvanceCursor(id string, expectedOld, newCursor uint64) (bool, error)
}
