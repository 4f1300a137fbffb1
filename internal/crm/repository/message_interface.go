package repository

import (
	"time"

	crmdomain "crmhub-backend/internal/crm/domain"
)

// MessageRepository defines the interface for stored message persistence
type MessageRepository interface {
	Create(msg *crmdomain.Message) error
	// HasRecentDuplicate reports whether a message with the same
	// subject and direction was already filed on the lead at or after
	// the given time (duplicate-delivery suppression window).
	HasRecentDuplicate(leadID, subject, direction string, since time.Time) (bool, error)
	ListByLead(leadID string) ([]*crmdomain.Message, error)
}
