package repository

import (
	crmdomain "crmhub-backend/internal/crm/domain"
)

// ProspectRepository defines the interface for prospect persistence
type ProspectRepository interface {
	// FindByEmail matches case-insensitively; returns (nil, nil) when no prospect exists
	FindByEmail(email string) (*crmdomain.Prospect, error)
	FindByID(id string) (*crmdomain.Prospect, error)
	Create(prospect *crmdomain.Prospect) error
	// MarkConverted records the promotion back-reference. It only
	// succeeds for a prospect that has not been converted yet; the
	// returned bool reports whether this call won the conversion.
	MarkConverted(prospectID, leadID string) (bool, error)
}
