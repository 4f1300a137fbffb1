package repository

import (
	crmdomain "crmhub-backend/internal/crm/domain"
)

// PendingEmailRepository defines the interface for triage record persistence
type PendingEmailRepository interface {
	// CreateIfAbsent inserts the record unless one already exists for
	// the same provider message id. Returns whether a row was created.
	CreateIfAbsent(pe *crmdomain.PendingEmail) (bool, error)
	FindByID(id string) (*crmdomain.PendingEmail, error)
	List(status string, limit, offset int) ([]*crmdomain.PendingEmail, error)
	UpdateClassification(id, status, classification string, confidence float64, reason string) error
	Delete(id string) error
}
