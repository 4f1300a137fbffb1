package repository

import (
	crmdomain "crmhub-backend/internal/crm/domain"
)

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	// FindByEmail matches case-insensitively; returns (nil, nil) when no lead exists
	FindByEmail(email string) (*crmdomain.Lead, error)
	FindByID(id string) (*crmdomain.Lead, error)
	Create(lead *crmdomain.Lead) error
	List(limit, offset int) ([]*crmdomain.Lead, error)
}
