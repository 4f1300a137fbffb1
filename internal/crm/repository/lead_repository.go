package repository

import (
	"strings"

	crmdomain "crmhub-backend/internal/crm/domain"

	"gorm.io/gorm"
)

// leadRepository implements LeadRepository interface
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new instance of leadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) FindByEmail(email string) (*crmdomain.Lead, error) {
	var lead crmdomain.Lead
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&lead).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindByID(id string) (*crmdomain.Lead, error) {
	var lead crmdomain.Lead
	err := r.db.Where("id = ?", id).First(&lead).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) Create(lead *crmdomain.Lead) error {
	return r.db.Create(lead).Error
}

func (r *leadRepository) List(limit, offset int) ([]*crmdomain.Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	var leads []*crmdomain.Lead
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&leads).Error
	return leads, err
}
