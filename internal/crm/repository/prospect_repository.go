package repository

import (
	"strings"
	"time"

	crmdomain "crmhub-backend/internal/crm/domain"

	"gorm.io/gorm"
)

// prospectRepository implements ProspectRepository interface
type prospectRepository struct {
	db *gorm.DB
}

// NewProspectRepository creates a new instance of prospectRepository
func NewProspectRepository(db *gorm.DB) ProspectRepository {
	return &prospectRepository{db: db}
}

func (r *prospectRepository) FindByEmail(email string) (*crmdomain.Prospect, error) {
	var prospect crmdomain.Prospect
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&prospect).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &prospect, nil
}

func (r *prospectRepository) FindByID(id string) (*crmdomain.Prospect, error) {
	var prospect crmdomain.Prospect
	err := r.db.Where("id = ?", id).First(&prospect).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &prospect, nil
}

func (r *prospectRepository) Create(prospect *crmdomain.Prospect) error {
	return r.db.Create(prospect).Error
}

func (r *prospectRepository) MarkConverted(prospectID, leadID string) (bool, error) {
	// Conditional update: a second promotion attempt for the same
	// prospect matches zero rows.
	result := r.db.Model(&crmdomain.Prospect{}).
		Where("id = ? AND converted_to_lead_id IS NULL", prospectID).
		Updates(map[string]interface{}{
			"converted_to_lead_id": leadID,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
