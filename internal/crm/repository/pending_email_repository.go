package repository

import (
	"time"

	crmdomain "crmhub-backend/internal/crm/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pendingEmailRepository implements PendingEmailRepository interface
type pendingEmailRepository struct {
	db *gorm.DB
}

// NewPendingEmailRepository creates a new instance of pendingEmailRepository
func NewPendingEmailRepository(db *gorm.DB) PendingEmailRepository {
	return &pendingEmailRepository{db: db}
}

func (r *pendingEmailRepository) CreateIfAbsent(pe *crmdomain.PendingEmail) (bool, error) {
	// ON CONFLICT DO NOTHING on the provider message id: a redelivered
	// notification for an already-triaged message is a silent no-op.
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_message_id"}},
		DoNothing: true,
	}).Create(pe)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *pendingEmailRepository) FindByID(id string) (*crmdomain.PendingEmail, error) {
	var pe crmdomain.PendingEmail
	err := r.db.Where("id = ?", id).First(&pe).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pe, nil
}

func (r *pendingEmailRepository) List(status string, limit, offset int) ([]*crmdomain.PendingEmail, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Order("received_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var pending []*crmdomain.PendingEmail
	err := query.Find(&pending).Error
	return pending, err
}

func (r *pendingEmailRepository) UpdateClassification(id, status, classification string, confidence float64, reason string) error {
	return r.db.Model(&crmdomain.PendingEmail{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":            status,
		"ai_classification": classification,
		"ai_confidence":     confidence,
		"ai_reason":         reason,
		"updated_at":        time.Now(),
	}).Error
}

func (r *pendingEmailRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&crmdomain.PendingEmail{}).Error
}
