package repository

import (
	"time"

	crmdomain "crmhub-backend/internal/crm/domain"

	"gorm.io/gorm"
)

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of messageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *crmdomain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) HasRecentDuplicate(leadID, subject, direction string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&crmdomain.Message{}).
		Where("lead_id = ? AND subject = ? AND direction = ? AND created_at >= ?", leadID, subject, direction, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *messageRepository) ListByLead(leadID string) ([]*crmdomain.Message, error) {
	var messages []*crmdomain.Message
	err := r.db.Where("lead_id = ?", leadID).Order("received_at DESC").Find(&messages).Error
	return messages, err
}
