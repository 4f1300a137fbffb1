package repository

import (
	"strings"
	"time"

	mailboxdomain "crmhub-backend/internal/mailbox/domain"

	"gorm.io/gorm"
)

// credentialRepository implements CredentialRepository interface
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new instance of credentialRepository
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) FindByEmailAddress(emailAddress string) (*mailboxdomain.MailboxCredential, error) {
	var cred mailboxdomain.MailboxCredential
	err := r.db.Where("LOWER(email_address) = ?", strings.ToLower(strings.TrimSpace(emailAddress))).First(&cred).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) FindByID(id string) (*mailboxdomain.MailboxCredential, error) {
	var cred mailboxdomain.MailboxCredential
	err := r.db.Where("id = ?", id).First(&cred).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) UpdateTokens(cred *mailboxdomain.MailboxCredential) error {
	return r.db.Model(&mailboxdomain.MailboxCredential{}).Where("id = ?", cred.ID).Updates(map[string]interface{}{
		"access_token":  cred.AccessToken,
		"refresh_token": cred.RefreshToken,
		"token_expiry":  cred.TokenExpiry,
		"updated_at":    time.Now(),
	}).Error
}

func (r *credentialRepository) UpdateWatch(id string, expiration *time.Time) error {
	return r.db.Model(&mailboxdomain.MailboxCredential{}).Where("id = ?", id).Updates(map[string]interface{}{
		"watch_expiration": expiration,
		"updated_at":       time.Now(),
	}).Error
}

func (r *credentialRepository) ListWatchesExpiringBefore(deadline time.Time) ([]*mailboxdomain.MailboxCredential, error) {
	var creds []*mailboxdomain.MailboxCredential
	err := r.db.Where("watch_expiration IS NOT NULL AND watch_expiration < ?", deadline).Find(&creds).Error
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *credentialRepository) AdvanceCursor(id string, expectedOld, newCursor uint64) (bool, error) {
	if newCursor <= expectedOld {
		// The cursor never moves backward.
		return false, nil
	}
	result := r.db.Model(&mailboxdomain.MailboxCredential{}).
		Where("id = ? AND history_cursor = ?", id, expectedOld).
		Updates(map[string]interface{}{
			"history_cursor": newCursor,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
