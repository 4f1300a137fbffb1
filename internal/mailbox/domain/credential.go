package domain

import "time"

// MailboxCredential is the stored OAuth credential and sync cursor for
// one connected mailbox. HistoryCursor is the Gmail history id up to
// which inbox changes have been consumed; it never moves backward.
type MailboxCredential struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	EmailAddress  string    `json:"email_address" gorm:"uniqueIndex;not null"`
	AccessToken   string    `json:"-"`
	RefreshToken  string    `json:"-"`
	TokenExpiry   time.Time `json:"token_expiry"`
	HistoryCursor uint64    `json:"history_cursor"`

	// WatchExpiration is when the provider push watch lapses; nil
	// means no active watch.
	WatchExpiration *time.Time `json:"watch_expiration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
