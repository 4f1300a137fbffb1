package domain

import "time"

const (
	PendingStatusPending       = "pending"
	PendingStatusLikelyLead    = "likely_lead"
	PendingStatusNeedsReview   = "needs_review"
	PendingStatusAutoDismissed = "auto_dismissed"
)

// PendingEmail is a triage record for mail from a sender matching
// neither a lead nor a prospect. The unique index on the provider
// message id makes insertion idempotent under duplicate webhook
// delivery. A row is deleted when a human resolves it (approve, link
// or dismiss).
type PendingEmail struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	ProviderMessageID string    `json:"provider_message_id" gorm:"uniqueIndex;not null"`
	SenderEmail       string    `json:"sender_email" gorm:"index;not null"`
	SenderName        string    `json:"sender_name"`
	Subject           string    `json:"subject"`
	Body              string    `json:"body"`
	Status            string    `json:"status" gorm:"index;not null"`
	AIClassification  *string   `json:"ai_classification,omitempty"`
	AIConfidence      *float64  `json:"ai_confidence,omitempty"`
	AIReason          string    `json:"ai_reason"`
	ReceivedAt        time.Time `json:"received_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
