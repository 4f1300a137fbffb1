package domain

import "time"

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is one stored communication on a lead. Inbound messages are
// created by the ingestion pipeline with IsRead=false.
type Message struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	LeadID            string    `json:"lead_id" gorm:"index;not null"`
	Direction         string    `json:"direction" gorm:"not null"`
	Subject           string    `json:"subject"`
	Body              string    `json:"body"`
	ThreadID          string    `json:"thread_id"`
	ProviderMessageID string    `json:"provider_message_id" gorm:"index"`
	IsRead            bool      `json:"is_read"`
	ReceivedAt        time.Time `json:"received_at"`
	CreatedAt         time.Time `json:"created_at"`
}
