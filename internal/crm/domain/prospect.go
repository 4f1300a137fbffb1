package domain

import "time"

// Prospect is a cold-outreach contact that has not yet replied.
// A prospect is promoted to a lead at most once; ConvertedToLeadID is
// the back-reference created at promotion time.
type Prospect struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	Name              string    `json:"name"`
	Company           string    `json:"company"`
	Research          string    `json:"research"`
	PainPoints        string    `json:"pain_points"`
	LinkedInURL       string    `json:"linkedin_url"`
	ConvertedToLeadID *string   `json:"converted_to_lead_id,omitempty" gorm:"index"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
