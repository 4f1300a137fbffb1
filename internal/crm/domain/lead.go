package domain

import "time"

const (
	LeadStatusNew = "new"

	LeadSourceColdOutreach = "cold_outreach"
	LeadSourceInbound      = "inbound"
)

// Lead is a contact actively tracked in the sales pipeline.
// ProspectID is set only when the lead was created by promoting a
// prospect and is never cleared afterwards.
type Lead struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Status      string    `json:"status"`
	LeadSource  string    `json:"lead_source"`
	Research    string    `json:"research"`
	PainPoints  string    `json:"pain_points"`
	LinkedInURL string    `json:"linkedin_url"`
	ProspectID  *string   `json:"prospect_id,omitempty" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
