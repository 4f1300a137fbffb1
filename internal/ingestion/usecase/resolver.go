package usecase

import (
	"fmt"
	"log"
	"time"

	"crmhub-backend/internal/automation"
	crmdomain "crmhub-backend/internal/crm/domain"
	crmrepo "crmhub-backend/internal/crm/repository"
	ingestiondomain "crmhub-backend/internal/ingestion/domain"

	"github.com/google/uuid"
)

// duplicateWindow is the suppression window for redundant webhook
// delivery of the same physical email: a message with the same lead,
// subject and direction filed within this window is dropped.
const duplicateWindow = 60 * time.Second

// EntityResolver matches inbound senders against known leads and
// prospects, files messages, and promotes prospects to leads on reply.
type EntityResolver struct {
	leads     crmrepo.LeadRepository
	prospects crmrepo.ProspectRepository
	messages  crmrepo.MessageRepository
	notifier  ConversionNotifier
}

func NewEntityResolver(leads crmrepo.LeadRepository, prospects crmrepo.ProspectRepository, messages crmrepo.MessageRepository, notifier ConversionNotifier) *EntityResolver {
	return &EntityResolver{
		leads:     leads,
		prospects: prospects,
		messages:  messages,
		notifier:  notifier,
	}
}

// Resolve matches the sender email, leads first: a lead always wins
// over a stale prospect record for the same address. A prospect that
// was already converted resolves to its lead, so a redelivered reply
// can never promote twice.
func (r *EntityResolver) Resolve(senderEmail string) (*crmdomain.Lead, *crmdomain.Prospect, error) {
	lead, err := r.leads.FindByEmail(senderEmail)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: lead lookup: %v", ingestiondomain.ErrPersistenceFailure, err)
	}
	if lead != nil {
		return lead, nil, nil
	}

	prospect, err := r.prospects.FindByEmail(senderEmail)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: prospect lookup: %v", ingestiondomain.ErrPersistenceFailure, err)
	}
	if prospect == nil {
		return nil, nil, nil
	}

	if prospect.ConvertedToLeadID != nil {
		lead, err := r.leads.FindByID(*prospect.ConvertedToLeadID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: converted lead lookup: %v", ingestiondomain.ErrPersistenceFailure, err)
		}
		if lead != nil {
			return lead, nil, nil
		}
	}

	return nil, prospect, nil
}

// FileMessage stores the inbound message on the lead unless an
// identical one (same subject and direction) was filed within the
// duplicate-delivery window.
func (r *EntityResolver) FileMessage(lead *crmdomain.Lead, nm *ingestiondomain.NormalizedMessage) (*crmdomain.Message, error) {
	dup, err := r.messages.HasRecentDuplicate(lead.ID, nm.Subject, crmdomain.DirectionInbound, time.Now().Add(-duplicateWindow))
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check: %v", ingestiondomain.ErrPersistenceFailure, err)
	}
	if dup {
		return nil, fmt.Errorf("%w: lead %s subject %q", ingestiondomain.ErrDuplicateSuppressed, lead.ID, nm.Subject)
	}

	msg := &crmdomain.Message{
		ID:                uuid.New().String(),
		LeadID:            lead.ID,
		Direction:         crmdomain.DirectionInbound,
		Subject:           nm.Subject,
		Body:              nm.Body,
		ThreadID:          nm.ThreadID,
		ProviderMessageID: nm.ProviderMessageID,
		IsRead:            false,
		ReceivedAt:        nm.ReceivedAt,
		CreatedAt:         time.Now(),
	}
	if err := r.messages.Create(msg); err != nil {
		return nil, fmt.Errorf("%w: message insert: %v", ingestiondomain.ErrPersistenceFailure, err)
	}
	return msg, nil
}

// Promote converts a prospect into a lead on its first reply: a new
// lead is seeded from the prospect's research fields, the two records
// are linked, the message is filed against the new lead, and the
// downstream automation endpoint is notified best-effort.
func (r *EntityResolver) Promote(prospect *crmdomain.Prospect, nm *ingestiondomain.NormalizedMessage) (*crmdomain.Lead, error) {
	prospectID := prospect.ID
	lead := &crmdomain.Lead{
		ID:          uuid.New().String(),
		Email:       prospect.Email,
		Name:        prospect.Name,
		Company:     prospect.Company,
		Status:      crmdomain.LeadStatusNew,
		LeadSource:  crmdomain.LeadSourceColdOutreach,
		Research:    prospect.Research,
		PainPoints:  prospect.PainPoints,
		LinkedInURL: prospect.LinkedInURL,
		ProspectID:  &prospectID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := r.leads.Create(lead); err != nil {
		return nil, fmt.Errorf("%w: lead insert: %v", ingestiondomain.ErrPersistenceFailure, err)
	}

	won, err := r.prospects.MarkConverted(prospect.ID, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: prospect conversion: %v", ingestiondomain.ErrPersistenceFailure, err)
	}
	if !won {
		// A concurrent delivery converted this prospect first.
		log.Printf("[Resolver] Prospect %s already converted, filing on existing lead", prospect.ID)
	}
	leadID := lead.ID
	prospect.ConvertedToLeadID = &leadID

	msg, err := r.FileMessage(lead, nm)
	if err != nil {
		return nil, err
	}

	if r.notifier != nil {
		r.notifier.Enqueue(automation.ConversionEvent{
			Event:         automation.EventProspectReplied,
			ProspectEmail: prospect.Email,
			Prospect:      prospect,
			Lead:          lead,
			Message:       msg,
			Timestamp:     time.Now(),
		})
	}

	return lead, nil
}
