package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	crmdomain "crmhub-backend/internal/crm/domain"
	crmrepo "crmhub-backend/internal/crm/repository"
	ingestiondomain "crmhub-backend/internal/ingestion/domain"
	"crmhub-backend/pkg/gemini"

	"github.com/google/uuid"
)

// Classification thresholds are asymmetric on purpose: auto-dismissing
// a real lead is far more costly than sending junk to manual review.
const (
	leadConfidenceThreshold    = 0.60
	dismissConfidenceThreshold = 0.85
)

// TriageWriter persists pending-email records for unmatched senders and
// runs the classifier to finalize their status.
type TriageWriter struct {
	pending    crmrepo.PendingEmailRepository
	filter     *HeuristicFilter
	classifier EmailClassifier
}

func NewTriageWriter(pending crmrepo.PendingEmailRepository, filter *HeuristicFilter, classifier EmailClassifier) *TriageWriter {
	return &TriageWriter{
		pending:    pending,
		filter:     filter,
		classifier: classifier,
	}
}

// Triage applies the heuristic filter and, if the sender passes,
// persists a pending record and classifies it synchronously. The
// classifier runs before returning because the hosting environment may
// tear the handler down once it responds.
func (t *TriageWriter) Triage(ctx context.Context, nm *ingestiondomain.NormalizedMessage) error {
	if t.filter.IsObviouslyNotALead(nm.SenderEmail, nm) {
		log.Printf("[Triage] Skipping obvious non-lead sender %s", nm.SenderEmail)
		return nil
	}

	pe := &crmdomain.PendingEmail{
		ID:                uuid.New().String(),
		ProviderMessageID: nm.ProviderMessageID,
		SenderEmail:       nm.SenderEmail,
		SenderName:        nm.SenderName,
		Subject:           nm.Subject,
		Body:              nm.Body,
		Status:            crmdomain.PendingStatusPending,
		ReceivedAt:        nm.ReceivedAt,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	created, err := t.pending.CreateIfAbsent(pe)
	if err != nil {
		return fmt.Errorf("%w: pending insert: %v", ingestiondomain.ErrPersistenceFailure, err)
	}
	if !created {
		log.Printf("[Triage] Message %s already triaged", nm.ProviderMessageID)
		return nil
	}

	if t.classifier == nil || !t.classifier.Enabled() {
		// Degrade to manual review; the record stays pending.
		return nil
	}

	result, err := t.classifier.ClassifyEmail(ctx, nm.SenderEmail, nm.SenderName, nm.Subject, nm.Body)
	if err != nil {
		log.Printf("[Triage] Classifier unavailable for %s, leaving pending: %v", nm.ProviderMessageID, err)
		return nil
	}

	status := StatusForClassification(result)
	if err := t.pending.UpdateClassification(pe.ID, status, result.Classification, result.Confidence, result.Reason); err != nil {
		log.Printf("[Triage] Failed to store classification for %s: %v", pe.ID, err)
	}
	return nil
}

// StatusForClassification maps a classifier verdict to a triage status.
// Anything not confidently a lead and not confidently dismissable goes
// to manual review.
func StatusForClassification(result *gemini.Result) string {
	switch result.Classification {
	case gemini.ClassLead:
		if result.Confidence >= leadConfidenceThreshold {
			return crmdomain.PendingStatusLikelyLead
		}
	case gemini.ClassSpam, gemini.ClassPromotional, gemini.ClassTransactional:
		if result.Confidence >= dismissConfidenceThreshold {
			return crmdomain.PendingStatusAutoDismissed
		}
	}
	return crmdomain.PendingStatusNeedsReview
}
