package usecase

import (
	"context"
	"errors"
	"log"

	ingestiondomain "crmhub-backend/internal/ingestion/domain"
	mailboxrepo "crmhub-backend/internal/mailbox/repository"
	"crmhub-backend/pkg/mailtext"

	gmailapi "google.golang.org/api/gmail/v1"
)

// Pipeline is the inbound-email ingestion pipeline driven by mailbox
// push notifications: token → history fetch → per-message normalize,
// resolve, file/promote/triage → cursor advance.
type Pipeline struct {
	credentials mailboxrepo.CredentialRepository
	tokens      TokenProvider
	fetcher     HistoryFetcher
	normalizer  *mailtext.Normalizer
	resolver    *EntityResolver
	triage      *TriageWriter
}

func NewPipeline(
	credentials mailboxrepo.CredentialRepository,
	tokens TokenProvider,
	fetcher HistoryFetcher,
	normalizer *mailtext.Normalizer,
	resolver *EntityResolver,
	triage *TriageWriter,
) *Pipeline {
	return &Pipeline{
		credentials: credentials,
		tokens:      tokens,
		fetcher:     fetcher,
		normalizer:  normalizer,
		resolver:    resolver,
		triage:      triage,
	}
}

// HandleNotification processes one mailbox-change notification to
// completion. Every message in the batch is attempted independently;
// the cursor is advanced once, after the batch, to the notification's
// history id. The returned count is the number of messages processed
// without error. An unknown mailbox is a no-op, not an error.
func (p *Pipeline) HandleNotification(ctx context.Context, emailAddress string, historyID uint64) (int, error) {
	cred, err := p.credentials.FindByEmailAddress(emailAddress)
	if err != nil {
		return 0, err
	}
	if cred == nil {
		log.Printf("[Pipeline] No connected mailbox for %s, ignoring notification", emailAddress)
		return 0, nil
	}

	token, err := p.tokens.GetValidToken(ctx, cred)
	if err != nil {
		return 0, err
	}

	startCursor := cred.HistoryCursor
	if startCursor == 0 {
		// First notification for this mailbox: nothing has been synced
		// yet, so start from the history id it carries.
		startCursor = historyID
	}

	messages, err := p.fetcher.FetchHistorySince(ctx, token, startCursor)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, raw := range messages {
		if err := p.processMessage(ctx, raw); err != nil {
			if errors.Is(err, ingestiondomain.ErrDuplicateSuppressed) {
				log.Printf("[Pipeline] %v", err)
				processed++
				continue
			}
			log.Printf("[Pipeline] Failed to process message %s: %v", raw.Id, err)
			continue
		}
		processed++
	}

	p.advanceCursor(cred.ID, cred.HistoryCursor, historyID)

	return processed, nil
}

func (p *Pipeline) processMessage(ctx context.Context, raw *gmailapi.Message) error {
	nm := p.normalizer.Normalize(raw)
	if nm.SenderEmail == "" {
		log.Printf("[Pipeline] Message %s has no parseable sender, skipping", raw.Id)
		return nil
	}

	lead, prospect, err := p.resolver.Resolve(nm.SenderEmail)
	if err != nil {
		return err
	}

	switch {
	case lead != nil:
		_, err := p.resolver.FileMessage(lead, nm)
		return err
	case prospect != nil:
		promoted, err := p.resolver.Promote(prospect, nm)
		if err != nil {
			return err
		}
		log.Printf("[Pipeline] Promoted prospect %s to lead %s", prospect.ID, promoted.ID)
		return nil
	default:
		return p.triage.Triage(ctx, nm)
	}
}

// advanceCursor moves the stored cursor to the notification's history
// id with a conditional write. A failed write is logged, not retried:
// the consequence is bounded reprocessing on the next delivery, which
// the duplicate checks downstream absorb.
func (p *Pipeline) advanceCursor(credID string, oldCursor, newCursor uint64) {
	if newCursor <= oldCursor {
		return
	}
	applied, err := p.credentials.AdvanceCursor(credID, oldCursor, newCursor)
	if err != nil {
		log.Printf("[Pipeline] Cursor update failed for %s: %v", credID, err)
		return
	}
	if !applied {
		log.Printf("[Pipeline] Cursor for %s moved by a concurrent invocation, leaving it", credID)
	}
}
