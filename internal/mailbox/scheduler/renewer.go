package scheduler

import (
	"context"
	"log"
	"time"

	mailboxdomain "crmhub-backend/internal/mailbox/domain"
	mailboxrepo "crmhub-backend/internal/mailbox/repository"

	"golang.org/x/oauth2"
)

// TokenProvider yields a valid bearer token for a mailbox credential.
type TokenProvider interface {
	GetValidToken(ctx context.Context, cred *mailboxdomain.MailboxCredential) (*oauth2.Token, error)
}

// WatchStarter registers a push watch and returns its starting history
// id and expiration.
type WatchStarter interface {
	Watch(ctx context.Context, token *oauth2.Token, topicName string) (uint64, time.Time, error)
}

// WatchRenewer re-registers provider push watches before they lapse.
// Gmail expires a watch after about seven days; a lapsed watch means
// notifications silently stop for that mailbox.
type WatchRenewer struct {
	credentials mailboxrepo.CredentialRepository
	tokens      TokenProvider
	watcher     WatchStarter
	topicName   string
	interval    time.Duration
	leadTime    time.Duration
	stopChan    chan struct{}
}

// NewWatchRenewer creates a new renewer
func NewWatchRenewer(credentials mailboxrepo.CredentialRepository, tokens TokenProvider, watcher WatchStarter, topicName string) *WatchRenewer {
	return &WatchRenewer{
		credentials: credentials,
		tokens:      tokens,
		watcher:     watcher,
		topicName:   topicName,
		interval:    6 * time.Hour,
		leadTime:    24 * time.Hour,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the renewal loop
func (r *WatchRenewer) Start() {
	if r.topicName == "" {
		log.Println("[WatchRenewer] No pub/sub topic configured, renewer disabled")
		return
	}

	log.Printf("[WatchRenewer] Starting watch renewer (interval: %s)", r.interval)

	go func() {
		// Run immediately on start
		r.renewExpiring()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.renewExpiring()
			case <-r.stopChan:
				log.Println("[WatchRenewer] Renewer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the renewer
func (r *WatchRenewer) Stop() {
	close(r.stopChan)
}

// renewExpiring finds watches lapsing within the lead time and
// re-registers each one, persisting the new expiration.
func (r *WatchRenewer) renewExpiring() {
	deadline := time.Now().Add(r.leadTime)

	creds, err := r.credentials.ListWatchesExpiringBefore(deadline)
	if err != nil {
		log.Printf("[WatchRenewer] Error listing expiring watches: %v", err)
		return
	}
	if len(creds) == 0 {
		return
	}

	log.Printf("[WatchRenewer] Found %d watches to renew", len(creds))

	for _, cred := range creds {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		r.renewOne(ctx, cred)
		cancel()
	}
}

func (r *WatchRenewer) renewOne(ctx context.Context, cred *mailboxdomain.MailboxCredential) {
	token, err := r.tokens.GetValidToken(ctx, cred)
	if err != nil {
		log.Printf("[WatchRenewer] Token refresh failed for %s: %v", cred.EmailAddress, err)
		return
	}

	historyID, expiration, err := r.watcher.Watch(ctx, token, r.topicName)
	if err != nil {
		log.Printf("[WatchRenewer] Failed to renew watch for %s: %v", cred.EmailAddress, err)
		return
	}

	if err := r.credentials.UpdateWatch(cred.ID, &expiration); err != nil {
		log.Printf("[WatchRenewer] Failed to store new expiration for %s: %v", cred.EmailAddress, err)
		return
	}

	if cred.HistoryCursor == 0 {
		if _, err := r.credentials.AdvanceCursor(cred.ID, 0, historyID); err != nil {
			log.Printf("[WatchRenewer] Failed to seed cursor for %s: %v", cred.EmailAddress, err)
		}
	}

	log.Printf("[WatchRenewer] Renewed watch for %s (expires %s)", cred.EmailAddress, expiration.Format(time.RFC3339))
}
