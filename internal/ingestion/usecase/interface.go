package usecase

import (
	"context"

	"crmhub-backend/internal/automation"
	mailboxdomain "crmhub-backend/internal/mailbox/domain"
	"crmhub-backend/pkg/gemini"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
)

// HistoryFetcher retrieves full representations of messages added to
// the inbox since the given history cursor.
type HistoryFetcher interface {
	FetchHistorySince(ctx context.Context, token *oauth2.Token, cursor uint64) ([]*gmailapi.Message, error)
}

// TokenProvider yields a valid bearer token for a mailbox credential,
// refreshing the stored one when expired.
type TokenProvider interface {
	GetValidToken(ctx context.Context, cred *mailboxdomain.MailboxCredential) (*oauth2.Token, error)
}

// EmailClassifier is the external triage model. Enabled() false means
// classification is skipped and records stay pending.
type EmailClassifier interface {
	Enabled() bool
	ClassifyEmail(ctx context.Context, senderEmail, senderName, subject, body string) (*gemini.Result, error)
}

// ConversionNotifier dispatches a prospect-conversion event to the
// downstream automation endpoint, best-effort.
type ConversionNotifier interface {
	Enqueue(ev automation.ConversionEvent) bool
}
