package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	mailboxdomain "crmhub-backend/internal/mailbox/domain"
	"crmhub-backend/internal/mailbox/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	// ErrCredentialMissing indicates no credential record exists for the mailbox
	ErrCredentialMissing = errors.New("mailbox credential missing")
	// ErrRefreshFailed indicates the identity provider rejected the refresh token
	ErrRefreshFailed = errors.New("token refresh failed")
)

// CredentialUsecase yields valid bearer tokens for connected mailboxes,
// refreshing and persisting expired ones.
type CredentialUsecase interface {
	GetCredential(emailAddress string) (*mailboxdomain.MailboxCredential, error)
	GetValidToken(ctx context.Context, cred *mailboxdomain.MailboxCredential) (*oauth2.Token, error)
}

type credentialUsecase struct {
	repo     repository.CredentialRepository
	oauthCfg *oauth2.Config
}

// NewCredentialUsecase creates a new instance of credentialUsecase
func NewCredentialUsecase(repo repository.CredentialRepository, clientID, clientSecret string) CredentialUsecase {
	return &credentialUsecase{
		repo: repo,
		oauthCfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
		},
	}
}

func (u *credentialUsecase) GetCredential(emailAddress string) (*mailboxdomain.MailboxCredential, error) {
	cred, err := u.repo.FindByEmailAddress(emailAddress)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, fmt.Errorf("%w: %s", ErrCredentialMissing, emailAddress)
	}
	return cred, nil
}

// GetValidToken returns the stored access token, exchanging the refresh
// token first when it has expired. A refresh persists the new access
// token and expiry; the refresh token is kept when the provider omits
// it from the exchange response.
func (u *credentialUsecase) GetValidToken(ctx context.Context, cred *mailboxdomain.MailboxCredential) (*oauth2.Token, error) {
	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       cred.TokenExpiry,
	}

	if token.Valid() {
		return token, nil
	}

	fresh, err := u.oauthCfg.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cred.RefreshToken
	}

	cred.AccessToken = fresh.AccessToken
	cred.RefreshToken = fresh.RefreshToken
	cred.TokenExpiry = fresh.Expiry
	if err := u.repo.UpdateTokens(cred); err != nil {
		// The refreshed token is still usable; the next invocation will
		// simply refresh again.
		log.Printf("[Mailbox] Failed to persist refreshed token for %s: %v", cred.EmailAddress, err)
	}

	return fresh, nil
}
