package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mailboxdomain "crmhub-backend/internal/mailbox/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type recordingCredRepo struct {
	cred      *mailboxdomain.MailboxCredential
	updated   []*mailboxdomain.MailboxCredential
	updateErr error
}

func (r *recordingCredRepo) FindByEmailAddress(emailAddress string) (*mailboxdomain.MailboxCredential, error) {
	return r.cred, nil
}

func (r *recordingCredRepo) FindByID(string) (*mailboxdomain.MailboxCredential, error) {
	return r.cred, nil
}

func (r *recordingCredRepo) UpdateTokens(cred *mailboxdomain.MailboxCredential) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	saved := *cred
	r.updated = append(r.updated, &saved)
	return nil
}

func (r *recordingCredRepo) UpdateWatch(string, *time.Time) error { return nil }

func (r *recordingCredRepo) ListWatchesExpiringBefore(time.Time) ([]*mailboxdomain.MailboxCredential, error) {
	return nil, nil
}

func (r *recordingCredRepo) AdvanceCursor(string, uint64, uint64) (bool, error) {
	return false, nil
}

// tokenServer answers the refresh-token exchange with the given JSON.
func tokenServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
}

func usecaseWithEndpoint(repo *recordingCredRepo, tokenURL string) *credentialUsecase {
	return &credentialUsecase{
		repo: repo,
		oauthCfg: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		},
	}
}

func expiredCred() *mailboxdomain.MailboxCredential {
	return &mailboxdomain.MailboxCredential{
		ID:           "cred-1",
		EmailAddress: "m1@company.com",
		AccessToken:  "stale-access",
		RefreshToken: "original-refresh",
		TokenExpiry:  time.Now().Add(-time.Hour),
	}
}

func TestGetValidTokenShortCircuitsUnexpired(t *testing.T) {
	repo := &recordingCredRepo{}
	u := usecaseWithEndpoint(repo, "http://invalid.test/token")
	cred := expiredCred()
	cred.TokenExpiry = time.Now().Add(time.Hour)

	token, err := u.GetValidToken(context.Background(), cred)
	require.NoError(t, err)

	assert.Equal(t, "stale-access", token.AccessToken)
	assert.Empty(t, repo.updated)
}

func TestGetValidTokenRefreshKeepsRefreshTokenWhenOmitted(t *testing.T) {
	srv := tokenServer(t, `{"access_token": "new-access", "token_type": "Bearer", "expires_in": 3600}`)
	defer srv.Close()

	repo := &recordingCredRepo{}
	u := usecaseWithEndpoint(repo, srv.URL+"/token")
	cred := expiredCred()

	token, err := u.GetValidToken(context.Background(), cred)
	require.NoError(t, err)

	assert.Equal(t, "new-access", token.AccessToken)
	assert.Equal(t, "original-refresh", token.RefreshToken)

	require.Len(t, repo.updated, 1)
	assert.Equal(t, "new-access", repo.updated[0].AccessToken)
	assert.Equal(t, "original-refresh", repo.updated[0].RefreshToken)
}

func TestGetValidTokenRefreshStoresRotatedRefreshToken(t *testing.T) {
	srv := tokenServer(t, `{"access_token": "new-access", "refresh_token": "rotated-refresh", "token_type": "Bearer", "expires_in": 3600}`)
	defer srv.Close()

	repo := &recordingCredRepo{}
	u := usecaseWithEndpoint(repo, srv.URL+"/token")

	token, err := u.GetValidToken(context.Background(), expiredCred())
	require.NoError(t, err)

	assert.Equal(t, "rotated-refresh", token.RefreshToken)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, "rotated-refresh", repo.updated[0].RefreshToken)
}

func TestGetValidTokenPersistFailureStillReturnsToken(t *testing.T) {
	srv := tokenServer(t, `{"access_token": "new-access", "token_type": "Bearer", "expires_in": 3600}`)
	defer srv.Close()

	repo := &recordingCredRepo{updateErr: assert.AnError}
	u := usecaseWithEndpoint(repo, srv.URL+"/token")

	token, err := u.GetValidToken(context.Background(), expiredCred())
	require.NoError(t, err)
	assert.Equal(t, "new-access", token.AccessToken)
}

func TestGetValidTokenExchangeRejectedIsRefreshFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	repo := &recordingCredRepo{}
	u := usecaseWithEndpoint(repo, srv.URL+"/token")

	_, err := u.GetValidToken(context.Background(), expiredCred())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Empty(t, repo.updated)
}

func TestGetCredentialMissing(t *testing.T) {
	repo := &recordingCredRepo{}
	u := usecaseWithEndpoint(repo, "http://invalid.test/token")

	_, err := u.GetCredential("nobody@company.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentialMissing)
}
