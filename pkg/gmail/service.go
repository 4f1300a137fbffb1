package gmail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrUpstreamUnavailable indicates the Gmail change-log query failed.
// It is propagated, not retried here; the push delivery system retries
// the whole invocation.
var ErrUpstreamUnavailable = errors.New("gmail history unavailable")

type Service struct {
	oauthCfg *oauth2.Config
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		oauthCfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
		},
	}
}

// client creates a Gmail API client backed by the given token
func (s *Service) client(ctx context.Context, token *oauth2.Token) (*gmail.Service, error) {
	source := s.oauthCfg.TokenSource(ctx, token)
	srv, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// FetchHistorySince retrieves the full representation of every message
// added to the inbox after the given history cursor, in change-log
// order. A zero-addition change log yields an empty slice. A failure
// fetching one message is logged and that message is skipped; only a
// failure of the change-log query itself is fatal.
func (s *Service) FetchHistorySince(ctx context.Context, token *oauth2.Token, cursor uint64) ([]*gmail.Message, error) {
	srv, err := s.client(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	user := "me"
	var addedIDs []string
	seen := make(map[string]bool)
	pageToken := ""

	for {
		call := srv.Users.History.List(user).
			StartHistoryId(cursor).
			LabelId("INBOX").
			HistoryTypes("messageAdded")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 404 {
				// The stored cursor is too old for Gmail's history
				// retention window.
				return nil, fmt.Errorf("%w: history cursor %d expired", ErrUpstreamUnavailable, cursor)
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}

		for _, history := range resp.History {
			for _, added := range history.MessagesAdded {
				if added.Message == nil || seen[added.Message.Id] {
					continue
				}
				seen[added.Message.Id] = true
				addedIDs = append(addedIDs, added.Message.Id)
			}
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	messages := make([]*gmail.Message, 0, len(addedIDs))
	for _, id := range addedIDs {
		msg, err := srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
		if err != nil {
			log.Printf("[Gmail] Failed to fetch message %s, skipping: %v", id, err)
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// Watch sets up push notifications for the user's inbox and returns the
// history id the watch starts from.
func (s *Service) Watch(ctx context.Context, token *oauth2.Token, topicName string) (uint64, time.Time, error) {
	srv, err := s.client(ctx, token)
	if err != nil {
		return 0, time.Time{}, err
	}

	// Clear any existing watch first to avoid the "only one user push
	// notification client allowed" error.
	_ = srv.Users.Stop("me").Do()

	req := &gmail.WatchRequest{
		TopicName: topicName,
		LabelIds:  []string{"INBOX"},
	}

	resp, err := srv.Users.Watch("me", req).Context(ctx).Do()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("unable to watch mailbox: %v", err)
	}
	log.Printf("[Gmail] Watch started on %s. Expiration: %d, HistoryId: %d", topicName, resp.Expiration, resp.HistoryId)

	return resp.HistoryId, time.Unix(0, resp.Expiration*int64(time.Millisecond)), nil
}

// Stop stops push notifications for the user's mailbox
func (s *Service) Stop(ctx context.Context, token *oauth2.Token) error {
	srv, err := s.client(ctx, token)
	if err != nil {
		return err
	}

	if err := srv.Users.Stop("me").Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to stop mailbox watch: %v", err)
	}
	return nil
}
