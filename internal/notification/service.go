package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"crmhub-backend/internal/ingestion/usecase"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// Service consumes Gmail mailbox-change notifications from a Pub/Sub
// pull subscription and feeds them into the ingestion pipeline. It is
// the alternative to the push webhook for deployments that cannot
// expose a public endpoint.
type Service struct {
	pubsubClient *pubsub.Client
	pipeline     *usecase.Pipeline
	projectID    string
	topicName    string
	subName      string
}

func NewService(projectID, topicName string, pipeline *usecase.Pipeline, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient: client,
		pipeline:     pipeline,
		projectID:    projectID,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification listener with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		// Always ack: the pipeline tolerates duplicates, and a nack
		// loop on a poison message would redeliver forever.
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification GmailNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[PubSub] Failed to unmarshal notification: %v", err)
		return
	}
	if notification.EmailAddress == "" || notification.HistoryID == 0 {
		log.Printf("[PubSub] Notification missing emailAddress or historyId")
		return
	}

	log.Printf("[PubSub] Notification for %s (historyId %d)", notification.EmailAddress, notification.HistoryID)

	processed, err := s.pipeline.HandleNotification(ctx, notification.EmailAddress, notification.HistoryID)
	if err != nil {
		log.Printf("[PubSub] Pipeline error for %s: %v", notification.EmailAddress, err)
		return
	}
	log.Printf("[PubSub] Processed %d message(s) for %s", processed, notification.EmailAddress)
}
