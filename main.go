package main

import (
	"context"
	"log"

	api "crmhub-backend/cmd/api"
	"crmhub-backend/internal/automation"
	crmDelivery "crmhub-backend/internal/crm/delivery"
	crmdomain "crmhub-backend/internal/crm/domain"
	crmRepo "crmhub-backend/internal/crm/repository"
	ingestionDelivery "crmhub-backend/internal/ingestion/delivery"
	ingestionUsecase "crmhub-backend/internal/ingestion/usecase"
	mailboxDelivery "crmhub-backend/internal/mailbox/delivery"
	mailboxdomain "crmhub-backend/internal/mailbox/domain"
	mailboxRepo "crmhub-backend/internal/mailbox/repository"
	mailboxScheduler "crmhub-backend/internal/mailbox/scheduler"
	mailboxUsecase "crmhub-backend/internal/mailbox/usecase"
	"crmhub-backend/internal/notification"
	"crmhub-backend/pkg/config"
	"crmhub-backend/pkg/database"
	"crmhub-backend/pkg/gemini"
	"crmhub-backend/pkg/gmail"
	"crmhub-backend/pkg/mailtext"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&crmdomain.Lead{}, &crmdomain.Prospect{}, &crmdomain.Message{}, &crmdomain.PendingEmail{}, &mailboxdomain.MailboxCredential{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	leadRepo := crmRepo.NewLeadRepository(db)
	prospectRepo := crmRepo.NewProspectRepository(db)
	messageRepo := crmRepo.NewMessageRepository(db)
	pendingRepo := crmRepo.NewPendingEmailRepository(db)
	credentialRepo := mailboxRepo.NewCredentialRepository(db)

	// Initialize services
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	credentialUsecase := mailboxUsecase.NewCredentialUsecase(credentialRepo, cfg.GoogleClientID, cfg.GoogleClientSecret)

	classifier := gemini.NewClassifier(cfg.GeminiApiKey)
	if !classifier.Enabled() {
		log.Println("[WARN] GEMINI_API_KEY not set, pending emails will stay in manual review")
	}

	notifier := automation.NewNotifier(cfg.AutomationWebhookURL)
	notifier.Start()

	// Assemble the ingestion pipeline
	normalizer := mailtext.NewNormalizer(cfg.CompanyName)
	filter := ingestionUsecase.NewHeuristicFilter(cfg.BlockedSenderDomains)
	resolver := ingestionUsecase.NewEntityResolver(leadRepo, prospectRepo, messageRepo, notifier)
	triage := ingestionUsecase.NewTriageWriter(pendingRepo, filter, classifier)
	pipeline := ingestionUsecase.NewPipeline(credentialRepo, credentialUsecase, gmailService, normalizer, resolver, triage)

	// Keep push watches alive; Gmail expires them after about a week
	watchRenewer := mailboxScheduler.NewWatchRenewer(credentialRepo, credentialUsecase, gmailService, cfg.GooglePubSubTopic)
	watchRenewer.Start()

	// Optional Pub/Sub pull listener as an alternative to the push webhook
	if cfg.GoogleProjectID != "" {
		notifService, err := notification.NewService(cfg.GoogleProjectID, cfg.GooglePubSubTopic, pipeline, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize pubsub listener: %v", err)
		} else {
			go notifService.Start(context.Background())
		}
	}

	// Initialize HTTP handlers
	webhookHandler := ingestionDelivery.NewWebhookHandler(pipeline)
	pendingHandler := crmDelivery.NewPendingEmailHandler(pendingRepo, leadRepo, messageRepo)
	leadHandler := crmDelivery.NewLeadHandler(leadRepo, messageRepo)
	mailboxHandler := mailboxDelivery.NewMailboxHandler(credentialRepo, credentialUsecase, gmailService, cfg.GooglePubSubTopic)

	handler := api.NewHandler(cfg, webhookHandler, pendingHandler, leadHandler, mailboxHandler)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
