package api

import (
	"net/http"

	crmDelivery "crmhub-backend/internal/crm/delivery"
	ingestionDelivery "crmhub-backend/internal/ingestion/delivery"
	mailboxDelivery "crmhub-backend/internal/mailbox/delivery"
	"crmhub-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, webhookHandler *ingestionDelivery.WebhookHandler, pendingHandler *crmDelivery.PendingEmailHandler, leadHandler *crmDelivery.LeadHandler, mailboxHandler *mailboxDelivery.MailboxHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Push-notification webhook: unauthenticated by necessity, and
		// always answers 200 regardless of outcome.
		api.POST("/webhooks/gmail", webhookHandler.HandleGmailPush)

		// Review API (protected)
		pending := api.Group("/pending-emails")
		pending.Use(crmDelivery.ServiceKeyMiddleware(cfg.ServiceAPIKey))
		{
			pending.GET("", pendingHandler.List)
			pending.POST("/:id/approve", pendingHandler.Approve)
			pending.POST("/:id/link", pendingHandler.Link)
			pending.POST("/:id/dismiss", pendingHandler.Dismiss)
		}

		// Lead routes (protected)
		leads := api.Group("/leads")
		leads.Use(crmDelivery.ServiceKeyMiddleware(cfg.ServiceAPIKey))
		{
			leads.GET("", leadHandler.List)
			leads.GET("/:id/messages", leadHandler.Messages)
		}

		// Mailbox watch management (protected)
		mailboxes := api.Group("/mailboxes")
		mailboxes.Use(crmDelivery.ServiceKeyMiddleware(cfg.ServiceAPIKey))
		{
			mailboxes.POST("/:email/watch", mailboxHandler.Watch)
			mailboxes.POST("/:email/stop", mailboxHandler.Stop)
		}
	}
}
