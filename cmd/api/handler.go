package api

import (
	crmDelivery "crmhub-backend/internal/crm/delivery"
	ingestionDelivery "crmhub-backend/internal/ingestion/delivery"
	mailboxDelivery "crmhub-backend/internal/mailbox/delivery"
	"crmhub-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config         *config.Config
	webhookHandler *ingestionDelivery.WebhookHandler
	pendingHandler *crmDelivery.PendingEmailHandler
	leadHandler    *crmDelivery.LeadHandler
	mailboxHandler *mailboxDelivery.MailboxHandler
}

func NewHandler(cfg *config.Config, webhookHandler *ingestionDelivery.WebhookHandler, pendingHandler *crmDelivery.PendingEmailHandler, leadHandler *crmDelivery.LeadHandler, mailboxHandler *mailboxDelivery.MailboxHandler) *Handler {
	return &Handler{
		config:         cfg,
		webhookHandler: webhookHandler,
		pendingHandler: pendingHandler,
		leadHandler:    leadHandler,
		mailboxHandler: mailboxHandler,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.config, h.webhookHandler, h.pendingHandler, h.leadHandler, h.mailboxHandler)

	return r.Run(addr)
}
