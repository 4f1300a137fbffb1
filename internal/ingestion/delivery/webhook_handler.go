package delivery

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"crmhub-backend/internal/ingestion/usecase"

	"github.com/gin-gonic/gin"
)

// PushEnvelope is the Pub/Sub push delivery wrapper around a Gmail
// mailbox-change notification.
type PushEnvelope struct {
	Message struct {
		Data        string `json:"data"`
		MessageID   string `json:"messageId"`
		PublishTime string `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type gmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// WebhookHandler is the push-notification entry point. Every path,
// including internal failure, answers HTTP 200: a non-2xx response
// would make the relay redeliver a notification whose data will not
// improve on retry, and a transient bug must not cause a redelivery
// storm. Real failures are observable only in logs.
type WebhookHandler struct {
	pipeline *usecase.Pipeline
}

func NewWebhookHandler(pipeline *usecase.Pipeline) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline}
}

// HandleGmailPush processes POST /api/webhooks/gmail
func (h *WebhookHandler) HandleGmailPush(c *gin.Context) {
	var envelope PushEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		log.Printf("[Webhook] Malformed push envelope: %v", err)
		c.String(http.StatusOK, "OK")
		return
	}

	if envelope.Message.Data == "" {
		log.Printf("[Webhook] Push envelope without message data")
		c.String(http.StatusOK, "OK")
		return
	}

	notification, err := decodeNotification(envelope.Message.Data)
	if err != nil {
		log.Printf("[Webhook] Undecodable notification payload: %v", err)
		c.String(http.StatusOK, "OK")
		return
	}
	if notification.EmailAddress == "" || notification.HistoryID == 0 {
		log.Printf("[Webhook] Notification missing emailAddress or historyId")
		c.String(http.StatusOK, "OK")
		return
	}

	log.Printf("[Webhook] Notification for %s (historyId %d)", notification.EmailAddress, notification.HistoryID)

	processed, err := h.pipeline.HandleNotification(c.Request.Context(), notification.EmailAddress, notification.HistoryID)
	if err != nil {
		log.Printf("[Webhook] Pipeline error for %s: %v", notification.EmailAddress, err)
		c.String(http.StatusOK, "OK")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "processed": processed})
}

func decodeNotification(data string) (*gmailNotification, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(data)
		if err != nil {
			return nil, err
		}
	}
	var notification gmailNotification
	if err := json.Unmarshal(decoded, &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}
