package delivery

import (
	"errors"
	"log"
	"net/http"

	mailboxrepo "crmhub-backend/internal/mailbox/repository"
	mailboxusecase "crmhub-backend/internal/mailbox/usecase"
	"crmhub-backend/pkg/gmail"

	"github.com/gin-gonic/gin"
)

// MailboxHandler registers and stops the Gmail watch for a connected
// mailbox. Without an active watch no push notifications arrive.
type MailboxHandler struct {
	credentials  mailboxrepo.CredentialRepository
	tokens       mailboxusecase.CredentialUsecase
	gmailService *gmail.Service
	topicName    string
}

func NewMailboxHandler(credentials mailboxrepo.CredentialRepository, tokens mailboxusecase.CredentialUsecase, gmailService *gmail.Service, topicName string) *MailboxHandler {
	return &MailboxHandler{
		credentials:  credentials,
		tokens:       tokens,
		gmailService: gmailService,
		topicName:    topicName,
	}
}

// Watch handles POST /api/mailboxes/:email/watch
func (h *MailboxHandler) Watch(c *gin.Context) {
	cred, err := h.tokens.GetCredential(c.Param("email"))
	if err != nil {
		if errors.Is(err, mailboxusecase.ErrCredentialMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credential lookup failed"})
		return
	}

	token, err := h.tokens.GetValidToken(c.Request.Context(), cred)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "token refresh failed"})
		return
	}

	historyID, expiration, err := h.gmailService.Watch(c.Request.Context(), token, h.topicName)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to start watch"})
		return
	}

	if err := h.credentials.UpdateWatch(cred.ID, &expiration); err != nil {
		log.Printf("[Mailbox] Failed to store watch expiration for %s: %v", cred.EmailAddress, err)
	}

	// A fresh watch defines where incremental sync begins for a
	// mailbox that has never synced.
	if cred.HistoryCursor == 0 {
		if _, err := h.credentials.AdvanceCursor(cred.ID, 0, historyID); err != nil {
			log.Printf("[Mailbox] Failed to seed cursor for %s: %v", cred.EmailAddress, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"history_id": historyID, "expiration": expiration})
}

// Stop handles POST /api/mailboxes/:email/stop
func (h *MailboxHandler) Stop(c *gin.Context) {
	cred, err := h.tokens.GetCredential(c.Param("email"))
	if err != nil {
		if errors.Is(err, mailboxusecase.ErrCredentialMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credential lookup failed"})
		return
	}

	token, err := h.tokens.GetValidToken(c.Request.Context(), cred)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "token refresh failed"})
		return
	}

	if err := h.gmailService.Stop(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to stop watch"})
		return
	}

	if err := h.credentials.UpdateWatch(cred.ID, nil); err != nil {
		log.Printf("[Mailbox] Failed to clear watch expiration for %s: %v", cred.EmailAddress, err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
