package delivery

import (
	"log"
	"net/http"
	"strconv"
	"time"

	crmdomain "crmhub-backend/internal/crm/domain"
	"crmhub-backend/internal/crm/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PendingEmailHandler exposes the human-disposition actions on triage
// records. Each action is terminal: the pending row is deleted.
type PendingEmailHandler struct {
	pending  repository.PendingEmailRepository
	leads    repository.LeadRepository
	messages repository.MessageRepository
}

func NewPendingEmailHandler(pending repository.PendingEmailRepository, leads repository.LeadRepository, messages repository.MessageRepository) *PendingEmailHandler {
	return &PendingEmailHandler{
		pending:  pending,
		leads:    leads,
		messages: messages,
	}
}

// List handles GET /api/pending-emails?status=&limit=&offset=
func (h *PendingEmailHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	pending, err := h.pending.List(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending emails"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_emails": pending})
}

// Approve handles POST /api/pending-emails/:id/approve - creates a lead
// from the pending record, files its message, and deletes the record
func (h *PendingEmailHandler) Approve(c *gin.Context) {
	pe, ok := h.load(c)
	if !ok {
		return
	}

	existing, err := h.leads.FindByEmail(pe.SenderEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lead lookup failed"})
		return
	}

	lead := existing
	if lead == nil {
		lead = &crmdomain.Lead{
			ID:         uuid.New().String(),
			Email:      pe.SenderEmail,
			Name:       pe.SenderName,
			Status:     crmdomain.LeadStatusNew,
			LeadSource: crmdomain.LeadSourceInbound,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := h.leads.Create(lead); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lead"})
			return
		}
	}

	h.fileAndDelete(c, pe, lead)
}

// Link handles POST /api/pending-emails/:id/link - files the message on
// an existing lead and deletes the record
func (h *PendingEmailHandler) Link(c *gin.Context) {
	pe, ok := h.load(c)
	if !ok {
		return
	}

	var req struct {
		LeadID string `json:"lead_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lead_id is required"})
		return
	}

	lead, err := h.leads.FindByID(req.LeadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lead lookup failed"})
		return
	}
	if lead == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}

	h.fileAndDelete(c, pe, lead)
}

// Dismiss handles POST /api/pending-emails/:id/dismiss
func (h *PendingEmailHandler) Dismiss(c *gin.Context) {
	pe, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.pending.Delete(pe.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dismiss"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PendingEmailHandler) load(c *gin.Context) (*crmdomain.PendingEmail, bool) {
	pe, err := h.pending.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, false
	}
	if pe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pending email not found"})
		return nil, false
	}
	return pe, true
}

func (h *PendingEmailHandler) fileAndDelete(c *gin.Context, pe *crmdomain.PendingEmail, lead *crmdomain.Lead) {
	msg := &crmdomain.Message{
		ID:                uuid.New().String(),
		LeadID:            lead.ID,
		Direction:         crmdomain.DirectionInbound,
		Subject:           pe.Subject,
		Body:              pe.Body,
		ProviderMessageID: pe.ProviderMessageID,
		IsRead:            false,
		ReceivedAt:        pe.ReceivedAt,
		CreatedAt:         time.Now(),
	}
	if err := h.messages.Create(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to file message"})
		return
	}

	if err := h.pending.Delete(pe.ID); err != nil {
		// The message is filed; a leftover pending row can still be
		// dismissed manually. Log and report success.
		log.Printf("[Pending] Failed to delete resolved record %s: %v", pe.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "lead_id": lead.ID, "message_id": msg.ID})
}
