package delivery

import (
	"net/http"
	"strconv"

	"crmhub-backend/internal/crm/repository"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leads    repository.LeadRepository
	messages repository.MessageRepository
}

func NewLeadHandler(leads repository.LeadRepository, messages repository.MessageRepository) *LeadHandler {
	return &LeadHandler{leads: leads, messages: messages}
}

// List handles GET /api/leads?limit=&offset=
func (h *LeadHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, err := h.leads.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// Messages handles GET /api/leads/:id/messages
func (h *LeadHandler) Messages(c *gin.Context) {
	lead, err := h.leads.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lead lookup failed"})
		return
	}
	if lead == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}

	messages, err := h.messages.ListByLead(lead.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead, "messages": messages})
}
