package handlers

import (
	"net/http"

	"ovation/internal/models"

	"github.com/gin-gonic/gin"
)

// Tickets handlers

// ListMyTickets - GET /api/tickets
// The authenticated buyer's tickets with today's effective prices.
func (h *Handlers) ListMyTickets(c *gin.Context) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}

	response, err := h.services.Tickets.ListByBuyer(c.Request.Context(), buyerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// VerifyTicket - POST /api/tickets/verify
// Scan-side QR verification.
func (h *Handlers) VerifyTicket(c *gin.Context) {
	var req models.VerifyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Tickets.Verify(c.Request.Context(), req.QRPayload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
