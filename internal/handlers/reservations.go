package handlers

import (
	"net/http"

	"ovation/internal/models"

	"github.com/gin-gonic/gin"
)

// Reservations handlers

// InitiateReservation - POST /api/reservations
// Record a purchase intent and return the payment form data.
func (h *Handlers) InitiateReservation(c *gin.Context) {
	var req models.InitiateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}

	response, err := h.services.Reservations.Initiate(c.Request.Context(), buyerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ConfirmReservation - POST /api/reservations/confirm
// Settle a paid reservation and return its tickets. Retries return the same
// ticket set.
func (h *Handlers) ConfirmReservation(c *gin.Context) {
	var req models.ConfirmReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}

	tickets, err := h.services.Reservations.Confirm(c.Request.Context(), buyerID, req.TransactionID, req.PaymentRef)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConfirmReservationResponse{
		TransactionID: req.TransactionID,
		Tickets:       tickets,
	})
}

// BookDirect - POST /api/bookings
// Single-ticket purchase with no separate payment step.
func (h *Handlers) BookDirect(c *gin.Context) {
	var req models.BookDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}

	ticket, err := h.services.Reservations.BookDirect(c.Request.Context(), buyerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}
