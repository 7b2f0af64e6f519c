package handlers

import (
	"net/http"
	"strings"

	"ovation/internal/logger"
	"ovation/internal/models"

	"github.com/gin-gonic/gin"
)

// Payments handlers

// OnPaymentUpdates - POST /api/payments/notifications
// Webhook from the payment gateway. Successful payments settle the
// reservation; the gateway retries on non-2xx, so settlement must tolerate
// duplicate deliveries.
func (h *Handlers) OnPaymentUpdates(c *gin.Context) {
	var notification models.PaymentNotificationPayload
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log := logger.WithContext(c.Request.Context()).With(
		"transaction_id", notification.TransactionID,
		"status", notification.Status,
	)

	if !strings.EqualFold(notification.Status, "completed") {
		log.Info("Ignoring non-completed payment notification")
		c.Status(http.StatusOK)
		return
	}

	_, err := h.services.Reservations.ConfirmFromGateway(c.Request.Context(), notification.TransactionID, notification.PaymentRef)
	if err != nil {
		log.Error("Failed to settle reservation from payment notification", "error", err)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// NotifyPaymentCompleted - GET /api/payments/success
// Browser redirect target after a successful payment. Settlement happens on
// the webhook; this only acknowledges.
func (h *Handlers) NotifyPaymentCompleted(c *gin.Context) {
	transactionID := c.Query("transactionId")
	if transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transactionId is required"})
		return
	}

	logger.WithContext(c.Request.Context()).Info("Payment completed redirect",
		"transaction_id", transactionID)

	c.Status(http.StatusOK)
}

// NotifyPaymentFailed - GET /api/payments/fail
// Browser redirect target after a failed payment. The pending reservation is
// left for the reaper.
func (h *Handlers) NotifyPaymentFailed(c *gin.Context) {
	transactionID := c.Query("transactionId")
	if transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transactionId is required"})
		return
	}

	logger.WithContext(c.Request.Context()).Warn("Payment failed redirect",
		"transaction_id", transactionID)

	c.Status(http.StatusOK)
}
