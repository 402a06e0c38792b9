package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sajitha00/farm-to-keells-api/internal/models"
	"github.com/sajitha00/farm-to-keells-api/internal/services"
)

// PaymentSender runs the disbursement workflow.
type PaymentSender interface {
	SendPayment(ctx context.Context, req models.PaymentRequest) (*services.PaymentResult, error)
}

// PaymentHandler exposes the disbursement workflow over HTTP.
type PaymentHandler struct {
	service PaymentSender
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(service PaymentSender) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// SendPayment handles POST /api/send-payment.
func (h *PaymentHandler) SendPayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// A body we cannot parse carries no usable fields.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and amount are required."})
		return
	}

	if _, err := h.service.SendPayment(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment sent successfully! Notification created."})
}

// writeError maps a workflow stage failure onto the HTTP contract. The
// partial-success case must stay distinguishable from a payout failure:
// its message states that money already moved.
func (h *PaymentHandler) writeError(c *gin.Context, err error) {
	var stageErr *services.StageError
	if !errors.As(err, &stageErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Payment failed due to an unexpected error.",
			"details": err.Error(),
		})
		return
	}

	switch stageErr.Code {
	case services.CodeMissingFields:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and amount are required."})
	case services.CodeFarmerNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Farmer email not found in database."})
	case services.CodeLookupFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify farmer email."})
	case services.CodePayoutRejected:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Payment failed.",
			"details": stageErr.Details,
		})
	case services.CodeNotificationFailed:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Payment sent, but failed to create notification: %s", stageErr.Details),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Payment failed due to an unexpected error.",
			"details": stageErr.Details,
		})
	}
}
