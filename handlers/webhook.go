package handlers

import (
	"io"
	"net/http"

	"esgportal/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// BillingWebhook applies payment events. Only signed deliveries are read;
// failures answer 5xx so the sender retries.
func (h *Handlers) BillingWebhook(c *gin.Context) {
	if !h.Config.Features.BillingEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Billing not enabled"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	ev, err := payment.ParseEvent([]byte(h.Config.PaymentWebhookSecret), body, c.GetHeader(payment.SignatureHeader))
	if err != nil {
		h.Log.Warn("rejected billing webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature or payload"})
		return
	}

	changed, err := h.Fulfillment.HandleEvent(c.Request.Context(), ev)
	if err != nil {
		h.Log.Error("billing webhook failed", zap.String("event_id", ev.ID), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "applied": changed})
}
