package handlers

import (
	"net/http"
	"net/url"

	"esgportal/middleware"
	"esgportal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentSuccess re-reads the caller's tier from the store. Query parameters
// are ignored: only the webhook grants a tier.
func (h *Handlers) PaymentSuccess(c *gin.Context) {
	profile, err := h.Profiles.Resolve(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		h.Log.Warn("profile unavailable after payment", zap.Error(err))
	}
	verdict := services.EntitlementVerdict{Reason: "payment not confirmed yet"}
	if p := profileOrNil(profile, err); p != nil {
		verdict = services.CheckDisclosureEntitlement(services.ParseTier(string(p.Tier)))
	}
	h.page(c, http.StatusOK, "payment_success.html", "Payment received", gin.H{
		"Profile": profileOrNil(profile, err),
		"Verdict": verdict,
	})
}

// PaymentCancel is informational and changes nothing.
func (h *Handlers) PaymentCancel(c *gin.Context) {
	h.page(c, http.StatusOK, "payment_cancel.html", "Checkout cancelled", nil)
}

func queryEscape(s string) string { return url.QueryEscape(s) }
