package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"esgportal/middleware"
	"esgportal/models"
	"esgportal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutInput struct {
	PriceType  models.PriceType `json:"price_type" form:"price_type" binding:"required"`
	ReturnPath string           `json:"return_path" form:"return_path"`
}

// CreateCheckout starts a hosted checkout. Form posts from the pricing page are
// answered with a 303 to the payment page; JSON callers get the URL.
func (h *Handlers) CreateCheckout(c *gin.Context) {
	if !h.Config.Features.BillingEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Billing not enabled"})
		return
	}

	asForm := c.ContentType() == gin.MIMEPOSTForm || c.ContentType() == gin.MIMEMultipartPOSTForm
	var input CheckoutInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var target string
	flow, err := h.Checkout.Checkout(c.Request.Context(), middleware.SessionFrom(c), services.CheckoutRequest{
		PriceType:  input.PriceType,
		ReturnPath: input.ReturnPath,
		Origin:     h.origin(c),
	}, services.NavigatorFunc(func(u string) { target = u }))
	if err != nil {
		h.Log.Warn("checkout failed",
			zap.String("price_type", string(input.PriceType)),
			zap.Stringers("history", flow.History),
			zap.Error(err))
		if asForm {
			_, msg := statusFor(err)
			back := services.LocalPath(input.ReturnPath, "/pricing")
			sep := "?"
			if strings.Contains(back, "?") {
				sep = "&"
			}
			c.Redirect(http.StatusSeeOther, back+sep+url.Values{"error": {msg}}.Encode())
			return
		}
		respondError(c, err)
		return
	}

	if asForm {
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": target, "session_id": flow.SessionID, "state": flow.State.String()})
}

// Pricing shows the plans with the caller's current tier.
func (h *Handlers) Pricing(c *gin.Context) {
	data := gin.H{
		"BillingEnabled": h.Config.Features.BillingEnabled,
		"Error":          c.Query("error"),
	}
	if p, err := h.Profiles.Resolve(c.Request.Context(), middleware.IdentityFrom(c)); err == nil {
		data["Profile"] = p
	} else {
		h.Log.Warn("profile unavailable on pricing page", zap.Error(err))
	}
	h.page(c, http.StatusOK, "pricing.html", "Pricing", data)
}
