package handlers

import (
	"errors"
	"net/http"

	"esgportal/errs"
	"esgportal/payment"
	"esgportal/services"

	"github.com/gin-gonic/gin"
)

// UpgradePath is where refused callers are sent to upgrade.
const UpgradePath = "/pricing"

// statusFor maps a service error to its HTTP status and public message.
func statusFor(err error) (int, string) {
	var creation *payment.CreationError
	switch {
	case errors.Is(err, errs.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, errs.ErrDemoReadOnly):
		return http.StatusForbidden, "Demo mode is read-only. Sign in to continue."
	case errors.Is(err, errs.ErrNotEntitled):
		return http.StatusPaymentRequired, "Upgrade required"
	case errors.Is(err, errs.ErrInvalidPriceType):
		return http.StatusBadRequest, "Invalid price type. Must be 'per_report' or 'annual'."
	case errors.Is(err, errs.ErrUnknownTemplate):
		return http.StatusBadRequest, "Unknown template"
	case errors.Is(err, errs.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes"
	case errors.Is(err, errs.ErrInvalidEvent):
		return http.StatusBadRequest, "Invalid event"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, "Email already exists"
	case errors.Is(err, errs.ErrCheckoutInFlight):
		return http.StatusConflict, errs.ErrCheckoutInFlight.Error()
	case errors.Is(err, errs.ErrInvalidSignature):
		return http.StatusBadRequest, "Invalid signature"
	case errors.As(err, &creation):
		return http.StatusBadGateway, creation.Message
	case errors.Is(err, errs.ErrPaymentSessionCreationFailed):
		return http.StatusBadGateway, errs.ErrPaymentSessionCreationFailed.Error()
	case errors.Is(err, errs.ErrPaymentProviderUnavailable):
		return http.StatusServiceUnavailable, "Payment provider unavailable"
	case errors.Is(err, errs.ErrStoreQueryFailed):
		return http.StatusInternalServerError, "Database error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes err as a JSON error body and records it on the context.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondNotEntitled is the 402 answer with the upgrade path.
func respondNotEntitled(c *gin.Context, verdict services.EntitlementVerdict) {
	c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
		"error":       "Upgrade required",
		"reason":      verdict.Reason,
		"upgrade_url": UpgradePath,
	})
}
