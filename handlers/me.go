package handlers

import (
	"net/http"

	"esgportal/middleware"
	"esgportal/services"

	"github.com/gin-gonic/gin"
)

// Me returns the caller's profile with the disclosure entitlement verdict.
// Tier is read fresh on every call.
func (h *Handlers) Me(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	profile, err := h.Profiles.Resolve(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"profile":     profile,
		"demo":        identity.Demo,
		"entitlement": services.CheckDisclosureEntitlement(services.ParseTier(string(profile.Tier))),
	})
}
