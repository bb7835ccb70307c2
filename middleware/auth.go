package middleware

import (
	"net/http"
	"strings"

	"esgportal/services"
	"esgportal/session"

	"github.com/gin-gonic/gin"
)

// RequireSession admits API requests that carry a live session, either as a
// bearer token or through the client cookie.
func RequireSession(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			s, err := mgr.Authenticate(c.Request.Context(), token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			setSession(c, s)
			c.Next()
			return
		}

		s, err := mgr.CurrentSessionOf(c.Request.Context(), ClientID(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		setSession(c, s)
		c.Next()
	}
}

// SessionOrDemo is RequireSession for read endpoints: anonymous requests act
// as the demo user when demo mode allows it.
func SessionOrDemo(mgr *session.Manager, demo *services.DemoMode) gin.HandlerFunc {
	authenticated := RequireSession(mgr)
	return func(c *gin.Context) {
		if bearerToken(c) == "" && demo.ShouldUseDemoMode(c.Request.Context(), ClientID(c), c.Param("id")) {
			setDemo(c, services.DemoUser())
			c.Next()
			return
		}
		authenticated(c)
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
