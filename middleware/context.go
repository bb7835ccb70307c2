package middleware

import (
	"esgportal/models"

	"github.com/gin-gonic/gin"
)

const (
	clientIDKey = "clientID"
	sessionKey  = "session"
	identityKey = "identity"
)

// ClientID returns the request's client id, set by ClientContext.
func ClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

// SessionFrom returns the authenticated session, or nil for anonymous and demo requests.
func SessionFrom(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}

// IdentityFrom returns who the request acts as, or nil.
func IdentityFrom(c *gin.Context) *models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*models.Identity); ok {
			return id
		}
	}
	return nil
}

func setSession(c *gin.Context, s *models.Session) {
	id := s.Identity()
	c.Set(sessionKey, s)
	c.Set(identityKey, &id)
}

func setDemo(c *gin.Context, id models.Identity) {
	c.Set(identityKey, &id)
}
