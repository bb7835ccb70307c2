package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientCookie names the cookie holding the client id.
const ClientCookie = "esg_client"

const clientCookieMaxAge = 365 * 24 * 3600

// ClientContext gives every visitor a stable client id. Sessions are bound to it.
func ClientContext(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ClientCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, id, clientCookieMaxAge, "/", "", secure, true)
		}
		c.Set(clientIDKey, id)
		c.Next()
	}
}
