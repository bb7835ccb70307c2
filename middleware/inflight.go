package middleware

import (
	"net/http"
	"sync"

	"esgportal/errs"

	"github.com/gin-gonic/gin"
)

// SingleFlight rejects a request with 409 while another request from the same
// client id is still being handled by this route group. Authenticated requests
// use their session's client id, so bearer callers without the cookie are
// covered too.
func SingleFlight() gin.HandlerFunc {
	var (
		mu      sync.Mutex
		running = map[string]struct{}{}
	)
	return func(c *gin.Context) {
		key := ClientID(c)
		if s := SessionFrom(c); s != nil && s.ClientID != "" {
			key = s.ClientID
		}
		mu.Lock()
		if _, busy := running[key]; busy {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": errs.ErrCheckoutInFlight.Error()})
			return
		}
		running[key] = struct{}{}
		mu.Unlock()

		defer func() {
			mu.Lock()
			delete(running, key)
			mu.Unlock()
		}()
		c.Next()
	}
}
