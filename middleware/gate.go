package middleware

import (
	"context"
	"net/http"
	"time"

	"esgportal/gate"
	"esgportal/services"
	"esgportal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const placeholderPage = `<!doctype html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Loading</title></head>
<body><p>Loading&hellip;</p></body></html>`

// AuthGate guards HTML pages. It mounts a gate for the request and renders the
// loading placeholder, a sign-in redirect, or the page.
func AuthGate(oracle session.Oracle, timeout time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		g := gate.New(oracle, ClientID(c), log)
		g.Mount(ctx)
		state, err := g.Wait(ctx)
		_, sess := g.Current()
		g.Unmount()
		if err != nil {
			log.Warn("auth gate did not settle", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}

		view := gate.Render(state, c.Request.URL.RequestURI())
		switch view.Kind {
		case gate.ViewChildren:
			if sess == nil {
				// State and session are read separately; a sign-out in between wins.
				c.Redirect(http.StatusSeeOther, gate.SignInURL(c.Request.URL.RequestURI()))
				c.Abort()
				return
			}
			setSession(c, sess)
			c.Next()
		case gate.ViewRedirect:
			c.Redirect(http.StatusSeeOther, view.RedirectTo)
			c.Abort()
		default:
			c.Header("Retry-After", "1")
			c.Header("Cache-Control", "no-store")
			c.Data(http.StatusServiceUnavailable, "text/html; charset=utf-8", []byte(placeholderPage))
			c.Abort()
		}
	}
}

// DemoOrGate serves demo visitors as the demo user and sends everyone else
// through the auth gate. The :id route parameter is the report id.
func DemoOrGate(demo *services.DemoMode, authGate gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if demo.ShouldUseDemoMode(c.Request.Context(), ClientID(c), c.Param("id")) {
			setDemo(c, services.DemoUser())
			c.Next()
			return
		}
		authGate(c)
	}
}
