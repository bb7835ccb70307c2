package handlers

import (
	"net/http"
	"time"

	"esgportal/gate"
	"esgportal/middleware"
	"esgportal/services"

	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 15 * time.Second

// SessionStream mounts a gate for the life of the connection and sends every
// state it settles in as an SSE "state" event. The client leaving unmounts it.
func (h *Handlers) SessionStream(c *gin.Context) {
	ctx := c.Request.Context()
	g := gate.New(h.Sessions, middleware.ClientID(c), h.Log)
	g.Mount(ctx)
	defer g.Unmount()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-store")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	location := services.LocalPath(c.Query("location"), services.DefaultReturnPath)
	last := gate.State(-1)
	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		changed := g.Changed()
		state, _ := g.Current()
		if state != last {
			c.SSEvent("state", gin.H{
				"state":    state.String(),
				"redirect": gate.Render(state, location).RedirectTo,
			})
			c.Writer.Flush()
			last = state
		}

		select {
		case <-changed:
		case <-keepAlive.C:
			c.SSEvent("ping", "")
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
