package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListTemplates(c *gin.Context) {
	templates, err := h.Templates.List(c.Request.Context(), c.Query("jurisdiction"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// GetTemplate answers {"template": null} for an unknown jurisdiction/version.
func (h *Handlers) GetTemplate(c *gin.Context) {
	tpl, err := h.Templates.Get(c.Request.Context(), c.Param("jurisdiction"), c.Param("version"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}
