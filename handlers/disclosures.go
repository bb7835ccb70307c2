package handlers

import (
	"errors"
	"net/http"

	"esgportal/errs"
	"esgportal/middleware"
	"esgportal/services"

	"github.com/gin-gonic/gin"
)

// CreateDisclosure is the enforcing entitlement boundary.
func (h *Handlers) CreateDisclosure(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, verdict, err := h.Disclosures.Generate(c.Request.Context(), middleware.IdentityFrom(c), req)
	if errors.Is(err, errs.ErrNotEntitled) {
		respondNotEntitled(c, verdict)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handlers) ListDisclosures(c *gin.Context) {
	list, err := h.Disclosures.List(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disclosures": list})
}

func (h *Handlers) GetDisclosure(c *gin.Context) {
	d, err := h.Disclosures.Get(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disclosure not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}
