package handlers

import (
	"net/http"

	"esgportal/middleware"
	"esgportal/models"

	"github.com/gin-gonic/gin"
)

// GetStatsOverview returns read-only usage counts for the caller.
func (h *Handlers) GetStatsOverview(c *gin.Context) {
	var stats struct {
		TotalDisclosures int            `json:"total_disclosures"`
		Checkouts        map[string]int `json:"checkouts"`
		CompletedRate    float64        `json:"checkout_completion_rate"`
	}

	ctx := c.Request.Context()
	identity := middleware.IdentityFrom(c)

	n, err := h.Disclosed.Count(ctx, identity.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	stats.TotalDisclosures = n

	counts, err := h.Checkouts.CountByStatus(ctx, identity.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if counts == nil {
		counts = map[string]int{}
	}
	stats.Checkouts = counts

	total := 0
	for _, v := range counts {
		total += v
	}
	if total > 0 {
		stats.CompletedRate = float64(counts[models.CheckoutCompleted]) / float64(total) * 100
	}

	c.JSON(http.StatusOK, stats)
}
