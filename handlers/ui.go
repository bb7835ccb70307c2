package handlers

import (
	"net/http"

	"esgportal/middleware"
	"esgportal/models"
	"esgportal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dashboard shows the caller's plan, the generate form when entitled, and
// recent reports. Store failures degrade to a page without that data.
func (h *Handlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	identity := middleware.IdentityFrom(c)
	data := gin.H{"Error": c.Query("error")}

	verdict := services.EntitlementVerdict{Reason: "your plan could not be loaded"}
	profile, err := h.Profiles.Resolve(ctx, identity)
	if err != nil {
		h.Log.Warn("dashboard profile unavailable", zap.Error(err))
		data["Error"] = "We could not load your plan. Try again shortly."
	} else {
		data["Profile"] = profile
		// Advisory only; generation checks again.
		verdict = services.CheckDisclosureEntitlement(services.ParseTier(string(profile.Tier)))
	}
	data["Verdict"] = verdict

	if verdict.Allowed {
		templates, err := h.Templates.List(ctx, "")
		if err != nil {
			h.Log.Warn("dashboard templates unavailable", zap.Error(err))
		}
		data["Templates"] = templates
	}

	disclosures, err := h.Disclosures.List(ctx, identity)
	if err != nil {
		h.Log.Warn("dashboard disclosures unavailable", zap.Error(err))
	}
	data["Disclosures"] = disclosures

	h.page(c, http.StatusOK, "dashboard.html", "Dashboard", data)
}

// GenerateForm is the dashboard's generate button. Answers come as answers[key] fields.
func (h *Handlers) GenerateForm(c *gin.Context) {
	d, _, err := h.Disclosures.Generate(c.Request.Context(), middleware.IdentityFrom(c), services.GenerateRequest{
		TemplateID: c.PostForm("template_id"),
		Title:      c.PostForm("title"),
		Answers:    c.PostFormMap("answers"),
	})
	if err != nil {
		_, msg := statusFor(err)
		h.Log.Info("dashboard generation refused", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/dashboard?error="+queryEscape(msg))
		return
	}
	c.Redirect(http.StatusSeeOther, "/reports/"+d.ID)
}

// Report renders one disclosure. Demo visitors get the sample report.
func (h *Handlers) Report(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	d, err := h.Disclosures.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		h.Log.Warn("report unavailable", zap.Error(err))
		h.page(c, http.StatusInternalServerError, "error.html", "Report unavailable", nil)
		return
	}
	if d == nil {
		h.page(c, http.StatusNotFound, "report.html", "Report not found", gin.H{})
		return
	}
	h.page(c, http.StatusOK, "report.html", d.Title, gin.H{"Disclosure": d})
}

func profileOrNil(p *models.UserProfile, err error) *models.UserProfile {
	if err != nil {
		return nil
	}
	return p
}
