// Package handlers serves the HTML pages and JSON API.
package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"esgportal/config"
	"esgportal/middleware"
	"esgportal/services"
	"esgportal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed views/*.html
var views embed.FS

// DisclosureCounter counts a user's stored disclosures.
type DisclosureCounter interface {
	Count(ctx context.Context, userID string) (int, error)
}

// CheckoutCounter counts an identity's checkout sessions by status.
type CheckoutCounter interface {
	CountByStatus(ctx context.Context, identityID string) (map[string]int, error)
}

// Pinger reports store health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	Sessions    *session.Manager
	Accounts    *services.Accounts
	Profiles    *services.ProfileResolver
	Demo        *services.DemoMode
	Checkout    *services.CheckoutOrchestrator
	Fulfillment *services.Fulfillment
	Templates   *services.TemplateCatalog
	Disclosures *services.Disclosures
	Disclosed   DisclosureCounter
	Checkouts   CheckoutCounter
	Health      Pinger
}

// Handlers holds Deps for the route methods.
type Handlers struct {
	Deps
}

// NewRouter builds the gin engine with every page and API route.
func NewRouter(d Deps) *gin.Engine {
	h := &Handlers{Deps: d}
	cfg := d.Config

	r := gin.New()
	r.Use(middleware.Recovery(d.Log), middleware.Logger(d.Log))
	r.SetHTMLTemplate(template.Must(template.ParseFS(views, "views/*.html")))
	r.Use(middleware.ClientContext(!cfg.Development()))

	r.GET("/healthz", h.Healthz)

	gated := middleware.AuthGate(d.Sessions, cfg.GateTimeout, d.Log)

	// Pages
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/dashboard") })
	r.GET("/auth", h.AuthPage)
	r.POST("/auth", h.AuthForm)
	r.POST("/auth/sign-out", h.SignOutForm)
	r.GET("/dashboard", gated, h.Dashboard)
	r.POST("/dashboard/disclosures", gated, h.GenerateForm)
	r.GET("/pricing", gated, h.Pricing)
	r.GET("/reports/:id", middleware.DemoOrGate(d.Demo, gated), h.Report)
	r.GET("/payment/success", gated, h.PaymentSuccess)
	r.GET("/payment/cancel", h.PaymentCancel)

	api := r.Group("/api")
	{
		api.POST("/auth/sign-up", h.SignUp)
		api.POST("/auth/sign-in", h.SignIn)
		api.POST("/auth/sign-out", h.SignOut)
		api.POST("/auth/refresh", h.Refresh)
		api.GET("/session/stream", h.SessionStream)

		api.POST("/billing/webhook", h.BillingWebhook)

		authed := middleware.RequireSession(d.Sessions)
		readable := middleware.SessionOrDemo(d.Sessions, d.Demo)

		api.GET("/me", readable, h.Me)
		api.POST("/checkout", authed, middleware.SingleFlight(), h.CreateCheckout)

		api.GET("/templates", readable, h.ListTemplates)
		api.GET("/templates/:jurisdiction/:version", readable, h.GetTemplate)

		api.POST("/disclosures", authed, h.CreateDisclosure)
		api.GET("/disclosures", readable, h.ListDisclosures)
		api.GET("/disclosures/:id", readable, h.GetDisclosure)

		api.GET("/stats/overview", authed, h.GetStatsOverview)
	}

	return r
}

// page renders name with the fields every layout needs.
func (h *Handlers) page(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Identity"] = middleware.IdentityFrom(c)
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, data)
}

// origin is the configured public origin, or the request's own.
func (h *Handlers) origin(c *gin.Context) string {
	if h.Config.Origin != "" {
		return h.Config.Origin
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
