package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"esgportal/config"
	"esgportal/db"
	"esgportal/handlers"
	"esgportal/payment"
	"esgportal/services"
	"esgportal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := newLogger(cfg)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}
	log.Info("database schema verified")

	log.Info("features",
		zap.Bool("billing", cfg.Features.BillingEnabled),
		zap.Bool("demo_mode", cfg.Features.DemoModeEnabled),
		zap.Bool("signup", cfg.Features.SignupEnabled))

	accounts := db.NewAccountRepo(conn)
	profiles := db.NewProfileRepo(conn)
	templates := db.NewTemplateRepo(conn)
	checkouts := db.NewCheckoutRepo(conn)
	disclosures := db.NewDisclosureRepo(conn)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	sessions := session.NewManager([]byte(cfg.JWTSecret), cfg.SessionTTL, log.Named("session"))
	resolver := services.NewProfileResolver(profiles)
	catalog := services.NewTemplateCatalog(templates, cfg.TemplateCacheSize, cfg.TemplateCacheTTL)

	var mailer services.Mailer
	if m := services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.NotifyFromEmail); m != nil {
		mailer = m
	} else {
		log.Info("SendGrid not configured, receipts disabled")
	}
	alerts := services.NewUpgradeAlerts(mailer, services.NewSlackNotifier(cfg.SlackWebhookURL, httpClient), log.Named("alerts"))

	router := handlers.NewRouter(handlers.Deps{
		Config:   cfg,
		Log:      log,
		Sessions: sessions,
		Accounts: services.NewAccounts(accounts),
		Profiles: resolver,
		Demo:     services.NewDemoMode(sessions, cfg.Features.DemoModeEnabled, log.Named("demo")),
		Checkout: services.NewCheckoutOrchestrator(
			payment.NewHTTPBackend(cfg.PaymentBackendURL, httpClient),
			payment.LazyHostedProvider(cfg.PaymentPublishableKey, cfg.PaymentCheckoutBaseURL),
			checkouts,
			log.Named("checkout"),
		),
		Fulfillment: services.NewFulfillment(profiles, checkouts, alerts, log.Named("billing")),
		Templates:   catalog,
		Disclosures: services.NewDisclosures(resolver, catalog, disclosures, log.Named("disclosures")),
		Disclosed:   disclosures,
		Checkouts:   checkouts,
		Health:      conn,
	})

	go services.NewSweeper(checkouts, sessions, cfg.CheckoutExpiry, log.Named("sweeper")).Run(ctx, cfg.SweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
