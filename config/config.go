// Package config loads app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Port   string `mapstructure:"PORT"`
	Env    string `mapstructure:"APP_ENV"`
	// Origin is the public base URL of the site; checkout success/cancel URLs are built from it.
	// When empty the request's scheme and host are used.
	Origin      string `mapstructure:"APP_ORIGIN"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	SessionTTL  time.Duration `mapstructure:"SESSION_TTL"`
	GateTimeout time.Duration `mapstructure:"GATE_TIMEOUT"`

	TemplateCacheTTL  time.Duration `mapstructure:"TEMPLATE_CACHE_TTL"`
	TemplateCacheSize int           `mapstructure:"TEMPLATE_CACHE_SIZE"`

	PaymentBackendURL      string `mapstructure:"PAYMENT_BACKEND_URL"`
	PaymentPublishableKey  string `mapstructure:"PAYMENT_PUBLISHABLE_KEY"`
	PaymentCheckoutBaseURL string `mapstructure:"PAYMENT_CHECKOUT_BASE_URL"`
	PaymentWebhookSecret   string `mapstructure:"PAYMENT_WEBHOOK_SECRET"`

	CheckoutExpiry time.Duration `mapstructure:"CHECKOUT_EXPIRY"`
	SweepInterval  time.Duration `mapstructure:"SWEEP_INTERVAL"`

	SendGridAPIKey  string `mapstructure:"SENDGRID_API_KEY"`
	NotifyFromEmail string `mapstructure:"NOTIFY_FROM_EMAIL"`
	SlackWebhookURL string `mapstructure:"SLACK_WEBHOOK_URL"`

	Features Features `mapstructure:"-"`
}

// Load reads .env (if present), then builds and validates Config from the environment.
// Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_ORIGIN", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("GATE_TIMEOUT", "5s")
	v.SetDefault("TEMPLATE_CACHE_TTL", "1h")
	v.SetDefault("TEMPLATE_CACHE_SIZE", 256)
	v.SetDefault("PAYMENT_BACKEND_URL", "")
	v.SetDefault("PAYMENT_PUBLISHABLE_KEY", "")
	v.SetDefault("PAYMENT_CHECKOUT_BASE_URL", "https://checkout.stripe.com/c/pay")
	v.SetDefault("PAYMENT_WEBHOOK_SECRET", "")
	v.SetDefault("CHECKOUT_EXPIRY", "24h")
	v.SetDefault("SWEEP_INTERVAL", "1m")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("NOTIFY_FROM_EMAIL", "")
	v.SetDefault("SLACK_WEBHOOK_URL", "")
	v.SetDefault("BILLING_ENABLED", true)
	v.SetDefault("DEMO_MODE_ENABLED", true)
	v.SetDefault("SIGNUP_ENABLED", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Features = loadFeatures(v)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.GateTimeout <= 0 {
		return errors.New("config: GATE_TIMEOUT must be positive")
	}
	if c.TemplateCacheTTL <= 0 {
		return errors.New("config: TEMPLATE_CACHE_TTL must be positive")
	}
	if c.CheckoutExpiry <= 0 || c.SweepInterval <= 0 {
		return errors.New("config: CHECKOUT_EXPIRY and SWEEP_INTERVAL must be positive")
	}
	if c.TemplateCacheSize <= 0 {
		return errors.New("config: TEMPLATE_CACHE_SIZE must be positive")
	}
	if c.Features.BillingEnabled && c.PaymentBackendURL == "" {
		return errors.New("config: PAYMENT_BACKEND_URL must be set when BILLING_ENABLED=true")
	}
	if c.Origin != "" {
		u, err := url.Parse(c.Origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("config: APP_ORIGIN must be an absolute URL")
		}
		c.Origin = strings.TrimRight(c.Origin, "/")
	}
	return nil
}

// Development reports whether APP_ENV is "development".
func (c *Config) Development() bool {
	return c.Env == "development"
}
