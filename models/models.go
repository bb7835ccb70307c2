package models

import (
	"time"
)

// PriceType selects a checkout plan.
type PriceType string

const (
	PricePerReport PriceType = "per_report"
	PriceAnnual    PriceType = "annual"
)

const (
	CheckoutPending   = "pending"
	CheckoutCompleted = "completed"
	CheckoutExpired   = "expired"
)

// CheckoutSession is a pending payment intent created at the payment backend.
type CheckoutSession struct {
	SessionID  string    `json:"session_id"`
	URL        string    `json:"url,omitempty"`
	PriceType  PriceType `json:"price_type"`
	IdentityID string    `json:"identity_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Question is one prompt of a questionnaire template.
type Question struct {
	Key     string `json:"key"`
	Section string `json:"section"`
	Prompt  string `json:"prompt"`
}

// QuestionnaireTemplate is immutable reference data keyed by jurisdiction and version.
type QuestionnaireTemplate struct {
	ID           string     `json:"id"`
	Jurisdiction string     `json:"jurisdiction"`
	Version      string     `json:"version"`
	Name         string     `json:"name"`
	Questions    []Question `json:"questions"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Disclosure is a generated disclosure narrative.
type Disclosure struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TemplateID   string    `json:"template_id"`
	Jurisdiction string    `json:"jurisdiction"`
	Title        string    `json:"title"`
	Narrative    string    `json:"narrative"`
	CreatedAt    time.Time `json:"created_at"`
}
