package models

import (
	"time"
)

// Tier is the subscription tier stored on a profile.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account holds sign-in credentials. Billing state lives on UserProfile.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is who a request acts as.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	// Demo marks the synthetic demo identity. It is read-only.
	Demo bool `json:"demo,omitempty"`
}

// Session is proof of authentication for one client context.
type Session struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"-"`
	IdentityID string    `json:"identity_id"`
	Email      string    `json:"email"`
	Token      string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Identity returns the identity the session was issued for.
func (s *Session) Identity() Identity {
	return Identity{ID: s.IdentityID, Email: s.Email}
}

// UserProfile is the billing and entitlement record of an identity.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CompanyID *string   `json:"company_id,omitempty"`
	Role      string    `json:"role"`
	Tier      Tier      `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}
