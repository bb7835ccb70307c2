package db

import (
	"context"
	"database/sql"
	"errors"

	"esgportal/models"
)

// ProfileRepo reads and writes the profiles table.
type ProfileRepo struct{ db *sql.DB }

func NewProfileRepo(conn *sql.DB) *ProfileRepo { return &ProfileRepo{db: conn} }

// Get returns the stored profile, or nil when the identity has none yet.
func (r *ProfileRepo) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	const q = `
SELECT id, email, company_id, role, tier, created_at
FROM profiles WHERE id = $1`
	var (
		p         models.UserProfile
		companyID sql.NullString
		tier      string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Email, &companyID, &p.Role, &tier, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryFailed("select profile", err)
	}
	if companyID.Valid {
		p.CompanyID = &companyID.String
	}
	p.Tier = models.Tier(tier)
	return &p, nil
}

// SetTier creates the profile if missing and sets its tier.
func (r *ProfileRepo) SetTier(ctx context.Context, id, email string, tier models.Tier) error {
	const q = `
INSERT INTO profiles (id, email, tier)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET tier = EXCLUDED.tier, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, q, id, email, string(tier)); err != nil {
		return queryFailed("upsert profile tier", err)
	}
	return nil
}
