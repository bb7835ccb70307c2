package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"esgportal/errs"
	"esgportal/models"
)

// AccountRepo stores sign-in credentials.
type AccountRepo struct{ db *sql.DB }

func NewAccountRepo(conn *sql.DB) *AccountRepo { return &AccountRepo{db: conn} }

// Create inserts a new account. A taken email yields errs.ErrAlreadyExists.
func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	const q = `
INSERT INTO accounts (id, email, password_hash)
VALUES ($1, $2, $3)
RETURNING created_at`
	err := r.db.QueryRowContext(ctx, q, a.ID, strings.ToLower(a.Email), a.PasswordHash).Scan(&a.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return queryFailed("insert account", err)
	}
	return nil
}

// GetByEmail returns the account for email, or nil when none exists.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	const q = `
SELECT id, email, password_hash, created_at
FROM accounts WHERE email = $1`
	var a models.Account
	err := r.db.QueryRowContext(ctx, q, strings.ToLower(email)).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryFailed("select account", err)
	}
	return &a, nil
}
