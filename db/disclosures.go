package db

import (
	"context"
	"database/sql"
	"errors"

	"esgportal/models"
)

// DisclosureRepo stores generated disclosure narratives.
type DisclosureRepo struct{ db *sql.DB }

func NewDisclosureRepo(conn *sql.DB) *DisclosureRepo { return &DisclosureRepo{db: conn} }

func (r *DisclosureRepo) Insert(ctx context.Context, d *models.Disclosure) error {
	const q = `
INSERT INTO disclosures (id, user_id, template_id, jurisdiction, title, narrative)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	err := r.db.QueryRowContext(ctx, q, d.ID, d.UserID, d.TemplateID, d.Jurisdiction, d.Title, d.Narrative).
		Scan(&d.CreatedAt)
	if err != nil {
		return queryFailed("insert disclosure", err)
	}
	return nil
}

// Get returns the user's disclosure with id, or nil.
func (r *DisclosureRepo) Get(ctx context.Context, userID, id string) (*models.Disclosure, error) {
	const q = `
SELECT id, user_id, template_id, jurisdiction, title, narrative, created_at
FROM disclosures WHERE id = $1 AND user_id = $2`
	var d models.Disclosure
	err := r.db.QueryRowContext(ctx, q, id, userID).
		Scan(&d.ID, &d.UserID, &d.TemplateID, &d.Jurisdiction, &d.Title, &d.Narrative, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryFailed("select disclosure", err)
	}
	return &d, nil
}

// List returns the user's most recent disclosures.
func (r *DisclosureRepo) List(ctx context.Context, userID string, limit int) ([]models.Disclosure, error) {
	const q = `
SELECT id, user_id, template_id, jurisdiction, title, narrative, created_at
FROM disclosures WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, queryFailed("list disclosures", err)
	}
	defer rows.Close()

	out := []models.Disclosure{}
	for rows.Next() {
		var d models.Disclosure
		if err := rows.Scan(&d.ID, &d.UserID, &d.TemplateID, &d.Jurisdiction, &d.Title, &d.Narrative, &d.CreatedAt); err != nil {
			return nil, queryFailed("scan disclosure", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed("list disclosures", err)
	}
	return out, nil
}

func (r *DisclosureRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM disclosures WHERE user_id = $1", userID).Scan(&n); err != nil {
		return 0, queryFailed("count disclosures", err)
	}
	return n, nil
}
