package db

import (
	"context"
	"database/sql"
	"time"

	"esgportal/models"
)

// CheckoutRepo records checkout sessions so webhooks and the sweeper can reconcile them.
type CheckoutRepo struct{ db *sql.DB }

func NewCheckoutRepo(conn *sql.DB) *CheckoutRepo { return &CheckoutRepo{db: conn} }

// Insert records a newly created checkout session as pending.
func (r *CheckoutRepo) Insert(ctx context.Context, cs *models.CheckoutSession) error {
	const q = `
INSERT INTO checkout_sessions (session_id, identity_id, price_type, url, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`
	err := r.db.QueryRowContext(ctx, q, cs.SessionID, cs.IdentityID, string(cs.PriceType), cs.URL, models.CheckoutPending).
		Scan(&cs.CreatedAt)
	if err != nil {
		return queryFailed("insert checkout session", err)
	}
	cs.Status = models.CheckoutPending
	return nil
}

// Complete marks the session completed, creating the row if it was never recorded.
// It reports false when the session had already been completed.
func (r *CheckoutRepo) Complete(ctx context.Context, sessionID, identityID string, priceType models.PriceType) (bool, error) {
	const q = `
INSERT INTO checkout_sessions (session_id, identity_id, price_type, status, completed_at)
VALUES ($1, $2, $3, 'completed', NOW())
ON CONFLICT (session_id) DO UPDATE SET status = 'completed', completed_at = NOW()
WHERE checkout_sessions.status <> 'completed'`
	res, err := r.db.ExecContext(ctx, q, sessionID, identityID, string(priceType))
	if err != nil {
		return false, queryFailed("complete checkout session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, queryFailed("complete checkout session", err)
	}
	return n > 0, nil
}

// ExpirePending marks pending sessions created before cutoff as expired.
func (r *CheckoutRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
UPDATE checkout_sessions SET status = 'expired'
WHERE status = 'pending' AND created_at < $1`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, queryFailed("expire checkout sessions", err)
	}
	return res.RowsAffected()
}

// CountByStatus returns the identity's checkout sessions grouped by status.
func (r *CheckoutRepo) CountByStatus(ctx context.Context, identityID string) (map[string]int, error) {
	const q = `
SELECT status, COUNT(*) FROM checkout_sessions
WHERE identity_id = $1
GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, identityID)
	if err != nil {
		return nil, queryFailed("count checkout sessions", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, queryFailed("scan checkout count", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed("count checkout sessions", err)
	}
	return counts, nil
}
