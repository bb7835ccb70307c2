package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esgportal/errs"
	"esgportal/models"
)

// ProfileStore is the read side of the profiles table.
type ProfileStore interface {
	// Get returns nil, nil when the identity has no stored profile.
	Get(ctx context.Context, id string) (*models.UserProfile, error)
}

// ProfileResolver turns an identity into its billing profile.
// Results are never cached: tier must reflect the latest entitlement.
type ProfileResolver struct {
	store ProfileStore
	now   func() time.Time
}

func NewProfileResolver(store ProfileStore) *ProfileResolver {
	return &ProfileResolver{store: store, now: time.Now}
}

// Resolve fetches the identity's profile, synthesizing a free one on first login.
func (r *ProfileResolver) Resolve(ctx context.Context, identity *models.Identity) (*models.UserProfile, error) {
	if identity == nil || identity.ID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	if identity.Demo {
		p := DemoProfile()
		return &p, nil
	}

	p, err := r.store.Get(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, errs.ErrStoreQueryFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrStoreQueryFailed, err)
	}
	if p == nil {
		return &models.UserProfile{
			ID:        identity.ID,
			Email:     identity.Email,
			Role:      models.RoleUser,
			Tier:      models.TierFree,
			CreatedAt: r.now(),
		}, nil
	}
	if p.ID != identity.ID {
		return nil, fmt.Errorf("%w: profile id %q does not match identity", errs.ErrStoreQueryFailed, p.ID)
	}
	return p, nil
}
