package services

import (
	"context"
	"errors"
	"testing"

	"esgportal/errs"
	"esgportal/models"

	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	rows  map[string]*models.UserProfile
	err   error
	calls int
}

func (f *fakeProfiles) Get(_ context.Context, id string) (*models.UserProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[id], nil
}

func TestResolve_MissingRowIsFree(t *testing.T) {
	store := &fakeProfiles{}
	r := NewProfileResolver(store)

	p, err := r.Resolve(context.Background(), &models.Identity{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)
	require.Equal(t, "u1", p.ID)
	require.Equal(t, "a@b.c", p.Email)
	require.Equal(t, models.TierFree, p.Tier)
	require.Equal(t, models.RoleUser, p.Role)
}

func TestResolve_StoredRow(t *testing.T) {
	store := &fakeProfiles{rows: map[string]*models.UserProfile{
		"u1": {ID: "u1", Email: "a@b.c", Role: models.RoleUser, Tier: models.TierPro},
	}}
	r := NewProfileResolver(store)

	p, err := r.Resolve(context.Background(), &models.Identity{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)
	require.Equal(t, models.TierPro, p.Tier)

	// No caching: a tier change is seen on the next call.
	store.rows["u1"].Tier = models.TierFree
	p, err = r.Resolve(context.Background(), &models.Identity{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)
	require.Equal(t, models.TierFree, p.Tier)
	require.Equal(t, 2, store.calls)
}

func TestResolve_StoreError(t *testing.T) {
	r := NewProfileResolver(&fakeProfiles{err: errors.New("connection reset")})
	_, err := r.Resolve(context.Background(), &models.Identity{ID: "u1"})
	require.ErrorIs(t, err, errs.ErrStoreQueryFailed)
}

func TestResolve_IDMismatch(t *testing.T) {
	store := &fakeProfiles{rows: map[string]*models.UserProfile{"u1": {ID: "u2"}}}
	_, err := NewProfileResolver(store).Resolve(context.Background(), &models.Identity{ID: "u1"})
	require.ErrorIs(t, err, errs.ErrStoreQueryFailed)
}

func TestResolve_NoIdentity(t *testing.T) {
	store := &fakeProfiles{}
	r := NewProfileResolver(store)

	_, err := r.Resolve(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)
	_, err = r.Resolve(context.Background(), &models.Identity{})
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)
	require.Zero(t, store.calls)
}

func TestResolve_DemoSkipsStore(t *testing.T) {
	store := &fakeProfiles{}
	demo := DemoUser()
	p, err := NewProfileResolver(store).Resolve(context.Background(), &demo)
	require.NoError(t, err)
	require.Equal(t, DemoProfile().ID, p.ID)
	require.Equal(t, models.TierFree, p.Tier)
	require.NotNil(t, p.CompanyID)
	require.Zero(t, store.calls)
}
