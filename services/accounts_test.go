package services

import (
	"context"
	"strings"
	"testing"

	"esgportal/errs"
	"esgportal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccounts struct {
	byEmail map[string]*models.Account
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) error {
	if _, ok := f.byEmail[a.Email]; ok {
		return errs.ErrAlreadyExists
	}
	f.byEmail[a.Email] = a
	return nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	return f.byEmail[email], nil
}

func newTestAccounts() (*Accounts, *fakeAccounts) {
	store := &fakeAccounts{byEmail: map[string]*models.Account{}}
	a := NewAccounts(store)
	a.cost = bcrypt.MinCost
	return a, store
}

func TestAccounts_SignUpThenAuthenticate(t *testing.T) {
	a, store := newTestAccounts()
	ctx := context.Background()

	id, err := a.SignUp(ctx, " Alice@Example.com ", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", id.Email)
	require.NotEmpty(t, id.ID)
	require.False(t, strings.Contains(store.byEmail["alice@example.com"].PasswordHash, "correct horse"))

	got, err := a.Authenticate(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, id.ID, got.ID)

	_, err = a.Authenticate(ctx, "alice@example.com", "wrong password")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = a.Authenticate(ctx, "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestAccounts_DuplicateAndReservedEmail(t *testing.T) {
	a, _ := newTestAccounts()
	ctx := context.Background()

	_, err := a.SignUp(ctx, "bob@example.com", "password1")
	require.NoError(t, err)
	_, err = a.SignUp(ctx, "bob@example.com", "password2")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	_, err = a.SignUp(ctx, DemoUser().Email, "password1")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestAccounts_PasswordTooLong(t *testing.T) {
	a, store := newTestAccounts()

	_, err := a.SignUp(context.Background(), "carol@example.com", strings.Repeat("x", 73))
	require.ErrorIs(t, err, errs.ErrPasswordTooLong)
	require.Empty(t, store.byEmail)

	// 72 bytes is the most bcrypt hashes, so it still works.
	_, err = a.SignUp(context.Background(), "carol@example.com", strings.Repeat("x", 72))
	require.NoError(t, err)
}
