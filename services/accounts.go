package services

import (
	"context"
	"errors"
	"strings"

	"esgportal/errs"
	"esgportal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore persists sign-in credentials.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	// GetByEmail returns nil, nil when no account has email.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Accounts signs users up and checks their passwords.
type Accounts struct {
	store AccountStore
	cost  int
}

func NewAccounts(store AccountStore) *Accounts {
	return &Accounts{store: store, cost: bcrypt.DefaultCost}
}

// SignUp creates an account. A taken email yields errs.ErrAlreadyExists.
func (a *Accounts) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if strings.EqualFold(email, demoEmail) {
		return nil, errs.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errs.ErrPasswordTooLong
	}
	if err != nil {
		return nil, err
	}
	acct := &models.Account{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := a.store.Create(ctx, acct); err != nil {
		return nil, err
	}
	return &models.Identity{ID: acct.ID, Email: acct.Email}, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both yield errs.ErrInvalidCredentials.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	acct, err := a.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}
	return &models.Identity{ID: acct.ID, Email: acct.Email}, nil
}
