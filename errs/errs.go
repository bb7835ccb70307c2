// Package errs contains sentinel errors shared by the store, services and handlers.
package errs

import "errors"

var (
	// ErrNotAuthenticated means the operation needs a session and none is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStoreQueryFailed wraps any store failure other than "not found".
	ErrStoreQueryFailed = errors.New("store query failed")

	// ErrPaymentSessionCreationFailed means the payment backend refused to create a checkout session.
	ErrPaymentSessionCreationFailed = errors.New("failed to create checkout session")

	// ErrPaymentProviderUnavailable means the provider redirect library could not be initialized.
	ErrPaymentProviderUnavailable = errors.New("payment provider unavailable")

	// ErrDemoReadOnly means the demo identity attempted a write or billing operation.
	ErrDemoReadOnly = errors.New("demo mode is read-only")

	// ErrNotEntitled means the caller's tier does not include the requested feature.
	ErrNotEntitled = errors.New("not entitled")

	// ErrInvalidPriceType means the price plan selector is not one of the known plans.
	ErrInvalidPriceType = errors.New("invalid price type")

	// ErrInvalidCredentials means sign-in failed. It never says which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordTooLong means the password exceeds the 72 bytes bcrypt can hash.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrInvalidEvent means a signed billing event lacks the fields needed to apply it.
	ErrInvalidEvent = errors.New("invalid billing event")

	// ErrAlreadyExists indicates a unique constraint violation (e.g. email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrCheckoutInFlight means the same client already has a checkout request running.
	ErrCheckoutInFlight = errors.New("checkout already in progress")

	// ErrUnknownTemplate means a disclosure referenced a template that does not exist.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrInvalidSignature means a webhook payload failed signature verification.
	ErrInvalidSignature = errors.New("invalid signature")
)
