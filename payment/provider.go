package payment

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"esgportal/errs"
)

// Provider resolves the hosted checkout page of a session id.
type Provider interface {
	CheckoutURL(sessionID string) (string, error)
}

// HostedProvider builds checkout page URLs from the publishable key.
type HostedProvider struct {
	key  string
	base string
}

// NewHostedProvider fails with errs.ErrPaymentProviderUnavailable when the
// publishable key or base URL is missing.
func NewHostedProvider(publishableKey, baseURL string) (*HostedProvider, error) {
	if publishableKey == "" {
		return nil, errors.Join(errs.ErrPaymentProviderUnavailable, errors.New("publishable key not configured"))
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Join(errs.ErrPaymentProviderUnavailable, errors.New("invalid checkout base url"))
	}
	return &HostedProvider{key: publishableKey, base: strings.TrimRight(baseURL, "/")}, nil
}

func (p *HostedProvider) CheckoutURL(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("payment: empty session id")
	}
	return p.base + "/" + url.PathEscape(sessionID) + "?" + url.Values{"key": {p.key}}.Encode(), nil
}

// ProviderLoader initializes a Provider on first use.
type ProviderLoader func() (Provider, error)

// LazyHostedProvider defers NewHostedProvider to the first call so a missing key
// never fails startup. The outcome of the first call is reused.
func LazyHostedProvider(publishableKey, baseURL string) ProviderLoader {
	var (
		once sync.Once
		p    Provider
		err  error
	)
	return func() (Provider, error) {
		once.Do(func() {
			var hp *HostedProvider
			hp, err = NewHostedProvider(publishableKey, baseURL)
			if err == nil {
				p = hp
			}
		})
		return p, err
	}
}
