// Package payment talks to the hosted payment backend and resolves provider checkout pages.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"esgportal/errs"
	"esgportal/models"
)

const genericCreateFailure = "failed to create checkout session"

// CreateSessionRequest is the body sent to the payment backend.
type CreateSessionRequest struct {
	PriceType  models.PriceType `json:"priceType"`
	SuccessURL string           `json:"successUrl"`
	CancelURL  string           `json:"cancelUrl"`
}

// CreateSessionResponse is the backend's answer. URL may be empty, in which
// case the caller redirects through the provider with SessionID.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Backend creates hosted checkout sessions.
type Backend interface {
	CreateCheckoutSession(ctx context.Context, req CreateSessionRequest, accessToken string) (*CreateSessionResponse, error)
}

// HTTPBackend calls the checkout-session function over HTTP.
type HTTPBackend struct {
	endpoint string
	client   *http.Client
}

var _ Backend = (*HTTPBackend)(nil)

func NewHTTPBackend(endpoint string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{endpoint: endpoint, client: client}
}

// CreateCheckoutSession posts req with the caller's access token. It is not
// retried: every successful call creates a new session.
func (b *HTTPBackend) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest, accessToken string) (*CreateSessionResponse, error) {
	if accessToken == "" {
		return nil, errs.ErrNotAuthenticated
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPaymentSessionCreationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPaymentSessionCreationFailed, err)
	}

	var out struct {
		CreateSessionResponse
		Error json.RawMessage `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode >= 400 || hasError(out.Error) {
		return nil, creationFailed(errorMessage(out.Error))
	}
	if decodeErr != nil {
		return nil, creationFailed("")
	}
	if out.SessionID == "" && out.URL == "" {
		return nil, creationFailed("")
	}
	return &out.CreateSessionResponse, nil
}

func hasError(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// errorMessage accepts {"error": "msg"} and {"error": {"message": "msg"}}.
func errorMessage(raw json.RawMessage) string {
	if !hasError(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return ""
}

func creationFailed(msg string) error {
	if msg == "" {
		msg = genericCreateFailure
	}
	return &CreationError{Message: msg}
}

// CreationError carries the backend's message for a refused checkout session.
type CreationError struct {
	Message string
}

func (e *CreationError) Error() string { return e.Message }

func (e *CreationError) Unwrap() error { return errs.ErrPaymentSessionCreationFailed }
