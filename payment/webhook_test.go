package payment

import (
	"testing"

	"esgportal/errs"
	"esgportal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	secret := []byte("whsec")
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"session_id":"cs_1","identity_id":"u1","email":"a@b.c","price_type":"annual"}}`)

	ev, err := ParseEvent(secret, body, Sign(secret, body))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "cs_1", ev.Data.SessionID)
	assert.Equal(t, models.PriceAnnual, ev.Data.PriceType)
}

func TestVerifySignature_Rejects(t *testing.T) {
	secret := []byte("whsec")
	body := []byte(`{}`)

	require.ErrorIs(t, VerifySignature(secret, body, ""), errs.ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature(secret, body, "zz"), errs.ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature(secret, body, Sign([]byte("other"), body)), errs.ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature(nil, body, Sign(nil, body)), errs.ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature(secret, []byte(`{"x":1}`), Sign(secret, body)), errs.ErrInvalidSignature)
}
