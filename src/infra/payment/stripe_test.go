package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
	"malayalees/src/infra/config"
	"malayalees/src/infra/logger"
)

const testSecret = "whsec_test"

func newGateway() *StripeGateway {
	return NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: testSecret}, logger.Discard())
}

func sign(payload string) (string, []byte) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Header, signed.Payload
}

func TestItemsRoundTrip(t *testing.T) {
	items := []ports.CheckoutLineItem{
		{TicketTypeID: 7, Quantity: 2, UnitAmount: 2500},
		{TicketTypeID: 9, Quantity: 1, UnitAmount: 0},
	}
	encoded := EncodeItems(items)
	assert.Equal(t, "7:2:2500,9:1:0", encoded)

	decoded, err := DecodeItems(encoded)
	require.NoError(t, err)
	assert.Equal(t, items, decoded)
}

func TestDecodeItems_Malformed(t *testing.T) {
	for _, in := range []string{"", "7:2", "a:1:1", "7:-1:100"} {
		_, err := DecodeItems(in)
		assert.True(t, domain.IsValidationError(err), "input %q", in)
	}
}

func TestParseCompletedCheckout(t *testing.T) {
	payload := `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"api_version": "2020-01-01",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"amount_total": 5000,
			"currency": "usd",
			"customer_details": {"email": "anu@example.com"},
			"metadata": {
				"tenant_id": "tenant_a",
				"event_id": "42",
				"first_name": "Anu",
				"last_name": "Nair",
				"items": "7:2:2500"
			}
		}}
	}`
	header, body := sign(payload)

	done, err := newGateway().ParseCompletedCheckout(body, header)
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, "cs_test_1", done.SessionID)
	assert.Equal(t, "tenant_a", done.TenantID)
	assert.Equal(t, int64(42), done.EventID)
	assert.Equal(t, "anu@example.com", done.CustomerEmail)
	assert.Equal(t, int64(5000), done.AmountTotal)
	assert.Equal(t, []ports.CheckoutLineItem{{TicketTypeID: 7, Quantity: 2, UnitAmount: 2500}}, done.Items)
}

func TestParseCompletedCheckout_OtherEvent(t *testing.T) {
	header, body := sign(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{}}}`)

	done, err := newGateway().ParseCompletedCheckout(body, header)
	require.NoError(t, err)
	assert.Nil(t, done)
}

func TestParseCompletedCheckout_BadSignature(t *testing.T) {
	_, err := newGateway().ParseCompletedCheckout([]byte(`{}`), "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
}
