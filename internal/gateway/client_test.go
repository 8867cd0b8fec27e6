package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/studiosync/billing-api/pkg/errors"
)

func TestClientChargeSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/charges", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "chg-1", r.Header.Get("Idempotency-Key"))

		var req ChargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(15200), req.AmountCents)

		json.NewEncoder(w).Encode(ChargeResponse{ID: "ref-1", Status: "succeeded"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second, nil)
	resp, err := client.Charge(context.Background(), ChargeRequest{
		PaymentMethodID: "pm-1",
		AmountCents:     15200,
		Currency:        "usd",
		IdempotencyKey:  "chg-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "ref-1", resp.ID)
}

func TestClientChargeDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(ChargeResponse{ID: "ref-2", Status: "declined", Declined: true, Message: "insufficient funds"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second, nil)
	resp, err := client.Charge(context.Background(), ChargeRequest{PaymentMethodID: "pm-1", AmountCents: 100})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPaymentDeclined))
	// The decline still carries the gateway reference for the payment record.
	require.NotNil(t, resp)
	assert.Equal(t, "ref-2", resp.ID)
}

func TestClientChargeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ChargeResponse{Message: "boom"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second, nil)
	_, err := client.Charge(context.Background(), ChargeRequest{PaymentMethodID: "pm-1", AmountCents: 100})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGateway.Code, appErr.Code)
}

func TestClientChargeTransportFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key", 200*time.Millisecond, nil)
	_, err := client.Charge(context.Background(), ChargeRequest{PaymentMethodID: "pm-1", AmountCents: 100})
	require.Error(t, err)
}
