package paypal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajitha00/farm-to-keells-api/internal/config"
	"github.com/sajitha00/farm-to-keells-api/internal/models"
	"github.com/sajitha00/farm-to-keells-api/internal/paypal"
)

func testInstruction() models.PayoutInstruction {
	return models.PayoutInstruction{
		BatchID:  "batch_test",
		Receiver: "farmer@example.com",
		Amount:   decimal.NewFromInt(25),
		Currency: "USD",
	}
}

// gatewayStub serves the token endpoint plus a configurable payouts
// endpoint.
func gatewayStub(t *testing.T, tokenCalls *int32, payouts http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			atomic.AddInt32(tokenCalls, 1)
		}
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/payments/payouts", payouts)
	return httptest.NewServer(mux)
}

func newTestClient(serverURL string) *paypal.Client {
	return paypal.NewClient(&config.PayPalConfig{
		BaseURL:      serverURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Timeout:      5,
		EmailSubject: "You have a payment from Farm to Keels!",
		Note:         "Thank you for your produce!",
	})
}

func TestClient_SubmitPayout_Accepted(t *testing.T) {
	server := gatewayStub(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		header := body["sender_batch_header"].(map[string]interface{})
		assert.Equal(t, "batch_test", header["sender_batch_id"])
		assert.Equal(t, "You have a payment from Farm to Keels!", header["email_subject"])

		items := body["items"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, "EMAIL", item["recipient_type"])
		assert.Equal(t, "farmer@example.com", item["receiver"])
		amount := item["amount"].(map[string]interface{})
		assert.Equal(t, "25", amount["value"])
		assert.Equal(t, "USD", amount["currency"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(paypal.PayoutResult{
			BatchHeader: paypal.BatchHeader{PayoutBatchID: "PB123", BatchStatus: "PENDING"},
		})
	})
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SubmitPayout(context.Background(), testInstruction())
	require.NoError(t, err)
	assert.Equal(t, "PB123", result.BatchHeader.PayoutBatchID)
	assert.Equal(t, "PENDING", result.BatchHeader.BatchStatus)
}

func TestClient_SubmitPayout_Rejected(t *testing.T) {
	server := gatewayStub(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(paypal.ErrorResponse{
			Name:    "INSUFFICIENT_FUNDS",
			Message: "Sender does not have sufficient funds.",
		})
	})
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SubmitPayout(context.Background(), testInstruction())
	require.Error(t, err)

	var rejected *paypal.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
	require.NotNil(t, rejected.Payload)
	assert.Equal(t, "INSUFFICIENT_FUNDS", rejected.Payload.Name)
	assert.Contains(t, rejected.Details(), "INSUFFICIENT_FUNDS")
}

func TestClient_SubmitPayout_GatewayError(t *testing.T) {
	server := gatewayStub(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"name":"INTERNAL_SERVICE_ERROR"}`))
	})
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SubmitPayout(context.Background(), testInstruction())
	require.Error(t, err)

	var rejected *paypal.RejectedError
	assert.False(t, errors.As(err, &rejected), "5xx must not be a rejection")
}

func TestClient_SubmitPayout_TokenReused(t *testing.T) {
	var tokenCalls int32
	server := gatewayStub(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"batch_header":{"payout_batch_id":"PB1","batch_status":"PENDING"}}`))
	})
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SubmitPayout(context.Background(), testInstruction())
	require.NoError(t, err)
	_, err = client.SubmitPayout(context.Background(), testInstruction())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestClient_SubmitPayout_TokenFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SubmitPayout(context.Background(), testInstruction())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authenticate")
}

func TestClient_SubmitPayout_ContextCancelled(t *testing.T) {
	server := gatewayStub(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"batch_header":{}}`))
	})
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SubmitPayout(ctx, testInstruction())
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	client := newTestClient("https://api-m.sandbox.paypal.com/")
	assert.NotNil(t, client)
	assert.NotNil(t, client.HTTPClient)
	assert.Equal(t, "https://api-m.sandbox.paypal.com", client.BaseURL())
}
