package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
)

func TestCreateOrder(t *testing.T) {
	var gotAuthUser, gotAuthPass string
	var gotPayload orderPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(orderResponse{
			ID:       "order_abc123",
			Amount:   gotPayload.Amount,
			Currency: gotPayload.Currency,
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient("rzp_test_key", "secret").WithBaseURL(server.URL)
	order, err := client.CreateOrder(context.Background(), engine.OrderRequest{
		Amount:   25000,
		Currency: "INR",
		Receipt:  "rcpt_7",
		Notes:    map[string]string{"bookingId": "7"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_abc123", order.ID)
	assert.Equal(t, int64(25000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", gotAuthUser)
	assert.Equal(t, "secret", gotAuthPass)
	assert.Equal(t, "rcpt_7", gotPayload.Receipt)
}

func TestCreateOrderServerErrorIsRetryable(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := NewClient("k", "s").WithBaseURL(server.URL)
		_, err := client.CreateOrder(context.Background(), engine.OrderRequest{Amount: 100, Currency: "INR"})
		assert.Equal(t, engine.KindProviderUnavailable, engine.KindOf(err), "status %d", code)
		assert.True(t, engine.Retryable(err), "status %d", code)
		server.Close()
	}
}

func TestCreateOrderRejectionIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "BAD_REQUEST_ERROR", "description": "amount too low"},
		})
	}))
	defer server.Close()

	client := NewClient("k", "s").WithBaseURL(server.URL)
	_, err := client.CreateOrder(context.Background(), engine.OrderRequest{Amount: 1, Currency: "INR"})
	assert.Equal(t, engine.KindInternal, engine.KindOf(err))
	assert.False(t, engine.Retryable(err))
	assert.Contains(t, err.Error(), "amount too low")
}

func TestCreateOrderUnreachableProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient("k", "s").WithBaseURL(server.URL)
	_, err := client.CreateOrder(context.Background(), engine.OrderRequest{Amount: 100, Currency: "INR"})
	assert.Equal(t, engine.KindProviderUnavailable, engine.KindOf(err))
}

func TestCreateOrderMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"amount": 100})
	}))
	defer server.Close()

	client := NewClient("k", "s").WithBaseURL(server.URL)
	_, err := client.CreateOrder(context.Background(), engine.OrderRequest{Amount: 100, Currency: "INR"})
	assert.Equal(t, engine.KindInternal, engine.KindOf(err))
}
