// Package payment talks to the external payment provider. Only order minting
// lives here; callback verification is pure HMAC work and stays in the
// engine, where it runs against the server-held secret.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
)

const defaultBaseURL = "https://api.razorpay.com"

// Client mints orders over the provider's REST API with basic auth. It
// implements engine.PaymentProvider. Transport failures and provider 5xx/429
// responses come back retryable; everything else is definitive.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

func NewClient(keyID, keySecret string) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client somewhere else, used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

type orderPayload struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, req engine.OrderRequest) (*engine.ProviderOrder, error) {
	body, err := json.Marshal(orderPayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, engine.Internal("failed to encode order request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, engine.Internal("failed to build order request", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, engine.ProviderUnavailable("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, engine.ProviderUnavailable("failed to read provider response", err)
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, engine.ProviderUnavailable(
			fmt.Sprintf("payment provider returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		var pe errorResponse
		_ = json.Unmarshal(respBody, &pe)
		return nil, engine.Internal(
			fmt.Sprintf("payment provider rejected the order: %s", pe.Error.Description), nil)
	}

	var order orderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, engine.Internal("failed to decode provider order", err)
	}
	if order.ID == "" {
		return nil, engine.Internal("provider order missing id", nil)
	}

	return &engine.ProviderOrder{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}
