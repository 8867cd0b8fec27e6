package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/studiosync/billing-api/pkg/errors"
)

// ChargeRequest is a card charge against a stored payment method.
type ChargeRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
	AmountCents     int64  `json:"amount"`
	Currency        string `json:"currency"`
	Description     string `json:"description,omitempty"`
	IdempotencyKey  string `json:"-"`
}

// ChargeResponse is the gateway's view of a completed charge attempt.
type ChargeResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Declined bool   `json:"declined"`
	Message  string `json:"message,omitempty"`
}

// Client talks to the card processor's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a gateway client. A zero timeout defaults to 15s.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Charge submits one card charge. Declines come back as ErrPaymentDeclined;
// transport and server failures as ErrGateway.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "encode gateway request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "build gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "gateway request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "read gateway response")
	}

	var charge ChargeResponse
	if err := json.Unmarshal(raw, &charge); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "decode gateway response")
	}

	switch {
	case resp.StatusCode == http.StatusPaymentRequired || charge.Declined:
		c.logger.Warn("gateway declined charge",
			zap.String("gateway_ref", charge.ID),
			zap.String("message", charge.Message))
		return &charge, appErrors.ErrPaymentDeclined
	case resp.StatusCode >= 400:
		return nil, appErrors.Wrap(fmt.Errorf("status %d: %s", resp.StatusCode, charge.Message), appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "gateway rejected charge")
	}

	return &charge, nil
}
