package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/contentforge/contentforge/internal/plan"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

// PaystackConfig holds the gateway credentials. The secret key doubles as
// the webhook signing secret.
type PaystackConfig struct {
	SecretKey string `env:"PAYSTACK_SECRET_KEY,required"`
}

// CheckoutMetadata rides through the gateway opaquely and correlates a
// transaction back to the purchasing user on verification.
type CheckoutMetadata struct {
	UserID string    `json:"userId"`
	Plan   plan.Plan `json:"subscriptionPlan"`
}

// InitializeRequest starts a hosted checkout. AmountMinor is in the
// currency's minor unit, as the gateway expects.
type InitializeRequest struct {
	Email       string           `json:"email"`
	AmountMinor int64            `json:"amount"`
	Metadata    CheckoutMetadata `json:"metadata"`
}

// Checkout is the gateway's handle on a newly created transaction.
type Checkout struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the verified state of a checkout.
type Transaction struct {
	Status      string
	AmountMinor int64
	Currency    string
	Email       string
	Metadata    CheckoutMetadata
}

// Gateway is the payment-provider contract the ledger depends on.
// PaystackClient implements it; tests substitute mocks.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error)
	Verify(ctx context.Context, reference string) (*Transaction, error)
}

// PaystackClient talks to the Paystack REST API with a bounded request
// timeout.
type PaystackClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// PaystackOption configures a PaystackClient.
type PaystackOption func(*PaystackClient)

// WithPaystackBaseURL overrides the API endpoint. Used by tests.
func WithPaystackBaseURL(u string) PaystackOption {
	return func(c *PaystackClient) { c.baseURL = u }
}

// WithPaystackHTTPClient overrides the HTTP client.
func WithPaystackHTTPClient(hc *http.Client) PaystackOption {
	return func(c *PaystackClient) { c.client = hc }
}

func NewPaystackClient(cfg PaystackConfig, opts ...PaystackOption) *PaystackClient {
	c := &PaystackClient{
		secretKey: cfg.SecretKey,
		baseURL:   defaultPaystackBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *PaystackClient) Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error) {
	data, err := c.do(ctx, http.MethodPost, "/transaction/initialize", req)
	if err != nil {
		return nil, err
	}
	var out Checkout
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode initialize response: %w", err)
	}
	return &out, nil
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*Transaction, error) {
	data, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Status   string           `json:"status"`
		Amount   int64            `json:"amount"`
		Currency string           `json:"currency"`
		Metadata CheckoutMetadata `json:"metadata"`
		Customer struct {
			Email string `json:"email"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	return &Transaction{
		Status:      out.Status,
		AmountMinor: out.Amount,
		Currency:    out.Currency,
		Email:       out.Customer.Email,
		Metadata:    out.Metadata,
	}, nil
}

func (c *PaystackClient) do(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode paystack request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read paystack response: %w", err)
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode paystack response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Status {
		if env.Message == "" {
			env.Message = http.StatusText(resp.StatusCode)
		}
		return nil, errors.New("paystack: " + env.Message)
	}
	return env.Data, nil
}
