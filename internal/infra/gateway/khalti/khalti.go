package khalti

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/shopspring/decimal"
)

const providerName = "khalti"

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// InitiateRequest amounts are in paisa.
type InitiateRequest struct {
	ReturnURL         string       `json:"return_url"`
	WebsiteURL        string       `json:"website_url"`
	Amount            int64        `json:"amount"`
	PurchaseOrderID   string       `json:"purchase_order_id"`
	PurchaseOrderName string       `json:"purchase_order_name"`
	CustomerInfo      CustomerInfo `json:"customer_info"`
}

type InitiateResponse struct {
	Pidx       string          `json:"pidx"`
	PaymentURL string          `json:"payment_url"`
	ExpiresAt  string          `json:"expires_at"`
	ExpiresIn  int             `json:"expires_in"`
	Raw        json.RawMessage `json:"-"`
}

type LookupResponse struct {
	Pidx          string          `json:"pidx"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	TransactionID *string         `json:"transaction_id"`
	Fee           decimal.Decimal `json:"fee"`
	Refunded      bool            `json:"refunded"`
	Raw           json.RawMessage `json:"-"`
}

// IsCompleted compares the status case-insensitively.
func (l *LookupResponse) IsCompleted() bool {
	return strings.EqualFold(l.Status, "completed")
}

func (l *LookupResponse) Reference() string {
	if l.TransactionID == nil {
		return ""
	}
	return *l.TransactionID
}

// Client talks to the Khalti ePayment v2 api: POST {base}/epayment/initiate/ and /epayment/lookup/.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(k *Client) {
		k.httpClient = c
	}
}

func NewClient(baseURL, secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: gateway.NewHTTPClient(gateway.DefaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Key "+c.secretKey)
	return h
}

/*
Initiate creates a payment session.

Errors:
  - gateway.ErrUnavailable: network failure, timeout or 5xx
  - *gateway.ProviderError: khalti refused the request (status >= 400), Body holds its response
*/
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	resp, err := gateway.Do(ctx, c.httpClient, http.MethodPost, c.baseURL+"/epayment/initiate/", c.header(), req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &gateway.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Body: resp.RawJSON()}
	}

	var out InitiateResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode khalti initiate response: %w", err)
	}
	out.Raw = resp.RawJSON()
	return &out, nil
}

// Lookup asks khalti for the authoritative state of pidx.
func (c *Client) Lookup(ctx context.Context, pidx string) (*LookupResponse, error) {
	resp, err := gateway.Do(ctx, c.httpClient, http.MethodPost, c.baseURL+"/epayment/lookup/", c.header(), map[string]string{"pidx": pidx})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &gateway.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Body: resp.RawJSON()}
	}

	// an undecodable answer carries no status, the payment stays unverified
	var out LookupResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return &LookupResponse{Raw: resp.RawJSON()}, nil
	}
	out.Raw = resp.RawJSON()
	return &out, nil
}
