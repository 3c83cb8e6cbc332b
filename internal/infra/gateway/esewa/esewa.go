package esewa

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
)

const (
	providerName     = "esewa"
	SignedFieldNames = "total_amount,transaction_uuid,product_code"
)

// Sign returns base64(HMAC-SHA256(secret, "total_amount=<a>,transaction_uuid=<u>,product_code=<c>")).
func Sign(secret, totalAmount, transactionUUID, productCode string) string {
	return signMessage(secret, fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", totalAmount, transactionUUID, productCode))
}

func signMessage(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// FormFields are posted by the browser to the eSewa form url, every value is a string.
type FormFields struct {
	Amount                string `json:"amount"`
	TaxAmount             string `json:"tax_amount"`
	TotalAmount           string `json:"total_amount"`
	TransactionUUID       string `json:"transaction_uuid"`
	ProductCode           string `json:"product_code"`
	ProductServiceCharge  string `json:"product_service_charge"`
	ProductDeliveryCharge string `json:"product_delivery_charge"`
	SuccessURL            string `json:"success_url"`
	FailureURL            string `json:"failure_url"`
	SignedFieldNames      string `json:"signed_field_names"`
	Signature             string `json:"signature"`
}

type StatusResponse struct {
	ProductCode     string          `json:"product_code"`
	TransactionUUID string          `json:"transaction_uuid"`
	TotalAmount     json.Number     `json:"total_amount"`
	Status          string          `json:"status"`
	RefID           string          `json:"ref_id"`
	LegacyRefID     string          `json:"refId"`
	Raw             json.RawMessage `json:"-"`
}

func (s *StatusResponse) IsComplete() bool {
	return strings.EqualFold(s.Status, "complete")
}

// Reference prefers ref_id and falls back to the older refId key.
func (s *StatusResponse) Reference() string {
	if s.RefID != "" {
		return s.RefID
	}
	return s.LegacyRefID
}

type Client struct {
	formURL     string
	statusURL   string
	productCode string
	secretKey   string
	successURL  string
	failureURL  string
	httpClient  *http.Client
}

type Config struct {
	FormURL     string
	StatusURL   string
	ProductCode string
	SecretKey   string
	SuccessURL  string
	FailureURL  string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(e *Client) {
		e.httpClient = c
	}
}

func NewClient(cf Config, opts ...Option) *Client {
	c := &Client{
		formURL:     cf.FormURL,
		statusURL:   cf.StatusURL,
		productCode: cf.ProductCode,
		secretKey:   cf.SecretKey,
		successURL:  cf.SuccessURL,
		failureURL:  cf.FailureURL,
		httpClient:  gateway.NewHTTPClient(gateway.DefaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FormURL() string {
	return c.formURL
}

// BuildForm signs and fills the payment form, totalAmount must already be the exact decimal string.
func (c *Client) BuildForm(totalAmount, transactionUUID string) FormFields {
	return FormFields{
		Amount:                totalAmount,
		TaxAmount:             "0",
		TotalAmount:           totalAmount,
		TransactionUUID:       transactionUUID,
		ProductCode:           c.productCode,
		ProductServiceCharge:  "0",
		ProductDeliveryCharge: "0",
		SuccessURL:            c.successURL,
		FailureURL:            c.failureURL,
		SignedFieldNames:      SignedFieldNames,
		Signature:             Sign(c.secretKey, totalAmount, transactionUUID, c.productCode),
	}
}

/*
CheckStatus queries the eSewa transaction status api.
A non json or unexpected body yields an empty status, which callers treat as not verified.

Errors:
  - gateway.ErrUnavailable: network failure, timeout or 5xx
*/
func (c *Client) CheckStatus(ctx context.Context, totalAmount, transactionUUID string) (*StatusResponse, error) {
	q := url.Values{}
	q.Set("product_code", c.productCode)
	q.Set("total_amount", totalAmount)
	q.Set("transaction_uuid", transactionUUID)

	target := c.statusURL
	if strings.Contains(target, "?") {
		target += "&" + q.Encode()
	} else {
		target += "?" + q.Encode()
	}

	resp, err := gateway.Do(ctx, c.httpClient, http.MethodGet, target, nil, nil)
	if err != nil {
		return nil, err
	}

	out := StatusResponse{Raw: resp.RawJSON()}
	if resp.StatusCode >= http.StatusBadRequest {
		return &out, nil
	}
	raw := out.Raw
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return &StatusResponse{Raw: raw}, nil
	}
	out.Raw = raw
	return &out, nil
}
