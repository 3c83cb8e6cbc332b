package khalti

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL+"/api/v2/", "test-secret")
}

func TestInitiate(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/epayment/initiate/", r.URL.Path)
		assert.Equal(t, "Key test-secret", r.Header.Get("Authorization"))

		var body InitiateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(150000), body.Amount)
		assert.Equal(t, "42", body.PurchaseOrderID)
		assert.Equal(t, "bishal", body.CustomerInfo.Name)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pidx":"bZQLD9wRVWo4CdESSfuSsB","payment_url":"https://test-pay.khalti.com/?pidx=bZQLD9wRVWo4CdESSfuSsB","expires_at":"2025-01-01T12:00:00+05:45","expires_in":1800}`))
	})

	resp, err := client.Initiate(context.Background(), InitiateRequest{
		ReturnURL:         "http://127.0.0.1:8000/api/payments/khalti/callback/",
		WebsiteURL:        "http://127.0.0.1:8000/",
		Amount:            150000,
		PurchaseOrderID:   "42",
		PurchaseOrderName: "Order 42",
		CustomerInfo:      CustomerInfo{Name: "bishal", Email: "b@example.com", Phone: "9800000001"},
	})
	require.NoError(t, err)
	require.Equal(t, "bZQLD9wRVWo4CdESSfuSsB", resp.Pidx)
	require.Contains(t, resp.PaymentURL, "pidx=")
	require.Contains(t, string(resp.Raw), "expires_in")
}

func TestInitiateRejected(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"amount":["Amount should be greater than Rs. 10, that is 1000 paisa."],"error_key":"validation_error"}`))
	})

	_, err := client.Initiate(context.Background(), InitiateRequest{Amount: 100})
	var perr *gateway.ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusBadRequest, perr.StatusCode)
	require.Contains(t, string(perr.Body), "validation_error")
}

func TestLookup(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/epayment/lookup/", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pidx-1", body["pidx"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pidx":"pidx-1","total_amount":150000,"status":"Completed","transaction_id":"GFq9PFS7b2iYvL8Lir9oXe","fee":0,"refunded":false}`))
	})

	resp, err := client.Lookup(context.Background(), "pidx-1")
	require.NoError(t, err)
	require.True(t, resp.IsCompleted())
	require.True(t, decimal.NewFromInt(150000).Equal(resp.TotalAmount))
	require.Equal(t, "GFq9PFS7b2iYvL8Lir9oXe", resp.Reference())
}

func TestLookupPendingWithoutTransaction(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pidx":"pidx-2","total_amount":150000,"status":"Pending","transaction_id":null}`))
	})

	resp, err := client.Lookup(context.Background(), "pidx-2")
	require.NoError(t, err)
	require.False(t, resp.IsCompleted())
	require.Empty(t, resp.Reference())
}

func TestLookupNotJSON(t *testing.T) {
	_, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	resp, err := client.Lookup(context.Background(), "pidx-4")
	require.NoError(t, err)
	require.False(t, resp.IsCompleted())
	require.Empty(t, resp.Reference())
	require.JSONEq(t, `{}`, string(resp.Raw))
}

func TestLookupUnavailable(t *testing.T) {
	srv, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.Lookup(context.Background(), "pidx-3")
	require.True(t, errors.Is(err, gateway.ErrUnavailable))
}
