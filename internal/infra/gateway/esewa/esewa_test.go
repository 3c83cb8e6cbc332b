package esewa

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uatSecret = "8gBm/:&EnhH.1/q("

func TestSign(t *testing.T) {
	mac := hmac.New(sha256.New, []byte(uatSecret))
	mac.Write([]byte("total_amount=1000.0,transaction_uuid=abc123,product_code=EPAYTEST"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	got := Sign(uatSecret, "1000.0", "abc123", "EPAYTEST")
	require.Equal(t, want, got)
	require.NotEqual(t, got, Sign(uatSecret, "1000.00", "abc123", "EPAYTEST"))
	require.NotEqual(t, got, Sign("other", "1000.0", "abc123", "EPAYTEST"))
}

func newClient(statusURL string) *Client {
	return NewClient(Config{
		FormURL:     "https://rc-epay.esewa.com.np/api/epay/main/v2/form",
		StatusURL:   statusURL,
		ProductCode: "EPAYTEST",
		SecretKey:   uatSecret,
		SuccessURL:  "http://127.0.0.1:8000/api/payments/esewa/success/",
		FailureURL:  "http://127.0.0.1:8000/api/payments/esewa/failure/",
	})
}

func TestBuildForm(t *testing.T) {
	c := newClient("http://unused")
	form := c.BuildForm("1500.00", "0c9e6f3a4d1b4f0e8a2b7c5d6e9f1a2b")

	require.Equal(t, "1500.00", form.Amount)
	require.Equal(t, "1500.00", form.TotalAmount)
	require.Equal(t, "0", form.TaxAmount)
	require.Equal(t, "0", form.ProductServiceCharge)
	require.Equal(t, "0", form.ProductDeliveryCharge)
	require.Equal(t, "EPAYTEST", form.ProductCode)
	require.Equal(t, SignedFieldNames, form.SignedFieldNames)
	require.Equal(t, Sign(uatSecret, "1500.00", "0c9e6f3a4d1b4f0e8a2b7c5d6e9f1a2b", "EPAYTEST"), form.Signature)
	require.Equal(t, "https://rc-epay.esewa.com.np/api/epay/main/v2/form", c.FormURL())
}

func TestCheckStatusComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "EPAYTEST", r.URL.Query().Get("product_code"))
		assert.Equal(t, "1500.00", r.URL.Query().Get("total_amount"))
		assert.Equal(t, "tx-1", r.URL.Query().Get("transaction_uuid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"product_code":"EPAYTEST","transaction_uuid":"tx-1","total_amount":1500.0,"status":"COMPLETE","ref_id":"0007G36"}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv.URL).CheckStatus(context.Background(), "1500.00", "tx-1")
	require.NoError(t, err)
	require.True(t, resp.IsComplete())
	require.Equal(t, "0007G36", resp.Reference())
	require.Contains(t, string(resp.Raw), "COMPLETE")
}

func TestCheckStatusNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	resp, err := newClient(srv.URL).CheckStatus(context.Background(), "1500.00", "tx-2")
	require.NoError(t, err)
	require.False(t, resp.IsComplete())
	require.JSONEq(t, `{}`, string(resp.Raw))
}

func TestCheckStatusPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"PENDING","ref_id":null}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv.URL).CheckStatus(context.Background(), "1500.00", "tx-3")
	require.NoError(t, err)
	require.False(t, resp.IsComplete())
	require.Empty(t, resp.Reference())
}

func TestCheckStatusLegacyRefID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"Complete","refId":"R-9"}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv.URL).CheckStatus(context.Background(), "1500.00", "tx-5")
	require.NoError(t, err)
	require.True(t, resp.IsComplete())
	require.Equal(t, "R-9", resp.Reference())
}

func TestCheckStatusUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).CheckStatus(context.Background(), "1500.00", "tx-4")
	require.True(t, errors.Is(err, gateway.ErrUnavailable))
}
