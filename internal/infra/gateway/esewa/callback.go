package esewa

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// CallbackData is what eSewa appends to success_url as ?data=<base64 json>.
type CallbackData struct {
	TransactionCode  string      `json:"transaction_code"`
	Status           string      `json:"status"`
	TotalAmount      jsonNumeric `json:"total_amount"`
	TransactionUUID  string      `json:"transaction_uuid"`
	ProductCode      string      `json:"product_code"`
	SignedFieldNames string      `json:"signed_field_names"`
	Signature        string      `json:"signature"`
}

// jsonNumeric accepts both "1,500.0" and 1500.0.
type jsonNumeric string

func (n *jsonNumeric) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = jsonNumeric(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = jsonNumeric(num.String())
	return nil
}

func (n jsonNumeric) String() string {
	return string(n)
}

// DecodeCallbackData decodes the data query parameter, tolerating '+' turned into ' ' by form decoding.
func DecodeCallbackData(data string) (*CallbackData, error) {
	data = strings.ReplaceAll(strings.TrimSpace(data), " ", "+")
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		if raw, err = base64.URLEncoding.DecodeString(data); err != nil {
			return nil, fmt.Errorf("decode esewa callback data: %w", err)
		}
	}
	var out CallbackData
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode esewa callback data: %w", err)
	}
	return &out, nil
}

func (c *CallbackData) field(name string) (string, bool) {
	switch name {
	case "transaction_code":
		return c.TransactionCode, true
	case "status":
		return c.Status, true
	case "total_amount":
		return c.TotalAmount.String(), true
	case "transaction_uuid":
		return c.TransactionUUID, true
	case "product_code":
		return c.ProductCode, true
	case "signed_field_names":
		return c.SignedFieldNames, true
	default:
		return "", false
	}
}

/*
VerifySignature recomputes the HMAC over signed_field_names in their listed order.
The status api stays authoritative, a bad signature only means the redirect was not produced by eSewa.
*/
func (c *CallbackData) VerifySignature(secret string) bool {
	if c.SignedFieldNames == "" || c.Signature == "" {
		return false
	}
	names := strings.Split(c.SignedFieldNames, ",")
	parts := make([]string, 0, len(names))
	for _, name := range names {
		v, ok := c.field(strings.TrimSpace(name))
		if !ok {
			return false
		}
		parts = append(parts, strings.TrimSpace(name)+"="+v)
	}
	want := signMessage(secret, strings.Join(parts, ","))
	return hmac.Equal([]byte(want), []byte(c.Signature))
}
