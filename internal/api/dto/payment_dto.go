package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway/esewa"
)

type KhaltiInitiateResponse struct {
	PaymentURL string `json:"payment_url"`
	Pidx       string `json:"pidx"`
}

// EsewaInitiateResponse is rendered by the client as a hidden form posted to FormAction.
type EsewaInitiateResponse struct {
	FormAction string           `json:"form_action"`
	Fields     esewa.FormFields `json:"fields"`
}
