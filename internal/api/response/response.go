package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/rs/zerolog"
)

// Response wraps every successful payload.
type Response struct {
	Data any `json:"data"`
}

// ResponseError is the body of every failed request.
// ProviderResponse is only set when a payment gateway refused the request.
type ResponseError struct {
	Detail           string `json:"detail"`
	Code             int    `json:"code"`
	ProviderResponse any    `json:"provider_response,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func SuccessJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

func CreatedJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{Data: data})
}

func ErrorJSON(w http.ResponseWriter, code int, detail string, providerResponse any) {
	writeJSON(w, code, ResponseError{Detail: detail, Code: code, ProviderResponse: providerResponse})
}

/*
Error maps err to its apperr code and writes it.
Internal errors are logged with the request logger and never leak their message.
*/
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	if code >= apperr.InternalErrorCode {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", int(code)).Msg("request failed")
	}

	var providerResponse any
	var e *apperr.Error
	if errors.As(err, &e) {
		providerResponse = e.ProviderResponse
	}
	ErrorJSON(w, int(code), apperr.MessageOf(err), providerResponse)
}

func BadRequest(w http.ResponseWriter, detail string) {
	ErrorJSON(w, int(apperr.BadRequestCode), detail, nil)
}
