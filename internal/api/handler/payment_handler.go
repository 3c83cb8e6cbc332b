package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway/esewa"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog"
)

/*
PaymentHandler drives the two gateway round trips.
Callbacks only redirect the browser, the outcome is read back by polling the order.
*/
type PaymentHandler struct {
	paymentService service.IPaymentService
	esewaSecret    string
}

func NewPaymentHandler(paymentService service.IPaymentService, esewaSecret string) *PaymentHandler {
	if paymentService == nil {
		panic("paymentService cannot be nil")
	}
	return &PaymentHandler{paymentService: paymentService, esewaSecret: esewaSecret}
}

// @Summary initiate khalti payment
// @Tags payment
// @Produce json
// @Param orderID path int true "order id"
// @Success 200 {object} response.Response{data=dto.KhaltiInitiateResponse} "success"
// @Failure 400 {object} response.ResponseError "khalti refused, provider_response carries its answer"
// @Failure 404 {object} response.ResponseError "order not found"
// @Failure 409 {object} response.ResponseError "order is not pending"
// @Failure 502 {object} response.ResponseError "khalti unreachable"
// @Security ApiKeyAuth
// @Router /payments/khalti/initiate/{orderID} [post]
func (h *PaymentHandler) InitiateKhalti(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	session, err := h.paymentService.InitiateKhalti(r.Context(), util.GetUserIDFromContext(r.Context()), orderID, util.AbsoluteRoot(r))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.KhaltiInitiateResponse{PaymentURL: session.PaymentURL, Pidx: session.Pidx})
}

// @Summary khalti return url
// @Description verifies pidx through the lookup api, then redirects to the frontend
// @Tags payment
// @Param pidx query string true "khalti payment id"
// @Success 302
// @Failure 400 {object} response.ResponseError "missing pidx"
// @Failure 404 {object} response.ResponseError "payment not found"
// @Failure 502 {object} response.ResponseError "khalti unreachable"
// @Router /payments/khalti/callback [get]
func (h *PaymentHandler) KhaltiCallback(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.paymentService.KhaltiCallback(r.Context(), r.URL.Query().Get("pidx"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// @Summary initiate esewa payment
// @Description returns the signed form fields the client posts to form_action
// @Tags payment
// @Produce json
// @Param orderID path int true "order id"
// @Success 200 {object} response.Response{data=dto.EsewaInitiateResponse} "success"
// @Failure 404 {object} response.ResponseError "order not found"
// @Failure 409 {object} response.ResponseError "order is not pending"
// @Security ApiKeyAuth
// @Router /payments/esewa/initiate/{orderID} [post]
func (h *PaymentHandler) InitiateEsewa(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	form, err := h.paymentService.InitiateEsewa(r.Context(), util.GetUserIDFromContext(r.Context()), orderID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.EsewaInitiateResponse{FormAction: form.FormAction, Fields: form.Fields})
}

// @Summary esewa success url
// @Description accepts either transaction_uuid and total_amount or the base64 data parameter, verifies through the status api, then redirects
// @Tags payment
// @Param transaction_uuid query string false "transaction uuid"
// @Param total_amount query string false "total amount"
// @Param data query string false "base64 encoded callback payload"
// @Success 302
// @Failure 404 {object} response.ResponseError "payment not found"
// @Failure 502 {object} response.ResponseError "esewa unreachable"
// @Router /payments/esewa/success [get]
// @Router /payments/esewa/success [post]
func (h *PaymentHandler) EsewaSuccess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form")
		return
	}
	transactionUUID := r.Form.Get("transaction_uuid")
	totalAmount := r.Form.Get("total_amount")

	if data := r.Form.Get("data"); data != "" {
		logger := zerolog.Ctx(r.Context())
		cb, err := esewa.DecodeCallbackData(data)
		if err != nil {
			logger.Warn().Err(err).Msg("esewa callback data undecodable")
		} else {
			if !cb.VerifySignature(h.esewaSecret) {
				// the status api stays the source of truth, a bad signature is only recorded
				logger.Warn().Str("transaction_uuid", cb.TransactionUUID).Msg("esewa callback signature mismatch")
			}
			if transactionUUID == "" {
				transactionUUID = cb.TransactionUUID
			}
			if totalAmount == "" {
				totalAmount = cb.TotalAmount.String()
			}
		}
	}

	redirect, err := h.paymentService.EsewaVerify(r.Context(), transactionUUID, totalAmount)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// @Summary esewa failure url
// @Tags payment
// @Success 302
// @Router /payments/esewa/failure [get]
// @Router /payments/esewa/failure [post]
func (h *PaymentHandler) EsewaFailure(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	params := make(map[string]string, len(r.Form))
	for k := range r.Form {
		params[k] = r.Form.Get(k)
	}
	http.Redirect(w, r, h.paymentService.EsewaFailure(r.Context(), params), http.StatusFound)
}
