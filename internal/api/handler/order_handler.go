package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type OrderHandler struct {
	orderService   service.IOrderService
	paymentService service.IPaymentService
}

func NewOrderHandler(orderService service.IOrderService, paymentService service.IPaymentService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	if paymentService == nil {
		panic("paymentService cannot be nil")
	}
	return &OrderHandler{orderService: orderService, paymentService: paymentService}
}

// @Summary checkout
// @Description turns the current cart into a PENDING order, stock is reserved atomically
// @Tags order
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderDTO true "shipping address id"
// @Success 201 {object} response.Response{data=dto.OrderDTO} "created"
// @Failure 400 {object} response.ResponseError "empty cart or insufficient stock"
// @Failure 404 {object} response.ResponseError "address not found"
// @Security ApiKeyAuth
// @Router /orders [post]
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.orderService.Checkout(r.Context(), util.GetUserIDFromContext(r.Context()), req.Address)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.CreatedJSON(w, dto.NewOrderDTO(order))
}

// @Summary list my orders
// @Tags order
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.OrderDTO} "success"
// @Security ApiKeyAuth
// @Router /orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), util.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewOrderDTOs(orders))
}

// @Summary get order
// @Description clients poll this after a payment redirect to learn the outcome
// @Tags order
// @Produce json
// @Param id path int true "order id"
// @Success 200 {object} response.Response{data=dto.OrderDTO} "success"
// @Failure 404 {object} response.ResponseError "not found"
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(r.Context(), util.GetUserIDFromContext(r.Context()), orderID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewOrderDTO(order))
}

// @Summary record a manual payment
// @Description stores an unverified payment, verification happens through the gateway callbacks
// @Tags order
// @Accept json
// @Produce json
// @Param id path int true "order id"
// @Param payment body dto.PayOrderDTO false "provider and reference"
// @Success 200 {object} response.Response{data=dto.OkDTO} "success"
// @Failure 404 {object} response.ResponseError "not found"
// @Failure 409 {object} response.ResponseError "already verified"
// @Security ApiKeyAuth
// @Router /orders/{id}/pay [post]
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.PayOrderDTO
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	if _, err := h.paymentService.Pay(r.Context(), util.GetUserIDFromContext(r.Context()), orderID, req.Provider, req.Reference); err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.OkDTO{Ok: true, Message: "Payment created. Verify via webhook in production."})
}

// @Summary mark order paid
// @Tags order
// @Produce json
// @Param id path int true "order id"
// @Success 200 {object} response.Response{data=dto.OkDTO} "success"
// @Failure 400 {object} response.ResponseError "no payment"
// @Failure 404 {object} response.ResponseError "not found"
// @Failure 409 {object} response.ResponseError "order can no longer be paid"
// @Security ApiKeyAuth
// @Router /orders/{id}/mark-paid [post]
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.paymentService.MarkPaid(r.Context(), util.GetUserIDFromContext(r.Context()), orderID); err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.OkDTO{Ok: true})
}
