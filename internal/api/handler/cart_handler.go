package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

// CartHandler serves both authenticated users and guests identified by X-Session-Id.
type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// @Summary get cart
// @Tags cart
// @Produce json
// @Param X-Session-Id header string false "guest session id, required without a bearer token"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Failure 400 {object} response.ResponseError "missing owner"
// @Security ApiKeyAuth
// @Router /cart [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.GetCart(r.Context(), cartOwner(r))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart))
}

// @Summary add item to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "guest session id, required without a bearer token"
// @Param item body dto.AddCartItemDTO true "variant and quantity"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Failure 400 {object} response.ResponseError "invalid quantity or not enough stock"
// @Failure 404 {object} response.ResponseError "variant not found"
// @Security ApiKeyAuth
// @Router /cart/add [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	req := dto.AddCartItemDTO{Quantity: 1}
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := h.cartService.AddItem(r.Context(), cartOwner(r), req.Variant, req.Quantity)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart))
}

// @Summary set item quantity
// @Description quantity 0 removes the item
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "guest session id, required without a bearer token"
// @Param item body dto.UpdateCartItemDTO true "item and quantity"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Failure 400 {object} response.ResponseError "invalid quantity or not enough stock"
// @Failure 404 {object} response.ResponseError "item not found"
// @Security ApiKeyAuth
// @Router /cart/update-qty [post]
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCartItemDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := h.cartService.UpdateQuantity(r.Context(), cartOwner(r), req.ItemID, req.Quantity)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart))
}

// @Summary remove item
// @Description removing an item that is not in the cart returns the cart unchanged
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "guest session id, required without a bearer token"
// @Param item body dto.RemoveCartItemDTO true "item"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Security ApiKeyAuth
// @Router /cart/remove [post]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req dto.RemoveCartItemDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := h.cartService.RemoveItem(r.Context(), cartOwner(r), req.ItemID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart))
}
