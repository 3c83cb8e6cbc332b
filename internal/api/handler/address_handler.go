package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type AddressHandler struct {
	addressService service.IAddressService
}

func NewAddressHandler(addressService service.IAddressService) *AddressHandler {
	if addressService == nil {
		panic("addressService cannot be nil")
	}
	return &AddressHandler{addressService: addressService}
}

// @Summary list my addresses
// @Tags address
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.AddressDTO} "success"
// @Failure 401 {object} response.ResponseError "unauthenticated"
// @Security ApiKeyAuth
// @Router /addresses [get]
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addressService.ListAddresses(r.Context(), util.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewAddressDTOs(addresses))
}

// @Summary create address
// @Tags address
// @Accept json
// @Produce json
// @Param address body dto.CreateAddressDTO true "address"
// @Success 201 {object} response.Response{data=dto.AddressDTO} "created"
// @Failure 400 {object} response.ResponseError "missing fields"
// @Failure 401 {object} response.ResponseError "unauthenticated"
// @Security ApiKeyAuth
// @Router /addresses [post]
func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAddressDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	address, err := h.addressService.CreateAddress(r.Context(), util.GetUserIDFromContext(r.Context()), req.ToModel())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.CreatedJSON(w, dto.NewAddressDTO(address))
}
