package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type AddressDTO struct {
	ID        uint   `json:"id"`
	User      uint   `json:"user"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

type CreateAddressDTO struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country" example:"Nepal"`
	IsDefault bool   `json:"is_default"`
}

func (d CreateAddressDTO) ToModel() model.Address {
	return model.Address{
		Street:    d.Street,
		City:      d.City,
		State:     d.State,
		ZipCode:   d.ZipCode,
		Country:   d.Country,
		IsDefault: d.IsDefault,
	}
}

func NewAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:        a.ID,
		User:      a.UserID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
		IsDefault: a.IsDefault,
	}
}

func NewAddressDTOs(addresses []model.Address) []AddressDTO {
	out := make([]AddressDTO, 0, len(addresses))
	for i := range addresses {
		out = append(out, NewAddressDTO(&addresses[i]))
	}
	return out
}
