package dto

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type OrderItemDTO struct {
	ID            uint        `json:"id"`
	Variant       uint        `json:"variant"`
	VariantDetail *VariantDTO `json:"variant_detail"`
	Price         string      `json:"price" example:"1500.00"`
	Quantity      int         `json:"quantity"`
}

type OrderDTO struct {
	ID        uint           `json:"id"`
	User      uint           `json:"user"`
	Address   *uint          `json:"address"`
	Total     string         `json:"total" example:"3000.00"`
	Status    string         `json:"status" example:"PENDING"`
	CreatedAt time.Time      `json:"created_at"`
	Items     []OrderItemDTO `json:"items"`
}

type CreateOrderDTO struct {
	Address uint `json:"address"`
}

type PayOrderDTO struct {
	Provider  string `json:"provider" example:"khalti"`
	Reference string `json:"reference" example:"TEST"`
}

type OkDTO struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewOrderDTO(o *model.Order) OrderDTO {
	out := OrderDTO{
		ID:        o.ID,
		User:      o.UserID,
		Address:   o.AddressID,
		Total:     model.AmountString(o.Total),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		Items:     make([]OrderItemDTO, 0, len(o.Items)),
	}
	for i := range o.Items {
		it := &o.Items[i]
		out.Items = append(out.Items, OrderItemDTO{
			ID:            it.ID,
			Variant:       it.VariantID,
			VariantDetail: NewVariantDTO(it.Variant),
			Price:         model.AmountString(it.Price),
			Quantity:      it.Quantity,
		})
	}
	return out
}

func NewOrderDTOs(orders []model.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderDTO(&orders[i]))
	}
	return out
}
