package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type CartItemDTO struct {
	ID            uint        `json:"id"`
	Variant       uint        `json:"variant"`
	VariantDetail *VariantDTO `json:"variant_detail"`
	Quantity      int         `json:"quantity"`
	ProductTitle  string      `json:"product_title"`
	ProductSlug   string      `json:"product_slug"`
	ProductPrice  string      `json:"product_price" example:"1500.00"`
	SubTotal      string      `json:"sub_total" example:"3000.00"`
}

type CartDTO struct {
	ID        uint          `json:"id"`
	Items     []CartItemDTO `json:"items"`
	CartTotal string        `json:"cart_total" example:"3000.00"`
}

type AddCartItemDTO struct {
	Variant  uint `json:"variant"`
	Quantity int  `json:"quantity"`
}

type UpdateCartItemDTO struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

type RemoveCartItemDTO struct {
	ItemID uint `json:"item_id"`
}

func NewCartDTO(c *model.Cart) CartDTO {
	out := CartDTO{
		ID:        c.ID,
		Items:     make([]CartItemDTO, 0, len(c.Items)),
		CartTotal: model.AmountString(c.Total()),
	}
	for i := range c.Items {
		it := &c.Items[i]
		item := CartItemDTO{
			ID:            it.ID,
			Variant:       it.VariantID,
			VariantDetail: NewVariantDTO(it.Variant),
			Quantity:      it.Quantity,
			SubTotal:      model.AmountString(it.SubTotal()),
		}
		if it.Variant != nil && it.Variant.Product != nil {
			item.ProductTitle = it.Variant.Product.Title
			item.ProductSlug = it.Variant.Product.Slug
			item.ProductPrice = model.AmountString(it.Variant.Product.Price)
		}
		out.Items = append(out.Items, item)
	}
	return out
}
