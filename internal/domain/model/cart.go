package model

import (
	"github.com/shopspring/decimal"
)

// Cart belongs to exactly one of a user or a guest session.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    *uint      `gorm:"uniqueIndex" json:"-"`
	SessionID *string    `gorm:"uniqueIndex;type:varchar(100)" json:"-"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	BaseModel
}

func (c *Cart) IsGuest() bool {
	return c.UserID == nil
}

// Total sums quantity x current product price, Items must be loaded with Variant.Product.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].SubTotal())
	}
	return total
}

// CartItem is unique per (cart, variant) and quantity is at least 1.
type CartItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	CartID    uint     `gorm:"not null;uniqueIndex:idx_cart_variant" json:"-"`
	VariantID uint     `gorm:"not null;uniqueIndex:idx_cart_variant" json:"variant"`
	Variant   *Variant `gorm:"foreignKey:VariantID" json:"-"`
	Quantity  int      `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
}

func (i *CartItem) SubTotal() decimal.Decimal {
	if i.Variant == nil || i.Variant.Product == nil {
		return decimal.Zero
	}
	return i.Variant.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
