package model

import (
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// CanTransitionTo reports whether s may move to next.
// DELIVERED and CANCELLED are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Order snapshots the cart at checkout, Total equals the sum of Items price x quantity.
type Order struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user"`
	AddressID *uint           `json:"address"`
	Total     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total"`
	Status    OrderStatus     `gorm:"not null;type:varchar(20);default:PENDING" json:"status"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payment   *Payment        `gorm:"foreignKey:OrderID" json:"-"`
	BaseModel
}

// ItemsTotal recomputes the total from the item snapshots.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	VariantID uint            `gorm:"not null" json:"variant"`
	Variant   *Variant        `gorm:"foreignKey:VariantID" json:"variant_detail,omitempty"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Quantity  int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
}
