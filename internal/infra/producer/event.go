package producer

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	OrderCreatedEvent    EventType = "order.created"
	PaymentVerifiedEvent EventType = "payment.verified"
)

// Event is the envelope written to the domain event topic, keyed by order id.
type Event struct {
	Type       EventType `json:"type"`
	OrderID    uint      `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type OrderCreated struct {
	UserID    uint            `json:"user_id"`
	AddressID uint            `json:"address_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type PaymentVerified struct {
	Provider  string          `json:"provider"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}

func NewOrderCreated(orderID uint, data OrderCreated) Event {
	return Event{Type: OrderCreatedEvent, OrderID: orderID, OccurredAt: time.Now().UTC(), Data: data}
}

func NewPaymentVerified(orderID uint, data PaymentVerified) Event {
	return Event{Type: PaymentVerifiedEvent, OrderID: orderID, OccurredAt: time.Now().UTC(), Data: data}
}
