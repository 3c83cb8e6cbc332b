package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	testCases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{"pending to paid", OrderStatusPending, OrderStatusPaid, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"paid to shipped", OrderStatusPaid, OrderStatusShipped, true},
		{"paid to cancelled", OrderStatusPaid, OrderStatusCancelled, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"pending to shipped", OrderStatusPending, OrderStatusShipped, false},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, false},
		{"delivered is terminal", OrderStatusDelivered, OrderStatusPaid, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
	require.True(t, OrderStatusDelivered.IsTerminal())
	require.True(t, OrderStatusCancelled.IsTerminal())
	require.False(t, OrderStatusPending.IsTerminal())
}

func TestToPaisa(t *testing.T) {
	require.Equal(t, int64(150000), ToPaisa(decimal.RequireFromString("1500.00")))
	require.Equal(t, int64(1999), ToPaisa(decimal.RequireFromString("19.99")))
	require.Equal(t, int64(1999), ToPaisa(decimal.RequireFromString("19.999")))
	require.Equal(t, "1500.00", AmountString(decimal.NewFromInt(1500)))
}

func TestCartTotal(t *testing.T) {
	p1 := &Product{Title: "Home Kit", Price: decimal.RequireFromString("1500.00")}
	p2 := &Product{Title: "Away Kit", Price: decimal.RequireFromString("999.50")}
	cart := Cart{Items: []CartItem{
		{Quantity: 2, Variant: &Variant{Size: SizeM, Product: p1}},
		{Quantity: 1, Variant: &Variant{Size: SizeL, Product: p2}},
	}}

	require.True(t, decimal.RequireFromString("3999.50").Equal(cart.Total()))
	require.Equal(t, "Home Kit (M)", cart.Items[0].Variant.Label())
}

func TestOrderItemsTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Price: decimal.RequireFromString("10.25"), Quantity: 4},
		{Price: decimal.RequireFromString("3.00"), Quantity: 1},
	}}
	require.True(t, decimal.RequireFromString("44.00").Equal(o.ItemsTotal()))
}

func TestPaymentMetaRoundTrip(t *testing.T) {
	p := &Payment{}
	raw := json.RawMessage(`{"pidx":"abc","status":"Completed"}`)
	err := p.SetMeta(PaymentMeta{
		Provider: "khalti",
		Khalti:   &KhaltiMeta{Pidx: "abc", Status: "Completed", TotalAmount: 150000},
		Raw:      raw,
	})
	require.NoError(t, err)

	meta, err := p.DecodeMeta()
	require.NoError(t, err)
	require.Equal(t, "khalti", meta.Provider)
	require.Nil(t, meta.Esewa)
	require.Equal(t, int64(150000), meta.Khalti.TotalAmount)
	require.JSONEq(t, string(raw), string(meta.Raw))
}

func TestSizeValid(t *testing.T) {
	require.True(t, SizeXL.Valid())
	require.False(t, Size("XXL").Valid())
}
