package model

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToPaisa converts a rupee amount to the smallest currency unit, truncating fractions of a paisa.
func ToPaisa(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Truncate(0).IntPart()
}

// AmountString renders amount with two decimals, the form stored in decimal(10,2) columns.
func AmountString(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
