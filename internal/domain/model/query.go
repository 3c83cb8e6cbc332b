package model

import (
	"github.com/shopspring/decimal"
)

// ProductFilter holds the catalog query, zero values mean "no filter".
type ProductFilter struct {
	Search       string
	CategorySlug string
	TeamID       *uint
	LeagueID     *uint
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	Ordering     string
	Page         int
	PageSize     int
}

func (f ProductFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
