package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type League struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null;type:varchar(100)" json:"name"`
	Country string `gorm:"not null;type:varchar(100)" json:"country"`
}

type Team struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"not null;type:varchar(100)" json:"name"`
	LeagueID uint    `gorm:"not null" json:"-"`
	League   *League `gorm:"foreignKey:LeagueID" json:"league,omitempty"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;type:varchar(100)" json:"name"`
	Slug string `gorm:"not null;uniqueIndex;type:varchar(100)" json:"slug"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"not null;type:varchar(200)" json:"title"`
	Slug        string          `gorm:"not null;uniqueIndex;type:varchar(200)" json:"slug"`
	Description string          `gorm:"not null;type:text" json:"description"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	CategoryID  uint            `gorm:"not null" json:"-"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	TeamID      *uint           `json:"-"`
	Team        *Team           `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	IsActive    bool            `gorm:"not null;default:true" json:"-"`
	Variants    []Variant       `gorm:"foreignKey:ProductID" json:"variants"`
	BaseModel
}

type Size string

const (
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

func (s Size) Valid() bool {
	switch s {
	case SizeS, SizeM, SizeL, SizeXL:
		return true
	default:
		return false
	}
}

// Variant is the purchasable unit of a Product, stock never goes below zero.
type Variant struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProductID uint     `gorm:"not null;index" json:"-"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"-"`
	Size      Size     `gorm:"not null;type:varchar(10)" json:"size"`
	Stock     int      `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	SKU       string   `gorm:"column:sku;not null;uniqueIndex;type:varchar(50)" json:"sku"`
}

// Label renders "<title> (<size>)", Product must be loaded.
func (v *Variant) Label() string {
	title := ""
	if v.Product != nil {
		title = v.Product.Title
	}
	return fmt.Sprintf("%s (%s)", title, v.Size)
}
