package model

import (
	"time"
)

// BaseModel carries the audit columns shared by every table.
// Rows are hard deleted: cart items and guest carts must free their unique keys immediately.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"null" json:"-"`
}
