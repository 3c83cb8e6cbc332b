package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment is one to one with Order, re-initiation overwrites the provider fields in place.
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"not null;uniqueIndex" json:"order"`
	Provider        string          `gorm:"not null;type:varchar(20)" json:"provider"`
	Reference       string          `gorm:"not null;default:'';type:varchar(120)" json:"reference"`
	Amount          decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	IsVerified      bool            `gorm:"not null;default:false" json:"is_verified"`
	Pidx            string          `gorm:"not null;default:'';type:varchar(64);index" json:"pidx"`
	TransactionUUID string          `gorm:"column:transaction_uuid;not null;default:'';type:varchar(64);index" json:"transaction_uuid"`
	Meta            datatypes.JSON  `gorm:"not null;default:'{}'" json:"meta"`
	BaseModel
}

// PaymentMeta is the tagged union stored in Payment.Meta.
// Provider selects which of Khalti or Esewa is set, Raw keeps the last provider payload untouched.
type PaymentMeta struct {
	Provider string          `json:"provider"`
	Khalti   *KhaltiMeta     `json:"khalti,omitempty"`
	Esewa    *EsewaMeta      `json:"esewa,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

type KhaltiMeta struct {
	Pidx          string `json:"pidx,omitempty"`
	PaymentURL    string `json:"payment_url,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	Status        string `json:"status,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	TotalAmount   int64  `json:"total_amount,omitempty"`
}

type EsewaMeta struct {
	Signature      string          `json:"signature,omitempty"`
	Status         string          `json:"status,omitempty"`
	RefID          string          `json:"ref_id,omitempty"`
	StatusResponse json.RawMessage `json:"status_response,omitempty"`
}

func (p *Payment) SetMeta(meta PaymentMeta) error {
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	p.Meta = datatypes.JSON(b)
	return nil
}

func (p *Payment) DecodeMeta() (PaymentMeta, error) {
	var meta PaymentMeta
	if len(p.Meta) == 0 {
		return meta, nil
	}
	err := json.Unmarshal(p.Meta, &meta)
	return meta, err
}
