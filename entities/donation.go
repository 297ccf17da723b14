package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Donation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RequestID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"request_id"`
	DonorID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"donor_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency      string          `gorm:"size:8" json:"currency"`
	Status        string          `gorm:"index;not null" json:"status"` // pending, success, failed
	Provider      string          `gorm:"size:32" json:"provider"`      // stripe, midtrans
	TransactionID string          `gorm:"uniqueIndex;not null" json:"transaction_id"`
	ProviderRef   string          `json:"provider_ref,omitempty"`
	FinalizedAt   *time.Time      `json:"finalized_at,omitempty"`

	Request *DonationRequest `gorm:"foreignKey:RequestID"`
	Donor   *User            `gorm:"foreignKey:DonorID"`
	Timestamp
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
