package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinkLifetime is how long a payment link stays usable after creation.
// Older links are swept regardless of paid status.
const LinkLifetime = 24 * time.Hour

// PaymentLink represents a single-product payment link shared with a buyer.
// The UniqueID token, never the surrogate key, identifies the link in URLs.
type PaymentLink struct {
	ID             uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	ProductName    string          `json:"product_name" gorm:"size:200;not null"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	DeliveryCost   decimal.Decimal `json:"delivery_cost" gorm:"type:decimal(20,2);not null;default:0"`
	ClientName     string          `json:"client_name" gorm:"size:100;not null"`
	DeliveryMethod string          `json:"delivery_method" gorm:"size:50;not null"`
	UniqueID       string          `json:"unique_id" gorm:"size:20;uniqueIndex;not null"`
	CreatedAt      time.Time       `json:"created_at"`
	IsPaid         bool            `json:"is_paid" gorm:"not null;default:false;index"`
	PaymentID      *string         `json:"payment_id,omitempty" gorm:"size:100"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// TotalAmount is the buyer-facing total: price plus delivery cost.
func (l *PaymentLink) TotalAmount() decimal.Decimal {
	return l.Price.Add(l.DeliveryCost)
}

// Expired reports whether the link is past its lifetime at the given instant.
func (l *PaymentLink) Expired(now time.Time) bool {
	return now.Sub(l.CreatedAt) > LinkLifetime
}

// BeforeCreate sets UUID before creating the record.
func (l *PaymentLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
