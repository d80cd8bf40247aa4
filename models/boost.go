package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBoost is a time-limited or use-limited reward multiplier granted to a user.
// UsesRemaining nil means unlimited uses until expiry; the counter is decremented on
// each qualifying submission and the boost deactivated when it reaches zero.
type UserBoost struct {
	ID            string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string          `gorm:"index;not null" json:"user_id"`
	Multiplier    decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"multiplier"`
	UsesRemaining *int            `json:"uses_remaining,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	Active        bool            `gorm:"default:true;index" json:"active"`
	Source        string          `json:"source,omitempty"`

	Timestamps
}

// UserMultiplier is a purchased ("Telegram Stars") multiplier. The numeric value is
// encoded in the product slug suffix, e.g. "rwt_multiplier_2x" or "rwt_multiplier_1_5x".
type UserMultiplier struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string     `gorm:"index;not null" json:"user_id"`
	ProductSlug string     `gorm:"not null" json:"product_slug"`
	Active      bool       `gorm:"default:true;index" json:"active"`
	PurchasedAt time.Time  `json:"purchased_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	Timestamps
}
