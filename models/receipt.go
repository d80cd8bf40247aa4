package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ValidationStatus is the tri-state outcome of fraud scoring
type ValidationStatus string

const (
	ValidationApproved ValidationStatus = "approved"
	ValidationFlagged  ValidationStatus = "flagged"
	ValidationRejected ValidationStatus = "rejected"
)

// Receipt is the persisted record of a processed submission.
// Rejected submissions are never persisted; only approved and flagged rows exist.
type Receipt struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	UserEmail     string `gorm:"index" json:"user_email,omitempty"`
	TelegramID    string `gorm:"index" json:"telegram_id,omitempty"`
	WalletAddress string `gorm:"index" json:"wallet_address,omitempty"`

	Brand      string          `gorm:"not null" json:"brand"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Multiplier decimal.Decimal `gorm:"type:numeric(6,2)" json:"multiplier"`
	RWTEarned  int64           `json:"rwt_earned"`
	ImageURL   string          `gorm:"type:text" json:"image_url"`

	// Fraud assessment, written once by validation and never mutated afterward
	ReceiptHash     string           `gorm:"uniqueIndex;not null" json:"receipt_hash"`
	FraudScore      int              `gorm:"default:0;index" json:"fraud_score"`
	Status          ValidationStatus `gorm:"not null;default:'approved';index" json:"validation_status"`
	FraudIndicators datatypes.JSON   `json:"fraud_indicators,omitempty"`

	Metadata datatypes.JSON `json:"metadata,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
