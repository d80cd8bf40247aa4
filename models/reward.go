package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// RWTTransaction is one ledger entry in the RWT reward token ledger
type RWTTransaction struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string          `gorm:"index;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Direction   string          `gorm:"not null;default:'credit'" json:"direction"`
	Source      string          `gorm:"not null" json:"source"` // e.g. "receipt_<id>", "waitlist_signup"
	Description string          `json:"description,omitempty"`
	Metadata    datatypes.JSON  `json:"metadata,omitempty"`

	Timestamps
}

// AIATransaction mirrors RWTTransaction for the secondary AIA token
type AIATransaction struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string          `gorm:"index;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Direction   string          `gorm:"not null;default:'credit'" json:"direction"`
	Source      string          `gorm:"not null" json:"source"`
	Description string          `json:"description,omitempty"`
	Metadata    datatypes.JSON  `json:"metadata,omitempty"`

	Timestamps
}

// RewardLog is the audit trail written alongside every reward issuance
type RewardLog struct {
	ID        string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string          `gorm:"index;not null" json:"user_id"`
	Action    string          `gorm:"not null" json:"action"` // receipt_processed, waitlist_signup, referral_standard, referral_multiplier
	RWTAmount decimal.Decimal `gorm:"type:numeric(14,2)" json:"rwt_amount"`
	AIAAmount decimal.Decimal `gorm:"type:numeric(14,2)" json:"aia_amount"`
	Details   datatypes.JSON  `json:"details,omitempty"`

	Timestamps
}
