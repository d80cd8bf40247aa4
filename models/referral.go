package models

import "time"

// Referral tracks who referred whom and whether the first-receipt bonus has been paid.
// The bonus is issued in the submission fan-out when the referred user's first receipt
// is processed: 10 AIA if the receipt brand carries a multiplier, 5 AIA otherwise.
type Referral struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID string `gorm:"index;not null" json:"referrer_id"`
	ReferredID string `gorm:"uniqueIndex;not null" json:"referred_id"`

	ReferralCodeUsed string     `gorm:"not null" json:"referral_code_used"`
	BonusAwarded     bool       `gorm:"default:false" json:"bonus_awarded"`
	AwardedAt        *time.Time `json:"awarded_at,omitempty"`

	Timestamps
}
