package models

// WaitlistEntry records an early-adopter signup. The global row count gates both the
// signup bonus and the first-receipt reward floor (first 5000 signups qualify).
type WaitlistEntry struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	ReferralCode string `json:"referral_code,omitempty"`
	Source       string `json:"source,omitempty"`

	Timestamps
}
