package models

import "github.com/shopspring/decimal"

// UserStats is the denormalized per-user aggregate updated after every submission.
// Counters are incremented SQL-side so concurrent submissions cannot lose updates.
type UserStats struct {
	ID             string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string          `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalReceipts  int64           `gorm:"default:0" json:"total_receipts"`
	TotalRWTEarned decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_rwt_earned"`
	TotalAIAEarned decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_aia_earned"`
	CurrentStreak  int             `gorm:"default:0" json:"current_streak"`

	Timestamps
}

// AverageReward is derived, never stored, to avoid a read-modify-write on the row
func (s *UserStats) AverageReward() decimal.Decimal {
	if s.TotalReceipts == 0 {
		return decimal.Zero
	}
	return s.TotalRWTEarned.Div(decimal.NewFromInt(s.TotalReceipts)).Round(2)
}
