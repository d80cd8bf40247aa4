package models

import (
	"time"

	"gorm.io/datatypes"
)

// LotteryTicket is append-only: once a ticket hash is recorded the same ticket can
// never trigger the Plinko reward path again.
type LotteryTicket struct {
	ID              string         `gorm:"primaryKey;type:uuid" json:"id"`
	TicketHash      string         `gorm:"uniqueIndex;not null" json:"ticket_hash"`
	TicketNumber    string         `json:"ticket_number,omitempty"`
	State           string         `json:"state,omitempty"`
	GameName        string         `json:"game_name,omitempty"`
	TicketType      string         `json:"ticket_type,omitempty"` // scratcher or draw
	ConfidenceScore int            `json:"confidence_score"`
	Indicators      datatypes.JSON `json:"indicators,omitempty"`
	UserEmail       string         `gorm:"index" json:"user_email,omitempty"`
	TelegramID      string         `gorm:"index" json:"telegram_id,omitempty"`
	WalletAddress   string         `gorm:"index" json:"wallet_address,omitempty"`
	ScannedAt       time.Time      `gorm:"autoCreateTime" json:"scanned_at"`
}
