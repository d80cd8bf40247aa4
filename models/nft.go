package models

import (
	"time"

	"gorm.io/datatypes"
)

// NFTCatalogEntry: static milestone catalog (seeded at startup)
type NFTCatalogEntry struct {
	ID               string `gorm:"primaryKey;type:uuid" json:"id"`
	NFTType          string `gorm:"uniqueIndex;not null" json:"nft_type"` // e.g. "bronze_collector"
	Name             string `gorm:"not null" json:"name"`
	Tier             int    `json:"tier"`
	Rarity           string `gorm:"type:varchar(16);default:'common'" json:"rarity"`
	RequiredReceipts int64  `gorm:"not null" json:"required_receipts"`
	ImageURL         string `gorm:"type:text" json:"image_url,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserNFT: minted instance owned by a user
type UserNFT struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	NFTType       string         `gorm:"index;not null" json:"nft_type"`
	UserEmail     string         `gorm:"index" json:"user_email,omitempty"`
	TelegramID    string         `gorm:"index" json:"telegram_id,omitempty"`
	WalletAddress string         `gorm:"index" json:"wallet_address,omitempty"`
	Status        string         `gorm:"not null;default:'active';index" json:"status"`
	OnChain       bool           `gorm:"default:false;index" json:"on_chain"`
	ChainTxHash   string         `json:"chain_tx_hash,omitempty"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`

	Timestamps
}

// MilestoneCatalog is the default seed for the nft_catalog table
var MilestoneCatalog = []NFTCatalogEntry{
	{NFTType: "first_scan", Name: "First Scan", Tier: 1, Rarity: "common", RequiredReceipts: 1},
	{NFTType: "bronze_collector", Name: "Bronze Collector", Tier: 2, Rarity: "common", RequiredReceipts: 5},
	{NFTType: "silver_collector", Name: "Silver Collector", Tier: 3, Rarity: "rare", RequiredReceipts: 25},
	{NFTType: "gold_collector", Name: "Gold Collector", Tier: 4, Rarity: "epic", RequiredReceipts: 100},
	{NFTType: "platinum_collector", Name: "Platinum Collector", Tier: 5, Rarity: "legendary", RequiredReceipts: 500},
}
