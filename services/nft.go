package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"receiptx/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NFTService struct {
	DB *gorm.DB
}

func NewNFTService(db *gorm.DB) *NFTService {
	return &NFTService{DB: db}
}

// SeedCatalog loads the milestone catalog, leaving existing rows untouched
func (s *NFTService) SeedCatalog() error {
	for _, entry := range models.MilestoneCatalog {
		entry.ID = uuid.NewString()
		err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "nft_type"}},
			DoNothing: true,
		}).Create(&entry).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *NFTService) receiptCountFor(id Identity) (int64, error) {
	q := s.DB.Model(&models.Receipt{})
	switch {
	case id.Email != "":
		q = q.Where("user_email = ?", id.Email)
	case id.TelegramID != "":
		q = q.Where("telegram_id = ?", id.TelegramID)
	default:
		q = q.Where("wallet_address = ?", id.WalletAddress)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (s *NFTService) ownsNFT(id Identity, nftType string) (bool, error) {
	q := s.DB.Model(&models.UserNFT{}).Where("nft_type = ? AND status = ?", nftType, "active")
	switch {
	case id.Email != "":
		q = q.Where("user_email = ?", id.Email)
	case id.TelegramID != "":
		q = q.Where("telegram_id = ?", id.TelegramID)
	default:
		q = q.Where("wallet_address = ?", id.WalletAddress)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// Mint verifies eligibility against the catalog and creates the NFT record
func (s *NFTService) Mint(id Identity, nftType string) (*models.UserNFT, error) {
	var entry models.NFTCatalogEntry
	if err := s.DB.Where("nft_type = ?", nftType).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("nft type %q not found in catalog", nftType)
		}
		return nil, err
	}

	owned, err := s.ownsNFT(id, nftType)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, fmt.Errorf("user already owns %q", nftType)
	}

	receiptCount, err := s.receiptCountFor(id)
	if err != nil {
		return nil, err
	}
	if receiptCount < entry.RequiredReceipts {
		return nil, fmt.Errorf("not eligible for %q: %d of %d receipts", nftType, receiptCount, entry.RequiredReceipts)
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"receipts_at_mint": receiptCount,
		"minted_timestamp": time.Now().UTC().Format(time.RFC3339),
		"tier":             entry.Tier,
		"rarity":           entry.Rarity,
	})
	nft := models.UserNFT{
		ID:            uuid.NewString(),
		NFTType:       nftType,
		UserEmail:     id.Email,
		TelegramID:    id.TelegramID,
		WalletAddress: id.WalletAddress,
		Status:        "active",
		Metadata:      datatypes.JSON(meta),
	}
	if err := s.DB.Create(&nft).Error; err != nil {
		return nil, err
	}
	log.Printf("🎖️ NFT minted: %s → %s", nftType, id.Resolve())
	return &nft, nil
}

// AutoMintMilestones walks the catalog after a submission and mints every
// milestone the user has newly crossed. Individual failures are logged and the
// loop continues. A missed milestone mints on the next submission.
func (s *NFTService) AutoMintMilestones(id Identity) []string {
	if id.Empty() {
		return nil
	}
	receiptCount, err := s.receiptCountFor(id)
	if err != nil {
		log.Printf("⚠️ NFT auto-mint skipped, receipt count failed: %v", err)
		return nil
	}

	var catalog []models.NFTCatalogEntry
	if err := s.DB.Order("tier ASC").Find(&catalog).Error; err != nil {
		log.Printf("⚠️ NFT auto-mint skipped, catalog load failed: %v", err)
		return nil
	}

	var minted []string
	for _, entry := range catalog {
		if receiptCount < entry.RequiredReceipts {
			continue
		}
		owned, err := s.ownsNFT(id, entry.NFTType)
		if err != nil || owned {
			continue
		}
		if _, err := s.Mint(id, entry.NFTType); err != nil {
			log.Printf("⚠️ Auto-mint of %s failed: %v", entry.NFTType, err)
			continue
		}
		minted = append(minted, entry.NFTType)
	}
	return minted
}

// --- HTTP handlers ---

// MintNFT handles POST /api/nfts/mint
func (s *NFTService) MintNFT(c *fiber.Ctx) error {
	var req struct {
		UserEmail     string `json:"user_email"`
		TelegramID    string `json:"telegram_id"`
		WalletAddress string `json:"wallet_address"`
		NFTType       string `json:"nft_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	id := Identity{Email: req.UserEmail, TelegramID: req.TelegramID, WalletAddress: req.WalletAddress}
	if id.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User identifier required"})
	}
	if req.NFTType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "NFT type required"})
	}

	nft, err := s.Mint(id, req.NFTType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"nft":     nft,
		"message": fmt.Sprintf("Congratulations! You've earned the %s!", req.NFTType),
	})
}

// CheckEligibility handles GET /api/nfts/eligibility
func (s *NFTService) CheckEligibility(c *fiber.Ctx) error {
	id := Identity{
		Email:         c.Query("email"),
		TelegramID:    c.Query("telegram_id"),
		WalletAddress: c.Query("wallet_address"),
	}
	if id.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User identifier required"})
	}

	receiptCount, err := s.receiptCountFor(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count receipts"})
	}

	var catalog []models.NFTCatalogEntry
	if err := s.DB.Order("tier ASC").Find(&catalog).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load catalog"})
	}

	eligible := 0
	results := make([]fiber.Map, 0, len(catalog))
	for _, entry := range catalog {
		owned, _ := s.ownsNFT(id, entry.NFTType)
		isEligible := !owned && receiptCount >= entry.RequiredReceipts
		if isEligible {
			eligible++
		}
		results = append(results, fiber.Map{
			"nft_type":          entry.NFTType,
			"name":              entry.Name,
			"required_receipts": entry.RequiredReceipts,
			"current_receipts":  receiptCount,
			"owned":             owned,
			"is_eligible":       isEligible,
		})
	}

	return c.JSON(fiber.Map{
		"eligibility":    results,
		"eligible_count": eligible,
	})
}
