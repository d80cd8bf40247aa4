package services

import (
	"errors"
	"log"
	"strings"

	"receiptx/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveMultipliers handles GET /api/multipliers/active
func (s *RewardService) ActiveMultipliers(c *fiber.Ctx) error {
	id := Identity{
		Email:         c.Query("email"),
		TelegramID:    c.Query("telegram_id"),
		WalletAddress: c.Query("wallet_address"),
	}

	resp := fiber.Map{
		"brands": ActiveBrands(),
	}

	userID := id.Resolve()
	if userID != "" {
		boostMult, boost, err := s.ResolveBoost(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load boosts"})
		}
		resp["boost_multiplier"] = boostMult
		if boost != nil {
			resp["boost"] = fiber.Map{
				"multiplier":     boost.Multiplier,
				"uses_remaining": boost.UsesRemaining,
				"expires_at":     boost.ExpiresAt,
			}
		}

		starsMult, stars, err := s.ResolveStarsMultiplier(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load multipliers"})
		}
		resp["stars_multiplier"] = starsMult
		if stars != nil {
			resp["stars_product"] = stars.ProductSlug
		}
	}
	return c.JSON(resp)
}

// TrackReferral handles POST /api/referrals/track. The bonus itself is paid later,
// when the referred user's first receipt clears the pipeline.
func (s *RewardService) TrackReferral(c *fiber.Ctx) error {
	var req struct {
		ReferrerID   string `json:"referrer_id"`
		ReferredID   string `json:"referred_id"`
		ReferralCode string `json:"referral_code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.ReferrerID = strings.TrimSpace(req.ReferrerID)
	req.ReferredID = strings.TrimSpace(req.ReferredID)
	if req.ReferrerID == "" || req.ReferredID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "referrer_id and referred_id are required"})
	}
	if req.ReferrerID == req.ReferredID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Users cannot refer themselves"})
	}

	var existing models.Referral
	err := s.DB.Where("referred_id = ?", req.ReferredID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User was already referred"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check referral"})
	}

	ref := models.Referral{
		ID:               uuid.NewString(),
		ReferrerID:       req.ReferrerID,
		ReferredID:       req.ReferredID,
		ReferralCodeUsed: req.ReferralCode,
	}
	if err := s.DB.Create(&ref).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to track referral"})
	}
	log.Printf("🤝 Referral tracked: %s → %s", req.ReferrerID, req.ReferredID)

	return c.JSON(fiber.Map{
		"success":  true,
		"referral": ref,
		"message":  "Referral tracked. Bonus unlocks when the referred user scans their first receipt.",
	})
}
