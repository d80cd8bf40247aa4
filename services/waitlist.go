package services

import (
	"log"
	"regexp"
	"strings"

	"receiptx/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var waitlistEmailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// SubmitWaitlist handles POST /api/waitlist/submit. Signup rewards are paid while
// the list is still within its first 5000 entries.
func (s *LedgerService) SubmitWaitlist(c *fiber.Ctx) error {
	var req struct {
		Email        string `json:"email"`
		ReferralCode string `json:"referral_code"`
		Source       string `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !waitlistEmailPattern.MatchString(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A valid email is required"})
	}

	var existing int64
	if err := s.DB.Model(&models.WaitlistEntry{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check waitlist"})
	}
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email is already on the waitlist"})
	}

	entry := models.WaitlistEntry{
		ID:           uuid.NewString(),
		Email:        req.Email,
		ReferralCode: req.ReferralCode,
		Source:       req.Source,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join waitlist"})
	}

	var position int64
	if err := s.DB.Model(&models.WaitlistEntry{}).Count(&position).Error; err != nil {
		position = 0
	}

	rewarded, err := s.IssueWaitlistSignupRewards(req.Email)
	if err != nil {
		// Signup stands either way; the bonus can be replayed manually
		log.Printf("⚠️ Waitlist signup rewards failed for %s: %v", req.Email, err)
	}
	log.Printf("📋 Waitlist signup: %s (position %d, rewarded=%t)", req.Email, position, rewarded)

	resp := fiber.Map{
		"success":  true,
		"position": position,
		"rewarded": rewarded,
	}
	if rewarded {
		resp["rewards"] = fiber.Map{
			"rwt": WaitlistSignupRWT,
			"aia": WaitlistSignupAIA,
		}
	}
	return c.JSON(resp)
}
