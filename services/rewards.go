package services

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"receiptx/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseRWTPerCurrencyUnit: $1 spent = 1 RWT before multipliers
var BaseRWTPerCurrencyUnit = decimal.NewFromInt(1)

// EarlyAdopterFloor is forced for a first receipt from an email-identified user
// while the waitlist still has room (first 5000 signups)
const (
	EarlyAdopterFloor    = 1000
	WaitlistRewardLimit  = 5000
	WaitlistSignupRWT    = 1000
	WaitlistSignupAIA    = 5
	ReferralBonusPlain   = 5
	ReferralBonusBoosted = 10
)

var multiplierSlugPattern = regexp.MustCompile(`(\d+(_\d+)?)`)

type RewardService struct {
	DB *gorm.DB
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{DB: db}
}

// ResolveBoost returns the highest active, unexpired boost for the user, or a 1.0
// multiplier when none exists. The returned boost must be consumed by the caller
// once the reward is actually issued.
func (s *RewardService) ResolveBoost(userID string) (decimal.Decimal, *models.UserBoost, error) {
	one := decimal.NewFromInt(1)
	if userID == "" {
		return one, nil, nil
	}

	var boosts []models.UserBoost
	err := s.DB.Where("user_id = ? AND active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("multiplier DESC").
		Find(&boosts).Error
	if err != nil {
		return one, nil, err
	}
	if len(boosts) == 0 {
		return one, nil, nil
	}
	best := boosts[0]
	return best.Multiplier, &best, nil
}

// ConsumeBoost decrements the use counter and deactivates the boost at zero.
// Boosts without a counter stay active until their expiry sweep.
func (s *RewardService) ConsumeBoost(boost *models.UserBoost) error {
	if boost == nil || boost.UsesRemaining == nil {
		return nil
	}
	remaining := *boost.UsesRemaining - 1
	updates := map[string]interface{}{"uses_remaining": remaining}
	if remaining <= 0 {
		updates["active"] = false
	}
	return s.DB.Model(&models.UserBoost{}).Where("id = ?", boost.ID).Updates(updates).Error
}

// ResolveStarsMultiplier returns the highest active purchased multiplier for the
// user, parsed from the product slug suffix. 1.0 when nothing is active.
func (s *RewardService) ResolveStarsMultiplier(userID string) (decimal.Decimal, *models.UserMultiplier, error) {
	one := decimal.NewFromInt(1)
	if userID == "" {
		return one, nil, nil
	}

	var rows []models.UserMultiplier
	err := s.DB.Where("user_id = ? AND active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("purchased_at DESC").
		Find(&rows).Error
	if err != nil {
		return one, nil, err
	}
	if len(rows) == 0 {
		return one, nil, nil
	}

	best := rows[0]
	bestVal := ParseMultiplierSlug(best.ProductSlug)
	for _, row := range rows[1:] {
		if v := ParseMultiplierSlug(row.ProductSlug); v.GreaterThan(bestVal) {
			best = row
			bestVal = v
		}
	}
	return bestVal, &best, nil
}

// ParseMultiplierSlug extracts the numeric suffix from a product identifier,
// e.g. "rwt_multiplier_2x" -> 2.0, "rwt_multiplier_1_5x" -> 1.5. Unparseable
// slugs fall back to 1.0.
func ParseMultiplierSlug(slug string) decimal.Decimal {
	m := multiplierSlugPattern.FindString(slug)
	if m == "" {
		return decimal.NewFromInt(1)
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(m, "_", "."))
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return v
}

// ComputeStandardReward is the multiplicative reward formula:
// round(amount x base rate x brand x boost x stars)
func ComputeStandardReward(amount, brandMult, boostMult, starsMult decimal.Decimal) int64 {
	total := amount.Mul(BaseRWTPerCurrencyUnit).Mul(brandMult).Mul(boostMult).Mul(starsMult)
	return total.Round(0).IntPart()
}

// PriorReceiptCount counts previously stored receipts for any of the identity's keys
func (s *RewardService) PriorReceiptCount(id Identity) (int64, error) {
	if id.Empty() {
		return 0, nil
	}
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

// EarlyAdopterEligible gates the reward floor: first receipt, email identity, and
// waitlist still within the first 5000 signups. Telegram/wallet-only identities
// skip the floor because the waitlist is keyed by email.
func (s *RewardService) EarlyAdopterEligible(id Identity, priorReceipts int64) (bool, error) {
	if id.Email == "" || priorReceipts > 0 {
		return false, nil
	}
	var count int64
	if err := s.DB.Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count <= WaitlistRewardLimit, nil
}

// ApplyEarlyAdopterFloor only ever raises the reward, never lowers it
func ApplyEarlyAdopterFloor(computed int64) int64 {
	if computed < EarlyAdopterFloor {
		return EarlyAdopterFloor
	}
	return computed
}

// PendingReferralFor returns the unawarded referral row where this user is the
// referred party, if one exists
func (s *RewardService) PendingReferralFor(userID string) (*models.Referral, error) {
	if userID == "" {
		return nil, nil
	}
	var ref models.Referral
	err := s.DB.Where("referred_id = ? AND bonus_awarded = ?", userID, false).First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// MarkReferralAwarded flips the bonus flag after the AIA credit succeeds
func (s *RewardService) MarkReferralAwarded(ref *models.Referral) error {
	now := time.Now()
	err := s.DB.Model(&models.Referral{}).Where("id = ?", ref.ID).
		Updates(map[string]interface{}{"bonus_awarded": true, "awarded_at": now}).Error
	if err == nil {
		log.Printf("✅ Referral %s marked awarded (referrer %s)", ref.ID, ref.ReferrerID)
	}
	return err
}
