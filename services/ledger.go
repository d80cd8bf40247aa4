package services

import (
	"encoding/json"
	"log"
	"time"

	"receiptx/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// CreditRWT appends one credit entry to the RWT ledger
func (s *LedgerService) CreditRWT(userID string, amount decimal.Decimal, source, description string, metadata map[string]interface{}) error {
	return s.DB.Create(&models.RWTTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Direction:   models.DirectionCredit,
		Source:      source,
		Description: description,
		Metadata:    toJSON(metadata),
	}).Error
}

// CreditAIA appends one credit entry to the AIA ledger
func (s *LedgerService) CreditAIA(userID string, amount decimal.Decimal, source, description string, metadata map[string]interface{}) error {
	return s.DB.Create(&models.AIATransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Direction:   models.DirectionCredit,
		Source:      source,
		Description: description,
		Metadata:    toJSON(metadata),
	}).Error
}

// LogReward writes the audit trail entry. Failures here are logged and swallowed:
// an audit gap must not fail the reward.
func (s *LedgerService) LogReward(userID, action string, rwt, aia decimal.Decimal, details map[string]interface{}) {
	err := s.DB.Create(&models.RewardLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		RWTAmount: rwt,
		AIAAmount: aia,
		Details:   toJSON(details),
	}).Error
	if err != nil {
		log.Printf("⚠️ Failed to write reward log (%s/%s): %v", userID, action, err)
	}
}

// UpsertStats increments the per-user aggregates atomically. The increments run
// SQL-side so two concurrent submissions for the same user cannot lose an update.
func (s *LedgerService) UpsertStats(userID string, receiptDelta int64, rwtDelta, aiaDelta decimal.Decimal) error {
	row := models.UserStats{
		ID:             uuid.NewString(),
		UserID:         userID,
		TotalReceipts:  receiptDelta,
		TotalRWTEarned: rwtDelta,
		TotalAIAEarned: aiaDelta,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_receipts":   gorm.Expr("user_stats.total_receipts + ?", receiptDelta),
			"total_rwt_earned": gorm.Expr("user_stats.total_rwt_earned + ?", rwtDelta),
			"total_aia_earned": gorm.Expr("user_stats.total_aia_earned + ?", aiaDelta),
			"updated_at":       time.Now(),
		}),
	}).Create(&row).Error
}

// IssueReceiptReward credits the RWT earned by a processed receipt and writes the
// audit log entry
func (s *LedgerService) IssueReceiptReward(userID, receiptID string, rwtAmount decimal.Decimal, brand string, multiplier decimal.Decimal, baseRWT decimal.Decimal) error {
	if userID == "" || !rwtAmount.IsPositive() {
		return nil
	}
	meta := map[string]interface{}{
		"receipt_id": receiptID,
		"brand":      brand,
		"multiplier": multiplier,
		"base_rwt":   baseRWT,
	}
	if err := s.CreditRWT(userID, rwtAmount, "receipt_"+receiptID, "Receipt reward", meta); err != nil {
		return err
	}
	s.LogReward(userID, "receipt_processed", rwtAmount, decimal.Zero, meta)
	log.Printf("✅ %s RWT credited for receipt %s", rwtAmount, receiptID)
	return nil
}

// IssueReferralReward pays the referrer's AIA bonus: 10 when the triggering receipt
// was from a multiplier brand, 5 otherwise
func (s *LedgerService) IssueReferralReward(referrerID string, hasMultiplier bool) (decimal.Decimal, error) {
	reward := decimal.NewFromInt(ReferralBonusPlain)
	action := "referral_standard"
	if hasMultiplier {
		reward = decimal.NewFromInt(ReferralBonusBoosted)
		action = "referral_multiplier"
	}

	if err := s.CreditAIA(referrerID, reward, action, "Referral bonus", nil); err != nil {
		return decimal.Zero, err
	}
	s.LogReward(referrerID, action, decimal.Zero, reward, nil)
	if err := s.UpsertStats(referrerID, 0, decimal.Zero, reward); err != nil {
		log.Printf("⚠️ Referral stats update skipped for %s: %v", referrerID, err)
	}
	log.Printf("✅ Referral reward issued: %s AIA to %s", reward, referrerID)
	return reward, nil
}

// IssueWaitlistSignupRewards credits the signup bonus while the waitlist is within
// the first 5000 entries
func (s *LedgerService) IssueWaitlistSignupRewards(userID string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > WaitlistRewardLimit {
		log.Printf("Waitlist limit exceeded, no signup rewards for %s", userID)
		return false, nil
	}

	rwt := decimal.NewFromInt(WaitlistSignupRWT)
	aia := decimal.NewFromInt(WaitlistSignupAIA)
	if err := s.CreditRWT(userID, rwt, "waitlist_signup", "Waitlist signup bonus", nil); err != nil {
		return false, err
	}
	if err := s.CreditAIA(userID, aia, "waitlist_signup", "Waitlist signup bonus", nil); err != nil {
		return false, err
	}
	s.LogReward(userID, "waitlist_signup", rwt, aia, nil)

	// Keep user_stats in sync so balances update instantly
	if err := s.UpsertStats(userID, 0, rwt, aia); err != nil {
		log.Printf("⚠️ user_stats update skipped for %s: %v", userID, err)
	}
	return true, nil
}

func toJSON(m map[string]interface{}) datatypes.JSON {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
