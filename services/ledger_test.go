package services

import (
	"testing"

	"receiptx/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertStatsIncrements(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)

	require.NoError(t, svc.UpsertStats("u1", 1, decimal.NewFromInt(75), decimal.Zero))
	require.NoError(t, svc.UpsertStats("u1", 1, decimal.NewFromInt(25), decimal.NewFromInt(5)))

	var stats models.UserStats
	require.NoError(t, db.First(&stats, "user_id = ?", "u1").Error)
	assert.Equal(t, int64(2), stats.TotalReceipts)
	assert.True(t, stats.TotalRWTEarned.Equal(decimal.NewFromInt(100)))
	assert.True(t, stats.TotalAIAEarned.Equal(decimal.NewFromInt(5)))
	assert.True(t, stats.AverageReward().Equal(decimal.NewFromInt(50)))

	// one row per user
	var count int64
	require.NoError(t, db.Model(&models.UserStats{}).Where("user_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIssueReceiptReward(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)

	err := svc.IssueReceiptReward("u1", "receipt-1", decimal.NewFromInt(75), "Starbucks", decimal.NewFromFloat(1.5), decimal.NewFromInt(50))
	require.NoError(t, err)

	var txn models.RWTTransaction
	require.NoError(t, db.First(&txn, "user_id = ?", "u1").Error)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, models.DirectionCredit, txn.Direction)

	var logs int64
	require.NoError(t, db.Model(&models.RewardLog{}).Where("user_id = ? AND action = ?", "u1", "receipt_processed").Count(&logs).Error)
	assert.Equal(t, int64(1), logs)
}

func TestIssueReceiptRewardSkipsZeroAndAnonymous(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)

	require.NoError(t, svc.IssueReceiptReward("", "r1", decimal.NewFromInt(75), "Starbucks", decimal.NewFromInt(1), decimal.NewFromInt(75)))
	require.NoError(t, svc.IssueReceiptReward("u1", "r2", decimal.Zero, "Unknown", decimal.NewFromInt(1), decimal.Zero))

	var count int64
	require.NoError(t, db.Model(&models.RWTTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestIssueReferralReward(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)

	bonus, err := svc.IssueReferralReward("referrer", true)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(decimal.NewFromInt(ReferralBonusBoosted)))

	bonus, err = svc.IssueReferralReward("referrer", false)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(decimal.NewFromInt(ReferralBonusPlain)))

	var stats models.UserStats
	require.NoError(t, db.First(&stats, "user_id = ?", "referrer").Error)
	assert.True(t, stats.TotalAIAEarned.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, int64(0), stats.TotalReceipts)
}

func TestIssueWaitlistSignupRewards(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)

	rewarded, err := svc.IssueWaitlistSignupRewards("a@b.com")
	require.NoError(t, err)
	assert.True(t, rewarded)

	var rwt models.RWTTransaction
	require.NoError(t, db.First(&rwt, "user_id = ? AND source = ?", "a@b.com", "waitlist_signup").Error)
	assert.True(t, rwt.Amount.Equal(decimal.NewFromInt(WaitlistSignupRWT)))

	var aia models.AIATransaction
	require.NoError(t, db.First(&aia, "user_id = ? AND source = ?", "a@b.com", "waitlist_signup").Error)
	assert.True(t, aia.Amount.Equal(decimal.NewFromInt(WaitlistSignupAIA)))
}
