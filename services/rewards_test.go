package services

import (
	"testing"
	"time"

	"receiptx/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStandardReward(t *testing.T) {
	one := decimal.NewFromInt(1)

	got := ComputeStandardReward(decimal.NewFromInt(50), decimal.NewFromFloat(1.5), one, one)
	assert.Equal(t, int64(75), got)

	got = ComputeStandardReward(decimal.NewFromFloat(10.99), one, one, one)
	assert.Equal(t, int64(11), got)

	got = ComputeStandardReward(decimal.NewFromFloat(10.49), one, one, one)
	assert.Equal(t, int64(10), got)

	// multipliers stack multiplicatively: 20 x 1.5 x 2 x 1.5 = 90
	got = ComputeStandardReward(decimal.NewFromInt(20), decimal.NewFromFloat(1.5), decimal.NewFromInt(2), decimal.NewFromFloat(1.5))
	assert.Equal(t, int64(90), got)
}

func TestParseMultiplierSlug(t *testing.T) {
	assert.True(t, ParseMultiplierSlug("rwt_multiplier_2x").Equal(decimal.NewFromInt(2)))
	assert.True(t, ParseMultiplierSlug("rwt_multiplier_1_5x").Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, ParseMultiplierSlug("no-number-here").Equal(decimal.NewFromInt(1)))
}

func TestResolveBoostHighestActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&models.UserBoost{ID: uuid.NewString(), UserID: "u1", Multiplier: decimal.NewFromFloat(1.5), Active: true}).Error)
	require.NoError(t, db.Create(&models.UserBoost{ID: uuid.NewString(), UserID: "u1", Multiplier: decimal.NewFromInt(3), Active: true}).Error)
	require.NoError(t, db.Create(&models.UserBoost{ID: uuid.NewString(), UserID: "u1", Multiplier: decimal.NewFromInt(5), Active: true, ExpiresAt: &past}).Error)
	require.NoError(t, db.Create(&models.UserBoost{ID: uuid.NewString(), UserID: "u1", Multiplier: decimal.NewFromInt(10), Active: false}).Error)

	mult, boost, err := svc.ResolveBoost("u1")
	require.NoError(t, err)
	require.NotNil(t, boost)
	assert.True(t, mult.Equal(decimal.NewFromInt(3)))
}

func TestResolveBoostDefaultsToOne(t *testing.T) {
	svc := NewRewardService(newTestDB(t))

	mult, boost, err := svc.ResolveBoost("nobody")
	require.NoError(t, err)
	assert.Nil(t, boost)
	assert.True(t, mult.Equal(decimal.NewFromInt(1)))
}

func TestConsumeBoost(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	uses := 1
	boost := models.UserBoost{ID: uuid.NewString(), UserID: "u1", Multiplier: decimal.NewFromInt(2), Active: true, UsesRemaining: &uses}
	require.NoError(t, db.Create(&boost).Error)

	require.NoError(t, svc.ConsumeBoost(&boost))

	var after models.UserBoost
	require.NoError(t, db.First(&after, "id = ?", boost.ID).Error)
	assert.False(t, after.Active)
	require.NotNil(t, after.UsesRemaining)
	assert.Equal(t, 0, *after.UsesRemaining)

	// unlimited-use boosts are untouched
	assert.NoError(t, svc.ConsumeBoost(&models.UserBoost{ID: uuid.NewString()}))
	assert.NoError(t, svc.ConsumeBoost(nil))
}

func TestResolveStarsMultiplierPicksHighest(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	require.NoError(t, db.Create(&models.UserMultiplier{ID: uuid.NewString(), UserID: "u1", ProductSlug: "rwt_multiplier_1_5x", Active: true, PurchasedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&models.UserMultiplier{ID: uuid.NewString(), UserID: "u1", ProductSlug: "rwt_multiplier_2x", Active: true, PurchasedAt: time.Now().Add(-time.Hour)}).Error)

	mult, row, err := svc.ResolveStarsMultiplier("u1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, mult.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "rwt_multiplier_2x", row.ProductSlug)
}

func TestEarlyAdopterEligibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	ok, err := svc.EarlyAdopterEligible(Identity{Email: "a@b.com"}, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	// the floor is keyed by email; other identities never qualify
	ok, err = svc.EarlyAdopterEligible(Identity{TelegramID: "tg-1"}, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	// not a first receipt
	ok, err = svc.EarlyAdopterEligible(Identity{Email: "a@b.com"}, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyEarlyAdopterFloor(t *testing.T) {
	assert.Equal(t, int64(1000), ApplyEarlyAdopterFloor(75))
	assert.Equal(t, int64(1500), ApplyEarlyAdopterFloor(1500))
	assert.Equal(t, int64(1000), ApplyEarlyAdopterFloor(1000))
}

func TestPriorReceiptCountUsesIdentityPriority(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	require.NoError(t, db.Create(&models.Receipt{
		ID: uuid.NewString(), UserEmail: "a@b.com", Brand: "Starbucks",
		Amount: decimal.NewFromInt(10), ReceiptHash: "h1", Status: models.ValidationApproved,
	}).Error)

	count, err := svc.PriorReceiptCount(Identity{Email: "a@b.com", TelegramID: "tg-unrelated"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.PriorReceiptCount(Identity{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPendingReferralLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewRewardService(db)

	require.NoError(t, db.Create(&models.Referral{
		ID: uuid.NewString(), ReferrerID: "referrer", ReferredID: "newbie",
	}).Error)

	ref, err := svc.PendingReferralFor("newbie")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "referrer", ref.ReferrerID)

	require.NoError(t, svc.MarkReferralAwarded(ref))

	ref, err = svc.PendingReferralFor("newbie")
	require.NoError(t, err)
	assert.Nil(t, ref)
}
