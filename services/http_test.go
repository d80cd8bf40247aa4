package services

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"receiptx/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, path, body string) (*fiber.Map, int) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out fiber.Map
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out, resp.StatusCode
}

func TestSubmitWaitlist(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	app := fiber.New()
	app.Post("/api/waitlist/submit", ledger.SubmitWaitlist)

	body, code := postJSON(t, app, "/api/waitlist/submit", `{"email":"Early@Bird.com","source":"landing"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, (*body)["success"])
	assert.Equal(t, true, (*body)["rewarded"])

	// emails are normalized; resubmission conflicts
	_, code = postJSON(t, app, "/api/waitlist/submit", `{"email":"early@bird.com"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	_, code = postJSON(t, app, "/api/waitlist/submit", `{"email":"not-an-email"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	var entry models.WaitlistEntry
	require.NoError(t, db.First(&entry, "email = ?", "early@bird.com").Error)
	assert.Equal(t, "landing", entry.Source)
}

func TestTrackReferral(t *testing.T) {
	db := newTestDB(t)
	rewards := NewRewardService(db)

	app := fiber.New()
	app.Post("/api/referrals/track", rewards.TrackReferral)

	body, code := postJSON(t, app, "/api/referrals/track", `{"referrer_id":"alice","referred_id":"bob","referral_code":"ALICE10"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, (*body)["success"])

	// a user can only be referred once
	_, code = postJSON(t, app, "/api/referrals/track", `{"referrer_id":"carol","referred_id":"bob"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	_, code = postJSON(t, app, "/api/referrals/track", `{"referrer_id":"dave","referred_id":"dave"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	_, code = postJSON(t, app, "/api/referrals/track", `{"referrer_id":"","referred_id":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	ref, err := rewards.PendingReferralFor("bob")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "alice", ref.ReferrerID)
	assert.Equal(t, "ALICE10", ref.ReferralCodeUsed)
}

func TestActiveMultipliersEndpoint(t *testing.T) {
	db := newTestDB(t)
	rewards := NewRewardService(db)

	app := fiber.New()
	app.Get("/api/multipliers/active", rewards.ActiveMultipliers)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/multipliers/active?telegram_id=tg-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Brands          []BrandConfig `json:"brands"`
		BoostMultiplier string        `json:"boost_multiplier"`
		StarsMultiplier string        `json:"stars_multiplier"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Brands, 3)
	assert.Equal(t, "1", out.BoostMultiplier)
	assert.Equal(t, "1", out.StarsMultiplier)
}

func TestReceiptHistoryEndpoint(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, cleanReceiptText)

	app := fiber.New()
	app.Get("/api/receipts/history", p.ReceiptHistory)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/receipts/history", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	_, subErr := p.Process(context.Background(), submission("hist-bytes-1", Identity{TelegramID: "tg-h"}))
	require.Nil(t, subErr)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/receipts/history?telegram_id=tg-h", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Receipts []models.Receipt `json:"receipts"`
		Total    int64            `json:"total"`
		Stats    *struct {
			TotalReceipts int64 `json:"total_receipts"`
		} `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Receipts, 1)
	assert.Equal(t, int64(15), out.Receipts[0].RWTEarned)
	require.NotNil(t, out.Stats)
	assert.Equal(t, int64(1), out.Stats.TotalReceipts)
}
