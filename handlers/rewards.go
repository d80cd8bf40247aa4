package handlers

import (
	"receiptx/middleware"
	"receiptx/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, rewards *services.RewardService, ledger *services.LedgerService) {
	app.Get("/api/multipliers/active", rewards.ActiveMultipliers)
	app.Post("/api/waitlist/submit", ledger.SubmitWaitlist)

	// 🔐 Service-to-service, called by the account backend rather than end users
	app.Post("/api/referrals/track", middleware.ServiceAuthMiddleware(), rewards.TrackReferral)
}
