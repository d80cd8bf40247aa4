package handlers

import (
	"receiptx/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNFTRoutes(app *fiber.App, nfts *services.NFTService) {
	app.Get("/api/nfts/eligibility", nfts.CheckEligibility)
	app.Post("/api/nfts/mint", nfts.MintNFT)
}
