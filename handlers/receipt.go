package handlers

import (
	"receiptx/middleware"
	"receiptx/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReceiptRoutes(app *fiber.App, pipeline *services.PipelineService, limiter *middleware.RateLimiter) {
	// 🔓 Public, rate limited per client IP
	app.Post("/api/ocr/process", middleware.RateLimitMiddleware(limiter), pipeline.ProcessReceipt)
	app.Get("/api/receipts/history", pipeline.ReceiptHistory)
}
