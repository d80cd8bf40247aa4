package services

import (
	"io"
	"log"

	"receiptx/models"

	"github.com/gofiber/fiber/v2"
)

// ProcessReceipt handles POST /api/ocr/process (multipart)
func (p *PipelineService) ProcessReceipt(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No file uploaded",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read uploaded file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read uploaded file",
		})
	}

	in := SubmissionInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
		Identity: Identity{
			Email:         c.FormValue("user_email"),
			TelegramID:    c.FormValue("telegram_id"),
			WalletAddress: c.FormValue("wallet_address"),
		},
	}
	log.Printf("📨 Receipt submission: %s (%d bytes) from %s", in.FileName, len(in.Data), in.Identity.Resolve())

	result, subErr := p.Process(c.Context(), in)
	if subErr != nil {
		resp := fiber.Map{
			"success": false,
			"error":   subErr.Message,
		}
		if subErr.Analysis != nil {
			resp["validation"] = fiber.Map{
				"status":       subErr.Analysis.Status,
				"fraud_score":  subErr.Analysis.FraudScore,
				"indicators":   subErr.Analysis.FraudIndicators,
				"receipt_hash": subErr.Analysis.ReceiptHash,
			}
		}
		return c.Status(subErr.Code).JSON(resp)
	}

	resp := fiber.Map{
		"success":  true,
		"data":     result.Receipt,
		"ocr_text": result.OCRText,
		"reward":   result.Reward,
	}
	if result.Analysis.Status == models.ValidationFlagged {
		resp["validation"] = fiber.Map{
			"status":      result.Analysis.Status,
			"fraud_score": result.Analysis.FraudScore,
			"indicators":  result.Analysis.FraudIndicators,
			"message":     "Receipt flagged for manual review",
		}
	}
	if result.Plinko != nil {
		resp["plinko"] = fiber.Map{
			"detection": result.Lottery,
			"result":    result.Plinko,
		}
	}
	if result.ReferralTo != "" {
		resp["referral"] = fiber.Map{
			"referrer_id": result.ReferralTo,
			"aia_awarded": result.ReferralAI,
		}
	}
	if len(result.NFTsMinted) > 0 {
		resp["nfts"] = result.NFTsMinted
	}
	if len(result.ChainTxns) > 0 {
		resp["blockchain"] = result.ChainTxns
	}
	return c.JSON(resp)
}

// ReceiptHistory handles GET /api/receipts/history
func (p *PipelineService) ReceiptHistory(c *fiber.Ctx) error {
	id := Identity{
		Email:         c.Query("email"),
		TelegramID:    c.Query("telegram_id"),
		WalletAddress: c.Query("wallet_address"),
	}
	if id.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User identifier required"})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	q := p.DB.Model(&models.Receipt{})
	switch {
	case id.Email != "":
		q = q.Where("user_email = ?", id.Email)
	case id.TelegramID != "":
		q = q.Where("telegram_id = ?", id.TelegramID)
	default:
		q = q.Where("wallet_address = ?", id.WalletAddress)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count receipts"})
	}

	var receipts []models.Receipt
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&receipts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load receipts"})
	}

	resp := fiber.Map{
		"receipts": receipts,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	}

	var stats models.UserStats
	if err := p.DB.Where("user_id = ?", id.Resolve()).First(&stats).Error; err == nil {
		resp["stats"] = fiber.Map{
			"total_receipts":   stats.TotalReceipts,
			"total_rwt_earned": stats.TotalRWTEarned,
			"total_aia_earned": stats.TotalAIAEarned,
			"average_reward":   stats.AverageReward(),
		}
	}
	return c.JSON(resp)
}
