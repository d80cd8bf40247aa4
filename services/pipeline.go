package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"regexp"
	"time"

	"receiptx/models"
	"receiptx/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MaxFileSize = 10 * 1024 * 1024 // 10MB

// AllowedUploadTypes for the submission endpoint
var AllowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"application/pdf": true,
}

// Receipt totals appear in several formats; patterns are tried in order and the
// first match wins
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)total[:\s]*\$?(\d+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)amount[:\s]*\$?(\d+\.?\d{0,2})`),
	regexp.MustCompile(`\$(\d+\.\d{2})`),
	regexp.MustCompile(`(\d+\.\d{2})`),
}

// UploadFunc stores receipt bytes and returns the public URL
type UploadFunc func(ctx context.Context, data []byte, key, contentType string) (string, error)

// PipelineService runs the whole submission flow: validate, store, extract,
// classify, score, compute, fan out
type PipelineService struct {
	DB        *gorm.DB
	OCR       utils.OCRClient
	Upload    UploadFunc
	Validator *ValidatorService
	Lottery   *LotteryService
	Rewards   *RewardService
	Ledger    *LedgerService
	NFTs      *NFTService
	Chain     *ChainMinter
}

func NewPipelineService(db *gorm.DB, ocr utils.OCRClient, upload UploadFunc, chain *ChainMinter) *PipelineService {
	return &PipelineService{
		DB:        db,
		OCR:       ocr,
		Upload:    upload,
		Validator: NewValidatorService(db),
		Lottery:   NewLotteryService(db),
		Rewards:   NewRewardService(db),
		Ledger:    NewLedgerService(db),
		NFTs:      NewNFTService(db),
		Chain:     chain,
	}
}

// SubmissionInput is the per-request payload; discarded after the response
type SubmissionInput struct {
	FileName    string
	ContentType string
	Data        []byte
	Identity    Identity
}

// RewardBreakdown is the reward block of the success response
type RewardBreakdown struct {
	BaseRWT    decimal.Decimal `json:"base_rwt"`
	Multiplier decimal.Decimal `json:"multiplier"`
	TotalRWT   int64           `json:"total_rwt"`
	Brand      string          `json:"brand"`
}

// SubmissionResult is everything the handler needs to build the response
type SubmissionResult struct {
	Receipt    *models.Receipt
	OCRText    string // redacted
	Reward     RewardBreakdown
	Analysis   *ReceiptAnalysis
	Plinko     *PlinkoResult
	Lottery    *LotteryDetection
	ReferralTo string
	ReferralAI decimal.Decimal
	NFTsMinted []string
	ChainTxns  map[string]string // nft type -> tx hash
}

// SubmissionError maps a pipeline failure to an HTTP status
type SubmissionError struct {
	Code     int
	Message  string
	Analysis *ReceiptAnalysis // set on fraud rejection
}

func (e *SubmissionError) Error() string { return e.Message }

func failSubmission(code int, message string) *SubmissionError {
	return &SubmissionError{Code: code, Message: message}
}

// Process runs one submission end to end. Everything up to and including the
// receipt insert is fail-fast; the fan-out afterwards is best-effort: each step
// logs and continues so a stats or referral hiccup never costs the user their
// reward response.
func (p *PipelineService) Process(ctx context.Context, in SubmissionInput) (*SubmissionResult, *SubmissionError) {
	if len(in.Data) == 0 {
		return nil, failSubmission(400, "No file uploaded")
	}
	if !AllowedUploadTypes[in.ContentType] {
		return nil, failSubmission(400, "Invalid file type. Only images (JPEG, PNG, WebP, HEIC) and PDF are allowed.")
	}
	if len(in.Data) > MaxFileSize {
		return nil, failSubmission(400, "File too large. Maximum size is 10MB.")
	}

	imageSum := sha256.Sum256(in.Data)
	imageHash := hex.EncodeToString(imageSum[:])

	imageURL, err := p.Upload(ctx, in.Data, utils.ReceiptObjectKey(in.FileName), in.ContentType)
	if err != nil {
		log.Printf("❌ Receipt upload failed: %v", err)
		return nil, failSubmission(500, "Failed to store receipt image")
	}

	ocrResult, err := p.OCR.ExtractText(ctx, in.Data, in.ContentType)
	if err != nil {
		log.Printf("❌ OCR failed: %v", err)
		return nil, failSubmission(500, "Failed to process OCR")
	}
	if !utils.LooksLikeReceipt(ocrResult) {
		return nil, failSubmission(400, "The uploaded image does not appear to be a receipt")
	}

	rawText := ocrResult.Text
	log.Printf("📄 OCR text extracted (%d chars)", len(rawText))

	amount := extractAmount(rawText)
	brand, brandMult := DetectBrand(rawText)
	log.Printf("🏷️ Brand: %s, Multiplier: %sx", brand, brandMult)

	// Lottery classification is pure; recording waits until after fraud scoring
	// so a rejected submission writes nothing
	detection := DetectLotteryTicket(rawText)

	analysis, err := p.Validator.AnalyzeFraud(ReceiptData{
		OCRText:      rawText,
		TotalAmount:  amount,
		MerchantName: brand,
		ImageHash:    imageHash,
	})
	if err != nil {
		log.Printf("❌ Fraud analysis failed: %v", err)
		return nil, failSubmission(500, "Failed to validate receipt")
	}
	if analysis.Status == models.ValidationRejected {
		log.Printf("🚫 Receipt rejected, fraud score %d: %v", analysis.FraudScore, analysis.FraudIndicators)
		return nil, &SubmissionError{
			Code:     400,
			Message:  "Receipt validation failed",
			Analysis: analysis,
		}
	}
	if analysis.Status == models.ValidationFlagged {
		log.Printf("⚠️ Receipt flagged for manual review, fraud score %d", analysis.FraudScore)
	}

	userID := in.Identity.Resolve()

	// The Plinko override and the early-adopter floor are mutually exclusive with
	// the standard formula; the lottery path runs first and suppresses the rest
	var plinko *PlinkoResult
	if detection.IsLotteryTicket {
		ticketHash := TicketHash(detection.TicketNumber, detection.State, rawText)
		dup, dupErr := p.Lottery.IsTicketDuplicate(ticketHash)
		if dupErr != nil {
			log.Printf("⚠️ Lottery duplicate check failed, treating as ordinary receipt: %v", dupErr)
		} else if dup {
			log.Printf("⚠️ Lottery ticket already scanned, no reward path change")
		} else {
			if err := p.Lottery.RecordTicket(ticketHash, detection, in.Identity); err != nil {
				log.Printf("⚠️ Failed to record lottery ticket, treating as ordinary receipt: %v", err)
			} else {
				result := SimulatePlinko(ticketHash)
				plinko = &result
				log.Printf("🎰 Plinko drop: column %d, reward %d RWT", result.FinalColumn, result.Reward)
			}
		}
	}

	var (
		baseRWT   decimal.Decimal
		totalMult decimal.Decimal
		totalRWT  int64
		usedBoost *models.UserBoost
	)

	if plinko != nil {
		// Replacement, not a multiplier: brand/base contributions zero out
		baseRWT = decimal.Zero
		totalMult = decimal.Zero
		totalRWT = plinko.Reward
	} else {
		boostMult, boost, boostErr := p.Rewards.ResolveBoost(userID)
		if boostErr != nil {
			log.Printf("⚠️ Boost resolution failed, defaulting to 1.0: %v", boostErr)
			boostMult = decimal.NewFromInt(1)
		}
		usedBoost = boost

		starsMult, _, starsErr := p.Rewards.ResolveStarsMultiplier(userID)
		if starsErr != nil {
			log.Printf("⚠️ Stars multiplier resolution failed, defaulting to 1.0: %v", starsErr)
			starsMult = decimal.NewFromInt(1)
		}

		baseRWT = amount.Mul(BaseRWTPerCurrencyUnit)
		totalMult = brandMult.Mul(boostMult).Mul(starsMult)
		totalRWT = ComputeStandardReward(amount, brandMult, boostMult, starsMult)

		prior, priorErr := p.Rewards.PriorReceiptCount(in.Identity)
		if priorErr != nil {
			log.Printf("⚠️ Prior receipt count failed, skipping early-adopter floor: %v", priorErr)
		} else if eligible, eErr := p.Rewards.EarlyAdopterEligible(in.Identity, prior); eErr != nil {
			log.Printf("⚠️ Early-adopter check failed: %v", eErr)
		} else if eligible {
			floored := ApplyEarlyAdopterFloor(totalRWT)
			if floored != totalRWT {
				log.Printf("🎉 Early-adopter floor applied: %d → %d RWT", totalRWT, floored)
			}
			totalRWT = floored
		}
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"rawText":     utils.RedactPII(rawText),
		"receiptHash": analysis.ReceiptHash,
	})
	indicators, _ := json.Marshal(analysis.FraudIndicators)

	receipt := &models.Receipt{
		ID:              uuid.NewString(),
		UserEmail:       in.Identity.Email,
		TelegramID:      in.Identity.TelegramID,
		WalletAddress:   in.Identity.WalletAddress,
		Brand:           brand,
		Amount:          amount,
		Multiplier:      totalMult,
		RWTEarned:       totalRWT,
		ImageURL:        imageURL,
		ReceiptHash:     analysis.ReceiptHash,
		FraudScore:      analysis.FraudScore,
		Status:          analysis.Status,
		FraudIndicators: datatypes.JSON(indicators),
		Metadata:        datatypes.JSON(meta),
	}
	if err := p.DB.Create(receipt).Error; err != nil {
		log.Printf("❌ Failed to insert receipt: %v", err)
		return nil, failSubmission(500, "Failed to save receipt")
	}

	out := &SubmissionResult{
		Receipt: receipt,
		OCRText: utils.RedactPII(rawText),
		Reward: RewardBreakdown{
			BaseRWT:    baseRWT,
			Multiplier: totalMult,
			TotalRWT:   totalRWT,
			Brand:      brand,
		},
		Analysis: analysis,
		Plinko:   plinko,
	}
	if detection.IsLotteryTicket {
		out.Lottery = &detection
	}

	p.fanOut(ctx, in.Identity, userID, receipt, out, usedBoost)
	return out, nil
}

// fanOut runs the dependent best-effort writes after the primary receipt insert.
// No transactional boundary spans these steps; partial completion is accepted.
func (p *PipelineService) fanOut(ctx context.Context, id Identity, userID string, receipt *models.Receipt, out *SubmissionResult, usedBoost *models.UserBoost) {
	rwt := decimal.NewFromInt(receipt.RWTEarned)

	if err := p.Ledger.IssueReceiptReward(userID, receipt.ID, rwt, receipt.Brand, receipt.Multiplier, out.Reward.BaseRWT); err != nil {
		log.Printf("⚠️ Failed to log reward: %v", err)
	}

	if userID != "" {
		if err := p.Ledger.UpsertStats(userID, 1, rwt, decimal.Zero); err != nil {
			log.Printf("⚠️ Failed to update user stats: %v", err)
		}
	}

	if err := p.Rewards.ConsumeBoost(usedBoost); err != nil {
		log.Printf("⚠️ Failed to consume boost: %v", err)
	}

	if ref, err := p.Rewards.PendingReferralFor(userID); err != nil {
		log.Printf("⚠️ Referral lookup failed: %v", err)
	} else if ref != nil {
		bonus, issueErr := p.Ledger.IssueReferralReward(ref.ReferrerID, IsMultiplierBrand(receipt.Brand))
		if issueErr != nil {
			log.Printf("⚠️ Failed to issue referral reward: %v", issueErr)
		} else {
			if err := p.Rewards.MarkReferralAwarded(ref); err != nil {
				log.Printf("⚠️ Failed to mark referral awarded: %v", err)
			}
			out.ReferralTo = ref.ReferrerID
			out.ReferralAI = bonus
		}
	}

	out.NFTsMinted = p.NFTs.AutoMintMilestones(id)

	if p.Chain != nil && len(out.NFTsMinted) > 0 && id.WalletAddress != "" {
		mintCtx, cancel := fanOutContext(ctx)
		defer cancel()
		out.ChainTxns = make(map[string]string)
		for _, nftType := range out.NFTsMinted {
			var nft models.UserNFT
			if err := p.DB.Where("nft_type = ? AND wallet_address = ?", nftType, id.WalletAddress).
				Order("created_at DESC").First(&nft).Error; err != nil {
				continue
			}
			txHash, mintErr := p.Chain.Mint(mintCtx, &nft)
			if mintErr != nil {
				// The chain mint worker retries unminted NFTs later
				log.Printf("⚠️ On-chain mint of %s deferred: %v", nftType, mintErr)
				continue
			}
			if err := p.DB.Model(&models.UserNFT{}).Where("id = ?", nft.ID).
				Updates(map[string]interface{}{"on_chain": true, "chain_tx_hash": txHash}).Error; err != nil {
				log.Printf("⚠️ Failed to record chain tx for %s: %v", nftType, err)
				continue
			}
			out.ChainTxns[nftType] = txHash
		}
	}
}

func extractAmount(text string) decimal.Decimal {
	for _, pattern := range amountPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, err := decimal.NewFromString(m[1]); err == nil {
				log.Printf("✅ Found amount: $%s", v)
				return v
			}
		}
	}
	log.Println("⚠️ No amount found in OCR text")
	return decimal.Zero
}

// Deadline helper for fan-out HTTP calls; keeps a slow bridge from holding the
// response hostage
func fanOutContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 15*time.Second)
}
