package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"receiptx/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fraud score thresholds: >=70 rejects, >=40 flags for manual review
const (
	fraudRejectThreshold = 70
	fraudFlagThreshold   = 40
)

var suspiciousKeywords = []string{"test", "sample", "demo", "fake", "photoshop"}

// ReceiptData is the input to fraud analysis
type ReceiptData struct {
	OCRText      string
	TotalAmount  decimal.Decimal
	MerchantName string
	ImageHash    string // sha256 of the uploaded bytes
}

// ReceiptAnalysis is the fraud assessment attached to the receipt record
type ReceiptAnalysis struct {
	ReceiptHash     string
	IsDuplicate     bool
	FraudScore      int // clamped to [0,100] for reporting
	FraudIndicators []string
	Status          models.ValidationStatus
	ConfidenceScore int
}

type ValidatorService struct {
	DB *gorm.DB
}

func NewValidatorService(db *gorm.DB) *ValidatorService {
	return &ValidatorService{DB: db}
}

// ReceiptHash returns the duplicate-detection hash for a submission. The image hash
// is the primary identifier so the same photo resubmitted on a different day still
// collides; the merchant+amount fallback intentionally excludes the date for the
// same reason.
func ReceiptHash(r ReceiptData) string {
	if r.ImageHash != "" {
		return r.ImageHash
	}
	input := fmt.Sprintf("%s|%s", strings.ToLower(strings.TrimSpace(r.MerchantName)), r.TotalAmount.StringFixed(2))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// IsDuplicate checks whether the hash has been seen on a previously stored receipt
func (s *ValidatorService) IsDuplicate(hash string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.Receipt{}).Where("receipt_hash = ?", hash).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AnalyzeFraud runs the independent heuristic checks and derives the tri-state
// status purely by threshold. Checks are unordered; the total is their sum. The
// duplicate check's +100 forces rejection on its own.
func (s *ValidatorService) AnalyzeFraud(r ReceiptData) (*ReceiptAnalysis, error) {
	var indicators []string
	score := 0

	if len(r.OCRText) < 50 {
		indicators = append(indicators, "Insufficient text extracted (possible low-quality image)")
		score += 20
	}

	if r.TotalAmount.IsInteger() && r.TotalAmount.GreaterThan(decimal.NewFromInt(50)) {
		indicators = append(indicators, "Perfectly round amount (unusual for real receipts)")
		score += 15
	}

	if !validMerchantName(r.MerchantName) {
		indicators = append(indicators, "Invalid or missing merchant name")
		score += 25
	}

	if r.TotalAmount.LessThanOrEqual(decimal.Zero) {
		indicators = append(indicators, "Invalid amount (must be positive)")
		score += 50
	}

	if r.TotalAmount.GreaterThan(decimal.NewFromInt(10000)) {
		indicators = append(indicators, "Unusually high transaction amount")
		score += 30
	}

	hash := ReceiptHash(r)
	dup, err := s.IsDuplicate(hash)
	if err != nil {
		return nil, err
	}
	if dup {
		indicators = append(indicators, "Duplicate receipt detected")
		score += 100 // auto-reject
	}

	lower := strings.ToLower(r.OCRText)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			indicators = append(indicators, "Suspicious keyword detected: "+kw)
			score += 40
		}
	}

	status := models.ValidationApproved
	if score >= fraudRejectThreshold {
		status = models.ValidationRejected
	} else if score >= fraudFlagThreshold {
		status = models.ValidationFlagged
	}

	reported := score
	if reported > 100 {
		reported = 100
	}
	confidence := 100 - reported
	if confidence < 0 {
		confidence = 0
	}

	return &ReceiptAnalysis{
		ReceiptHash:     hash,
		IsDuplicate:     dup,
		FraudScore:      reported,
		FraudIndicators: indicators,
		Status:          status,
		ConfidenceScore: confidence,
	}, nil
}

func validMerchantName(name string) bool {
	if len(name) < 3 {
		return false
	}
	return strings.ContainsFunc(name, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
}
