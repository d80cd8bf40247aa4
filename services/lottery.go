package services

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"receiptx/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// A confidence of 50 or more classifies the text as a lottery ticket
const lotteryConfidenceThreshold = 50

// Plinko board: 16 rows, 17 columns. Outer columns pay 100/1000, interior pays 1.
const (
	plinkoRows = 16
	plinkoCols = 17
)

var plinkoRewards = [plinkoCols]int64{100, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1000}

var lotteryKeywords = []string{
	// generic lottery terms
	"LOTTERY", "LOTTO", "SCRATCH", "SCRATCHER", "INSTANT WIN", "SCRATCH-OFF",
	"TICKET NUMBER", "VALIDATION CODE", "WINNING NUMBERS", "PLAY INSTRUCTIONS",
	// state lotteries
	"CALIFORNIA LOTTERY", "CALOTTERY", "FLORIDA LOTTERY", "FLA LOTTERY",
	"TEXAS LOTTERY", "NEW YORK LOTTERY", "NY LOTTERY", "NYLOTTERY",
	"PENNSYLVANIA LOTTERY", "PA LOTTERY", "OHIO LOTTERY", "MICHIGAN LOTTERY",
	"GEORGIA LOTTERY", "NC LOTTERY", "NORTH CAROLINA LOTTERY",
	"ILLINOIS LOTTERY", "VIRGINIA LOTTERY", "VA LOTTERY",
	// popular scratch game names
	"CASH EXPLOSION", "MONEY BAGS", "GOLD RUSH", "LUCKY 7", "TRIPLE PLAY",
	"CROSSWORD", "BINGO", "MONOPOLY", "CASH WORD", "CASH BLAST",
	"SET FOR LIFE", "MILLIONAIRE", "PLATINUM", "DIAMOND", "RUBY",
	// ticket validation
	"SCAN TO CLAIM", "VALIDATE AT RETAILER", "CHECK YOUR TICKET",
	"WINNING TICKET", "PRIZE CLAIM", "CLAIM FORM", "RETAILER VALIDATION",
	// prize structures
	"PRIZE AMOUNT", "TOP PRIZE", "ODDS OF WINNING", "GAME NUMBER",
	"PACK NUMBER", "TICKET PACK", "SCRATCH HERE", "SCRATCH OFF",
}

var ticketNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TICKET\s*#?:?\s*([A-Z0-9]{10,20})`),
	regexp.MustCompile(`(?i)VALIDATION\s*CODE:?\s*([A-Z0-9]{10,20})`),
	regexp.MustCompile(`(?i)GAME\s*#?:?\s*(\d{3,4})`),
	regexp.MustCompile(`(?i)PACK\s*#?:?\s*([A-Z0-9]{6,12})`),
	regexp.MustCompile(`(?i)SERIAL\s*#?:?\s*([A-Z0-9]{8,16})`),
}

// Ordered: detection takes the first matching state, and the state feeds the
// ticket hash, so iteration must be deterministic. Do not convert to a map.
var stateLotteries = []struct {
	Abbrev string
	Name   string
}{
	{"CA", "California"}, {"FL", "Florida"}, {"TX", "Texas"}, {"NY", "New York"},
	{"PA", "Pennsylvania"}, {"OH", "Ohio"}, {"MI", "Michigan"}, {"GA", "Georgia"},
	{"NC", "North Carolina"}, {"IL", "Illinois"}, {"VA", "Virginia"}, {"NJ", "New Jersey"},
	{"MA", "Massachusetts"}, {"WA", "Washington"}, {"AZ", "Arizona"}, {"TN", "Tennessee"},
}

var scratchTerms = []string{"SCRATCH", "SCRATCHER", "SCRATCH-OFF", "INSTANT WIN", "SCRATCH HERE"}

var gameNamePattern = regexp.MustCompile(`(?i)GAME:\s*([A-Z\s]{3,30})`)
var longAlphanumeric = regexp.MustCompile(`[A-Z0-9]{15,}`)

var gameNameCaser = cases.Title(language.AmericanEnglish)

// LotteryDetection is the classification result for one OCR text
type LotteryDetection struct {
	IsLotteryTicket bool     `json:"is_lottery_ticket"`
	TicketType      string   `json:"ticket_type,omitempty"` // scratcher or draw
	State           string   `json:"state,omitempty"`
	TicketNumber    string   `json:"ticket_number,omitempty"`
	GameName        string   `json:"game_name,omitempty"`
	Confidence      int      `json:"confidence"`
	Indicators      []string `json:"indicators,omitempty"`
}

// PlinkoResult records the deterministic walk and the reward it landed on
type PlinkoResult struct {
	FinalColumn int   `json:"final_column"`
	Reward      int64 `json:"reward"`
	Path        []int `json:"path"`
}

type LotteryService struct {
	DB *gorm.DB
}

func NewLotteryService(db *gorm.DB) *LotteryService {
	return &LotteryService{DB: db}
}

// DetectLotteryTicket scores OCR text against the lottery lexicon
func DetectLotteryTicket(ocrText string) LotteryDetection {
	textUpper := strings.ToUpper(ocrText)
	det := LotteryDetection{}

	keywordMatches := 0
	for _, kw := range lotteryKeywords {
		if strings.Contains(textUpper, kw) {
			keywordMatches++
			det.Indicators = append(det.Indicators, "Keyword: "+kw)
		}
	}
	switch {
	case keywordMatches >= 3:
		det.Confidence += 40
	case keywordMatches >= 2:
		det.Confidence += 20
	case keywordMatches >= 1:
		det.Confidence += 10
	}

	for _, p := range ticketNumberPatterns {
		if m := p.FindStringSubmatch(textUpper); m != nil {
			det.TicketNumber = m[1]
			det.Indicators = append(det.Indicators, "Ticket number: "+det.TicketNumber)
			det.Confidence += 25
			break
		}
	}

	for _, st := range stateLotteries {
		if strings.Contains(textUpper, st.Abbrev+" LOTTERY") || strings.Contains(textUpper, strings.ToUpper(st.Name)+" LOTTERY") {
			det.State = st.Name
			det.Indicators = append(det.Indicators, "State: "+st.Name)
			det.Confidence += 20
			break
		}
	}

	hasScratchTerm := false
	for _, term := range scratchTerms {
		if strings.Contains(textUpper, term) {
			hasScratchTerm = true
			break
		}
	}
	if hasScratchTerm {
		det.Indicators = append(det.Indicators, "Scratch-off detected")
		det.Confidence += 15
	}

	if m := gameNamePattern.FindStringSubmatch(ocrText); m != nil {
		det.GameName = gameNameCaser.String(strings.ToLower(strings.TrimSpace(m[1])))
		det.Indicators = append(det.Indicators, "Game: "+det.GameName)
		det.Confidence += 10
	}

	// Lottery tickets carry Code 128 barcodes; OCR renders them as long runs
	if longAlphanumeric.MatchString(textUpper) {
		det.Indicators = append(det.Indicators, "Barcode-like string detected")
		det.Confidence += 5
	}

	det.IsLotteryTicket = det.Confidence >= lotteryConfidenceThreshold
	if hasScratchTerm {
		det.TicketType = "scratcher"
	} else if det.IsLotteryTicket {
		det.TicketType = "draw"
	}
	return det
}

// TicketHash combines ticket number, state and a text prefix so the same physical
// ticket always maps to the same hash regardless of when it is rescanned
func TicketHash(ticketNumber, state, ocrText string) string {
	if ticketNumber == "" {
		ticketNumber = "unknown"
	}
	if state == "" {
		state = "unknown"
	}
	prefix := ocrText
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", ticketNumber, state, prefix)))
	return hex.EncodeToString(sum[:])
}

// IsTicketDuplicate reports whether this hash has been recorded before
func (s *LotteryService) IsTicketDuplicate(ticketHash string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.LotteryTicket{}).Where("ticket_hash = ?", ticketHash).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordTicket appends the scanned ticket so it can never pay out again
func (s *LotteryService) RecordTicket(ticketHash string, det LotteryDetection, id Identity) error {
	indicators, _ := json.Marshal(det.Indicators)
	return s.DB.Create(&models.LotteryTicket{
		ID:              uuid.NewString(),
		TicketHash:      ticketHash,
		TicketNumber:    det.TicketNumber,
		State:           det.State,
		GameName:        det.GameName,
		TicketType:      det.TicketType,
		ConfidenceScore: det.Confidence,
		Indicators:      datatypes.JSON(indicators),
		UserEmail:       id.Email,
		TelegramID:      id.TelegramID,
		WalletAddress:   id.WalletAddress,
	}).Error
}

// SimulatePlinko drops a ball from the center column and walks it down 16 rows.
// Each step draws a pseudo-random bit from sha256(seed + row index), moving left
// below 0.5 and right otherwise, clamped at the board edges. Deterministic for a
// given seed, so replays of the same ticket hash land identically.
func SimulatePlinko(seed string) PlinkoResult {
	col := plinkoCols / 2
	path := make([]int, 0, plinkoRows+1)
	path = append(path, col)
	for row := 0; row < plinkoRows; row++ {
		r := seededRandom(seed, row)
		if r < 0.5 && col > 0 {
			col--
		} else if r >= 0.5 && col < plinkoCols-1 {
			col++
		}
		path = append(path, col)
	}
	return PlinkoResult{
		FinalColumn: col,
		Reward:      plinkoRewards[col],
		Path:        path,
	}
}

func seededRandom(seed string, i int) float64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s%d", seed, i)))
	v := binary.BigEndian.Uint32(sum[:4])
	return float64(v) / float64(0xffffffff)
}
