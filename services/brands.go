package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BrandConfig is one row of the static brand multiplier table.
// The table is the authoritative source for which brands currently earn a bonus.
type BrandConfig struct {
	Key         string
	DisplayName string
	Aliases     []string // receipt spellings, matched case-insensitively
	Multiplier  decimal.Decimal
	Active      bool
	Phase       string // "mvp" or "phase2"
	Category    string
}

// BrandTable is ordered: detection is first-match and the slice order is the
// tie-break, so do not reorder entries.
var BrandTable = []BrandConfig{
	{
		Key:         "starbucks",
		DisplayName: "Starbucks",
		Aliases:     []string{"STARBUCKS", "STARBKS", "STBX", "SBX"},
		Multiplier:  decimal.NewFromFloat(1.5),
		Active:      true,
		Phase:       "mvp",
		Category:    "coffee",
	},
	{
		Key:         "circle_k",
		DisplayName: "Circle K",
		Aliases:     []string{"CIRCLE K", "CIRCLE-K", "CIRCLEK", "CRCL K"},
		Multiplier:  decimal.NewFromFloat(1.5),
		Active:      true,
		Phase:       "mvp",
		Category:    "gas_convenience",
	},
	{
		Key:         "mcdonalds",
		DisplayName: "McDonald's",
		Aliases:     []string{"MCDONALD'S", "MCDONALD", "MCDONALDS", "MC DONALD", "MC DONALDS", "M C DONALD"},
		Multiplier:  decimal.NewFromFloat(1.5),
		Active:      true,
		Phase:       "mvp",
		Category:    "quick_service",
	},
	{
		Key:         "walmart",
		DisplayName: "Walmart",
		Aliases:     []string{"WALMART", "WM SUPERCENTER", "WAL-MART"},
		Multiplier:  decimal.NewFromFloat(1.25),
		Active:      false, // phase 2: off at launch
		Phase:       "phase2",
		Category:    "big_box",
	},
	{
		Key:         "target",
		DisplayName: "Target",
		Aliases:     []string{"TARGET", "TARJAY"},
		Multiplier:  decimal.NewFromFloat(1.5),
		Active:      false, // phase 2: off at launch
		Phase:       "phase2",
		Category:    "big_box",
	},
}

// BrandUnknown is returned when no active brand alias occurs in the text
const BrandUnknown = "Unknown"

// DetectBrand scans OCR text for the first active brand whose alias occurs as a
// substring. Table order wins on ties; inactive brands never match.
func DetectBrand(ocrText string) (string, decimal.Decimal) {
	text := strings.ToUpper(ocrText)
	for _, cfg := range BrandTable {
		if !cfg.Active {
			continue
		}
		for _, alias := range cfg.Aliases {
			if strings.Contains(text, alias) {
				return cfg.DisplayName, cfg.Multiplier
			}
		}
	}
	return BrandUnknown, decimal.NewFromInt(1)
}

// IsMultiplierBrand reports whether the display name belongs to an active bonus brand.
// Referral bonuses pay 10 AIA for these brands instead of the standard 5.
func IsMultiplierBrand(displayName string) bool {
	for _, cfg := range BrandTable {
		if cfg.Active && cfg.DisplayName == displayName {
			return true
		}
	}
	return false
}

// ActiveBrands returns the live portion of the table, preserving order
func ActiveBrands() []BrandConfig {
	var out []BrandConfig
	for _, cfg := range BrandTable {
		if cfg.Active {
			out = append(out, cfg)
		}
	}
	return out
}
