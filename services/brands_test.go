package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDetectBrand(t *testing.T) {
	brand, mult := DetectBrand("STARBUCKS STORE #1234\nGrande Latte 5.25\nTotal: 5.25")
	assert.Equal(t, "Starbucks", brand)
	assert.True(t, mult.Equal(decimal.NewFromFloat(1.5)))

	brand, mult = DetectBrand("JOE'S DINER\nBurger 8.99\nTotal: 8.99")
	assert.Equal(t, BrandUnknown, brand)
	assert.True(t, mult.Equal(decimal.NewFromInt(1)))
}

func TestDetectBrandFirstMatchWins(t *testing.T) {
	// Both aliases present; table order decides
	brand, _ := DetectBrand("STARBUCKS inside CIRCLE K station")
	assert.Equal(t, "Starbucks", brand)
}

func TestDetectBrandIgnoresInactive(t *testing.T) {
	brand, mult := DetectBrand("WALMART SUPERCENTER\nTotal: 43.12")
	assert.Equal(t, BrandUnknown, brand)
	assert.True(t, mult.Equal(decimal.NewFromInt(1)))
}

func TestDetectBrandCaseInsensitive(t *testing.T) {
	brand, _ := DetectBrand("mcdonald's restaurant #42")
	assert.Equal(t, "McDonald's", brand)
}

func TestIsMultiplierBrand(t *testing.T) {
	assert.True(t, IsMultiplierBrand("Starbucks"))
	assert.False(t, IsMultiplierBrand("Walmart")) // phase 2, off at launch
	assert.False(t, IsMultiplierBrand(BrandUnknown))
}

func TestActiveBrandsPreservesOrder(t *testing.T) {
	active := ActiveBrands()
	assert.Len(t, active, 3)
	assert.Equal(t, "starbucks", active[0].Key)
	assert.Equal(t, "circle_k", active[1].Key)
	assert.Equal(t, "mcdonalds", active[2].Key)
}
