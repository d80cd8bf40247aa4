package services

import (
	"fmt"
	"strings"
	"testing"

	"receiptx/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. The shared cache keeps all
// pooled connections on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Receipt{},
		&models.RWTTransaction{},
		&models.AIATransaction{},
		&models.RewardLog{},
		&models.UserStats{},
		&models.UserBoost{},
		&models.UserMultiplier{},
		&models.LotteryTicket{},
		&models.WaitlistEntry{},
		&models.NFTCatalogEntry{},
		&models.UserNFT{},
		&models.Referral{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
