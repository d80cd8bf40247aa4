package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"receiptx/handlers"
	"receiptx/middleware"
	"receiptx/models"
	"receiptx/services"
	"receiptx/utils"
	"receiptx/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // multipart overhead on top of the 10MB file cap
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
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
		log.Fatal("failed to migrate database:", err)
	}

	ocrClient, err := utils.NewOCRSpaceClientFromEnv()
	if err != nil {
		log.Fatal("failed to initialize OCR client:", err)
	}

	chainMinter := services.NewChainMinterFromEnv()
	pipeline := services.NewPipelineService(db, ocrClient, utils.UploadReceiptImage, chainMinter)
	nftService := services.NewNFTService(db)
	rewardService := services.NewRewardService(db)
	ledgerService := services.NewLedgerService(db)

	if err := nftService.SeedCatalog(); err != nil {
		log.Fatal("failed to seed NFT catalog:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.PollUnmintedNFTs(ctx, db, chainMinter, 60*time.Second)
	rewardService.StartExpirySweeps()

	limiter := middleware.NewRateLimiter(10, time.Minute)
	handlers.SetupReceiptRoutes(app, pipeline, limiter)
	handlers.SetupRewardRoutes(app, rewardService, ledgerService)
	handlers.SetupNFTRoutes(app, nftService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5200"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Expiry sweeps running (every 1m)")
	log.Println("✅ Chain mint worker running (every 60s)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
