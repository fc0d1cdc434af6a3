package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	appconfig "github.com/rajnidolly853-ship-it/smartearn-pro/config"
	"github.com/rajnidolly853-ship-it/smartearn-pro/handlers"
	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"
	"github.com/rajnidolly853-ship-it/smartearn-pro/utils"
	"github.com/rajnidolly853-ship-it/smartearn-pro/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "smartearn-pro",
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOrigins := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, X-User-ID, X-User-Anonymous, X-User-Roles, X-Admin-ID, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if err := utils.InitR2(cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.R2BucketName); err != nil {
		log.Fatal("failed to initialize R2 client: ", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserDevice{},
		&models.Wallet{},
		&models.Transaction{},
		&models.UserStats{},
		&models.RateWindow{},
		&models.WithdrawalRequest{},
		&models.WithdrawalMethod{},
		&models.ReferralLink{},
		&models.TaskOffer{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	if err := seedWithdrawalMethods(db); err != nil {
		log.Fatal("failed to seed withdrawal methods: ", err)
	}

	clock := services.SystemClock{}
	ledger := services.NewLedgerService(db)
	rateWindows := services.NewRateWindowService(db, clock)
	risk := services.NewRiskService(db, rateWindows, clock, cfg.MaxDevicesPerAccount, cfg.RateLimitPerHour)
	notifications := services.NewNotificationService(db)
	referrals := services.NewReferralService(db, ledger, notifications, clock,
		cfg.ReferralBonusReferrer, cfg.ReferralBonusReferee)
	rewards := services.NewRewardService(db, ledger, rateWindows, risk, referrals, notifications, clock,
		cfg.AdReward, time.Duration(cfg.AdCooldownSec)*time.Second, cfg.DailyAdLimit)
	checkins := services.NewCheckinService(db, ledger, rateWindows, risk, notifications, clock,
		cfg.CheckinBase, cfg.CheckinIncrement, cfg.CheckinCapDays)
	spins := services.NewSpinService(db, ledger, rateWindows, risk, clock,
		cfg.SpinDailyLimit, cfg.SpinPrizes, cfg.SpinProbabilities, nil)
	withdrawals := services.NewWithdrawalService(db, ledger, risk, notifications, clock,
		cfg.WithdrawalMin, cfg.WithdrawalMax, cfg.CoinToCurrencyRate)
	settlements := services.NewSettlementService(withdrawals, clock)
	admin := services.NewAdminService(db, ledger, notifications, clock)
	users := services.NewUserService(db, referrals, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := workers.NewNotifierClient(db, cfg.PushGatewayURL, cfg.ServiceToken)
	go workers.PollNotifications(ctx, notifier, 10*time.Second)

	services.NewMaintenanceService(rateWindows, settlements).StartScheduler()

	handlers.SetupUserRoutes(app, users, risk)
	handlers.SetupWalletRoutes(app, ledger)
	handlers.SetupEarningRoutes(app, rewards, checkins, spins)
	handlers.SetupWithdrawalRoutes(app, withdrawals)
	handlers.SetupReferralRoutes(app, referrals)
	handlers.SetupNotificationRoutes(app, notifications)
	handlers.SetupAdminRoutes(app, admin, withdrawals, settlements)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.ListenAddr)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", cfg.AllowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// seedWithdrawalMethods upserts the default payout rails. IDs are slugs of
// the names, so re-running is idempotent and ops can retune min amounts from
// the DB without touching IDs.
func seedWithdrawalMethods(db *gorm.DB) error {
	defaults := []models.WithdrawalMethod{
		{Name: "UPI", Icon: "💳", MinAmount: 1000},
		{Name: "Paytm", Icon: "📱", MinAmount: 1000},
		{Name: "Amazon Gift Card", Icon: "🎁", MinAmount: 5000},
		{Name: "Google Play Gift Card", Icon: "🎮", MinAmount: 5000},
	}
	for i := range defaults {
		defaults[i].ID = slug.Make(defaults[i].Name)
		defaults[i].IsActive = true
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&defaults).Error
}
