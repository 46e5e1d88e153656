package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kolekthq/kolekt-backend/api/routes"
	"github.com/kolekthq/kolekt-backend/internal/config"
	"github.com/kolekthq/kolekt-backend/internal/handlers"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	mongorepo "github.com/kolekthq/kolekt-backend/internal/repositories/mongodb"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"github.com/kolekthq/kolekt-backend/pkg/jwt"
	"github.com/kolekthq/kolekt-backend/pkg/mongodb"
	"github.com/kolekthq/kolekt-backend/pkg/whatsapp"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelConnect()

	mongoClient, err := mongodb.NewClient(connectCtx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(connectCtx, db); err != nil {
		slog.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Repositories
	var tenantRepo repositories.TenantRepository = mongorepo.NewTenantRepository(db)
	var vendorUserRepo repositories.VendorUserRepository = mongorepo.NewVendorUserRepository(db)
	var customerRepo repositories.CustomerRepository = mongorepo.NewCustomerRepository(db)
	var balanceRepo repositories.BalanceRepository = mongorepo.NewBalanceRepository(db)
	var transactionRepo repositories.PointsTransactionRepository = mongorepo.NewPointsTransactionRepository(db)
	var purchaseRepo repositories.PurchaseRepository = mongorepo.NewPurchaseRepository(db)
	var claimRepo repositories.ClaimRepository = mongorepo.NewClaimRepository(db)
	var rewardRepo repositories.RewardRepository = mongorepo.NewRewardRepository(db)
	var redemptionRepo repositories.RedemptionRepository = mongorepo.NewRedemptionRepository(db)
	var notificationRepo repositories.NotificationRepository = mongorepo.NewNotificationRepository(db)
	var txRunner repositories.TxRunner = mongorepo.NewTxRunner(db)

	// Services
	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	gateway := whatsapp.NewGateway(cfg.WhatsApp)
	notificationService := services.NewNotificationService(notificationRepo, gateway)
	ledgerService := services.NewLedgerService(balanceRepo, transactionRepo, txRunner)
	authService := services.NewAuthService(tenantRepo, vendorUserRepo, tokens, cfg.Loyalty)
	tenantService := services.NewTenantService(tenantRepo)
	customerService := services.NewCustomerService(customerRepo, balanceRepo, tenantRepo, ledgerService, notificationService)
	purchaseService := services.NewPurchaseService(purchaseRepo, customerRepo, tenantRepo, ledgerService, notificationService)
	claimService := services.NewClaimService(claimRepo, customerRepo, purchaseRepo, tenantRepo, ledgerService, notificationService, txRunner)
	rewardService := services.NewRewardService(rewardRepo)
	redemptionService := services.NewRedemptionService(redemptionRepo, rewardRepo, customerRepo, ledgerService, notificationService, cfg.Loyalty)

	// Handlers
	deps := &routes.HandlerDependencies{
		AuthHandler:       handlers.NewAuthHandler(authService),
		TenantHandler:     handlers.NewTenantHandler(tenantService),
		CustomerHandler:   handlers.NewCustomerHandler(customerService, ledgerService),
		PurchaseHandler:   handlers.NewPurchaseHandler(purchaseService),
		ClaimHandler:      handlers.NewClaimHandler(claimService),
		RewardHandler:     handlers.NewRewardHandler(rewardService, tenantService),
		RedemptionHandler: handlers.NewRedemptionHandler(redemptionService),
	}

	router := routes.SetupRouter(cfg, tokens, deps)

	// Background sweep for pending claims and redemptions past their expiry.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runExpirySweep(sweepCtx, claimService, redemptionService,
		time.Duration(cfg.Loyalty.SweepIntervalSeconds)*time.Second)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server exiting")
}

// runExpirySweep periodically settles pending claims and redemptions whose
// expiry has passed. Each tick is independent; a failed sweep retries on the
// next one.
func runExpirySweep(ctx context.Context, claims services.ClaimService, redemptions services.RedemptionService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			if _, err := claims.ExpireDue(ctx, now); err != nil {
				slog.Error("claim expiry sweep failed", "error", err)
			}
			if _, err := redemptions.ExpireDue(ctx, now); err != nil {
				slog.Error("redemption expiry sweep failed", "error", err)
			}
		}
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
