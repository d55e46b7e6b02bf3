package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/api/routes"
	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/config"
	"github.com/ArowuTest/giveaway-draw-backend/internal/handlers"
	"github.com/ArowuTest/giveaway-draw-backend/internal/logging"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	mongorepo "github.com/ArowuTest/giveaway-draw-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/giveaway-draw-backend/internal/scheduler"
	"github.com/ArowuTest/giveaway-draw-backend/internal/services"
	"github.com/ArowuTest/giveaway-draw-backend/pkg/eventbus"
	"github.com/ArowuTest/giveaway-draw-backend/pkg/mongodb"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel)
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is not configured")
	}
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	giveawayRepo := mongorepo.NewGiveawayRepository(db)
	winnerRepo := mongorepo.NewWinnerRepository(db)
	purchaseRepo := mongorepo.NewPurchaseRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)
	eventRepo := mongorepo.NewEventRepository(db)

	if err := seedAdmin(ctx, adminRepo, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	var locker services.Locker
	switch strings.ToLower(cfg.Locks.Backend) {
	case "memory":
		locker = services.NewKeyedMutex()
	default:
		locker = mongorepo.NewLocker(db, cfg.Locks.LeaseTTL)
	}

	picker := services.NewCryptoPicker()
	if cfg.Draw.Seed != 0 {
		slog.Warn("Draws use a fixed seed and are reproducible", "seed", cfg.Draw.Seed)
		picker = services.NewSeededPicker(cfg.Draw.Seed)
	}

	var publisher services.EventPublisher = services.LogPublisher{}
	if cfg.Kafka.Enabled {
		publisher = eventbus.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Error closing event publisher", "error", err)
		}
	}()

	clock := services.SystemClock{}
	events := services.NewEventRecorder(eventRepo, publisher)
	eligibility := services.NewEligibilityService(purchaseRepo, userRepo)
	ledger := services.NewWinnerLedger(giveawayRepo, winnerRepo, eligibility, picker, locker, events, clock)
	drawService := services.NewDrawService(giveawayRepo, winnerRepo, eligibility, ledger, picker, locker, events, clock)
	drawService.SetAllocationTimeout(cfg.Draw.AllocationTimeout)
	overrideService := services.NewAdminOverrideService(giveawayRepo, userRepo, ledger, clock)
	giveawayService := services.NewGiveawayService(giveawayRepo, winnerRepo, eventRepo, eligibility, locker, events, clock)
	lifecycleService := services.NewLifecycleService(giveawayRepo, events, clock)
	dashboardService := services.NewDashboardService(giveawayRepo, winnerRepo, purchaseRepo, userRepo, clock)
	authService := services.NewAuthService(adminRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second, clock)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		AuthHandler:      handlers.NewAuthHandler(authService),
		GiveawayHandler:  handlers.NewGiveawayHandler(giveawayService),
		DrawHandler:      handlers.NewDrawHandler(drawService),
		WinnerHandler:    handlers.NewWinnerHandler(ledger, overrideService),
		DashboardHandler: handlers.NewDashboardHandler(dashboardService),
	})

	if cfg.Scheduler.Enabled {
		cron, err := scheduler.NewScheduler(scheduler.Deps{
			Lifecycle:     lifecycleService,
			LifecycleSpec: cfg.Scheduler.LifecycleSpec,
		})
		if err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		cron.Start()
		defer func() { <-cron.Stop().Done() }()
		slog.Info("Lifecycle scheduler started", "spec", cfg.Scheduler.LifecycleSpec)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exiting")
}

// seedAdmin creates the configured admin account on first start.
func seedAdmin(ctx context.Context, repo repositories.AdminUserRepository, cfg config.AdminConfig) error {
	if cfg.Password == "" {
		return nil
	}
	if _, err := repo.FindByEmail(ctx, cfg.Email); err == nil {
		return nil
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return err
	}

	hashed, err := services.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := &models.AdminUser{
		FirstName: "System",
		LastName:  "Admin",
		Email:     strings.ToLower(cfg.Email),
		Password:  hashed,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return err
	}
	slog.Info("Seeded admin account", "email", admin.Email)
	return nil
}
