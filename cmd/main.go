package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"civicity/couponhub/internal/config"
	"civicity/couponhub/internal/handler"
	"civicity/couponhub/internal/model"
	"civicity/couponhub/internal/repository"
	"civicity/couponhub/internal/service"
	jwtpkg "civicity/couponhub/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize catalog cache (Redis or in-memory)
	var catalogCache repository.CatalogCache
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		catalogCache = repository.NewRedisCatalogCache(redisClient)
		logger.Info("using Redis catalog cache")
	case "memory":
		catalogCache = repository.NewMemoryCatalogCache()
		logger.Info("using in-memory catalog cache")
	default:
		logger.Fatal("unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}

	// 6. Initialize repositories
	couponRepo := repository.NewPGCouponRepository(db)
	instanceRepo := repository.NewPGCouponInstanceRepository(db)
	redemptionRepo := repository.NewPGRedemptionRepository(db)

	// 7. Initialize JWT manager (identity verifier)
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.TokenTTL)

	// 8. Initialize services
	catalogService := service.NewCatalogService(couponRepo, catalogCache, cfg.Cache.CouponTTL, logger)
	issuanceService := service.NewIssuanceService(
		catalogService, instanceRepo,
		cfg.Issuance.AllowInactive, cfg.Issuance.MaxCollisionRetries,
		logger,
	)
	redemptionService := service.NewRedemptionService(instanceRepo, redemptionRepo, logger)

	// Role lookup for the authorization gate
	roleLookup := service.NewStaticRoleLookup(cfg.Authz.AdminUserIDs, cfg.Authz.ModeratorUserIDs)

	// 9. Initialize handlers
	couponHandler := handler.NewCouponHandler(catalogService, issuanceService)
	redeemHandler := handler.NewRedeemHandler(redemptionService)

	// 10. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, roleLookup, couponHandler, redeemHandler)

	// 11. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 12. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
