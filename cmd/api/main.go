package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/medconsult/consultation-service/internal/api/http"
	"github.com/medconsult/consultation-service/internal/api/http/handlers"
	"github.com/medconsult/consultation-service/internal/auth"
	"github.com/medconsult/consultation-service/internal/config"
	"github.com/medconsult/consultation-service/internal/events"
	"github.com/medconsult/consultation-service/internal/observability"
	"github.com/medconsult/consultation-service/internal/persistence"
	"github.com/medconsult/consultation-service/internal/repository"
	"github.com/medconsult/consultation-service/internal/repository/memory"
	"github.com/medconsult/consultation-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var repos repository.Repositories
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgres(pg.PoolHandle())
	} else {
		repos = memory.New().Repositories()
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to init redis", zap.Error(err))
	}
	defer redis.Close()

	files, err := newFileStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init file store", zap.Error(err))
	}

	var workers sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	outbox, err := newOutbox(workerCtx, &workers, cfg.Notification, redis, logger, metrics)
	if err != nil {
		logger.Fatal("failed to init notification outbox", zap.Error(err))
	}
	defer outbox.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, repos.Users, outbox.Outbox, logger, metrics).RegisterHandlers()

	authService := service.NewAuthService(repos.Users, tokens, cfg.Auth.BcryptCost)
	adminService := service.NewAdminService(repos.Users, dispatcher, outbox.DeadLetters, logger)
	profileService := service.NewProfileService(repos.Users, files, logger)
	consultationService := service.NewConsultationService(repos.Consultations, repos.Users, dispatcher, logger)
	prescriptionService := service.NewPrescriptionService(repos.Prescriptions, repos.Users)
	documentService := service.NewDocumentService(repos.Documents, files, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Storage.MaxUploadBytes,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	checks := []handlers.HealthCheck{{Name: "redis", Ping: redis.Ping}}
	if pg.Enabled() {
		checks = append(checks, handlers.HealthCheck{Name: "postgres", Ping: pg.Ping})
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(adminService),
		Profiles:       handlers.NewProfileHandler(profileService),
		Consultations:  handlers.NewConsultationHandler(consultationService),
		Prescriptions:  handlers.NewPrescriptionHandler(prescriptionService),
		Documents:      handlers.NewDocumentHandler(documentService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		AuthRateLimit: httptransport.RateLimitByIP(httptransport.NewRedisRateLimiter(redis.Client), httptransport.RateLimitConfig{
			KeyPrefix: redis.Key(cfg.RateLimit.KeyPrefix),
			Limit:     cfg.RateLimit.AuthPerMinute,
			Window:    time.Minute,
		}, logger, metrics),
		Metrics: metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	stopWorkers()
	workers.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
