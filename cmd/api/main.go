package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Kelvin-dev001/nebsam-cert-system/internal/api/http"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/api/http/handlers"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/auth"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/config"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/events"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/observability"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/otp"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/persistence"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/repository"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/service"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/sms"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	certRepo := repository.NewCertificateRepository(pool)

	var sender otp.Sender
	if cfg.SMS.APIKey != "" {
		sender = sms.NewOnfonSender(cfg.SMS, logger)
	} else {
		sender = sms.NewLogSender(logger)
	}

	metrics := observability.NewMetrics()

	challengeStore := otp.NewRedisStore(redis.Client)
	otpService := otp.NewService(challengeStore, sender,
		time.Duration(cfg.Auth.OTPTTLMinutes)*time.Minute, logger).WithMetrics(metrics)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		OTP:        otpService,
		Dispatcher: dispatcher,
	})
	certService := service.NewCertificateService(service.CertificateDependencies{
		CertificateRepo: certRepo,
		OTP:             otpService,
		Dispatcher:      dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Certificates:   handlers.NewCertificatesHandler(certService),
		MasterData:     handlers.NewMasterDataHandler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
