package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetadmin/fleet-api/config"
	"github.com/fleetadmin/fleet-api/internal/email"
	"github.com/fleetadmin/fleet-api/internal/health"
	"github.com/fleetadmin/fleet-api/internal/infrastructure/postgres"
	ctxlog "github.com/fleetadmin/fleet-api/internal/log"
	"github.com/fleetadmin/fleet-api/internal/metrics"
	"github.com/fleetadmin/fleet-api/internal/outbox"
	"github.com/fleetadmin/fleet-api/internal/token"
	httptransport "github.com/fleetadmin/fleet-api/internal/transport/http"
	"github.com/fleetadmin/fleet-api/internal/transport/http/handler"
	"github.com/fleetadmin/fleet-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	tokens := token.NewService([]byte(cfg.JWTSecret))
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokens)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Categories
	categoryRepo := postgres.NewCategoryRepository(pool)
	categoryUsecase := usecase.NewCategoryUsecase(categoryRepo)
	categoryHandler := handler.NewCategoryHandler(categoryUsecase, logger)

	// Cars
	carRepo := postgres.NewCarRepository(pool)
	carUsecase := usecase.NewCarUsecase(carRepo, categoryRepo)
	carHandler := handler.NewCarHandler(carUsecase, logger)

	// Outbound mail runs decoupled from request handling.
	worker := outbox.NewWorker(outboxRepo, sender, logger,
		time.Duration(cfg.OutboxPollIntervalSec)*time.Second)
	janitor, err := outbox.NewJanitor(outboxRepo, logger, cfg.OutboxPurgeCron)
	if err != nil {
		stop()
		log.Fatalf("outbox janitor: %v", err)
	}
	go worker.Start(ctx)
	go janitor.Start(ctx)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(
			logger,
			authHandler,
			carHandler,
			categoryHandler,
			tokens,
			cfg.AuthRateLimitRPS,
			cfg.AuthRateLimitBurst,
		),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
