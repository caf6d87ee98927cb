package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/config"
	"github.com/shoplytic/reminder-api/internal/email"
	"github.com/shoplytic/reminder-api/internal/repository/cache"
	"github.com/shoplytic/reminder-api/internal/repository/postgres"
	activityService "github.com/shoplytic/reminder-api/internal/service/activity"
	"github.com/shoplytic/reminder-api/internal/service/attribute"
	"github.com/shoplytic/reminder-api/internal/service/message"
	reminderService "github.com/shoplytic/reminder-api/internal/service/reminder"
	"github.com/shoplytic/reminder-api/internal/worker"
	"github.com/shoplytic/reminder-api/pkg/logger"
	"github.com/shoplytic/reminder-api/pkg/messaging/redis"
	"github.com/shoplytic/reminder-api/pkg/metrics"
	pkgworker "github.com/shoplytic/reminder-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	overrides, err := config.LoadWorkerOverrides()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment overrides: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Console:    cfg.Logging.Console,
	})
	zl := log.ZL()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	reminderRepo := postgres.NewReminderRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	productRepo := cache.NewProductRepository(postgres.NewProductRepository(db), cfg.Scanner.ProductCacheTTL)
	emailAccountRepo := postgres.NewEmailAccountRepository(db)
	activityRepo := postgres.NewActivityLogRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Scan pipeline
	m := metrics.New("reminder_worker")
	evaluator := reminderService.NewEvaluator(productRepo, attribute.NewParser(), zl)
	engine := reminderService.NewEngine(evaluator)
	tracker := reminderService.NewHistoryTracker(historyRepo)
	activitySvc := activityService.NewService(activityRepo, zl)
	tokens := message.NewTokenProvider(message.StoreInfo{
		Name:        cfg.Store.Name,
		URL:         cfg.Store.URL,
		Email:       cfg.Store.Email,
		CompanyName: cfg.Store.CompanyName,
		CompanyAddr: cfg.Store.CompanyAddress,
		CompanyTel:  cfg.Store.CompanyPhone,
		CompanyVat:  cfg.Store.CompanyVat,
		TwitterURL:  cfg.Store.TwitterURL,
		FacebookURL: cfg.Store.FacebookURL,
		YouTubeURL:  cfg.Store.YouTubeURL,
	}, productRepo)
	dispatcher := message.NewEmailDispatcher(emailAccountRepo, tokens, email.NewSMTPService(), activitySvc, zl)
	scanner := reminderService.NewScanner(reminderRepo, customerRepo, historyRepo, engine, tracker, dispatcher, m, zl)

	interval := cfg.Scanner.Interval
	if overrides.ScanInterval > 0 {
		interval = overrides.ScanInterval
	}
	scanWorker := worker.NewScanWorker(scanner, interval, zl)

	// Outbox pipeline
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, zl)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxProcessor := pkgworker.NewOutboxProcessor(outboxRepo, broker, pkgworker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupHealthCheck(overrides.HealthPort, zl)

	go scanWorker.Start(ctx)
	go outboxProcessor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info().Msg("shutting down worker...")
	cancel()

	// Give in-flight work a moment to drain.
	time.Sleep(time.Second)
	zl.Info().Msg("worker exited properly")
}

func setupHealthCheck(port int, zl zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			zl.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}
