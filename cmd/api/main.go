package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shoplytic/reminder-api/internal/config"
	"github.com/shoplytic/reminder-api/internal/email"
	healthHandler "github.com/shoplytic/reminder-api/internal/handler/health"
	reminderHandler "github.com/shoplytic/reminder-api/internal/handler/reminder"
	"github.com/shoplytic/reminder-api/internal/middleware"
	"github.com/shoplytic/reminder-api/internal/repository/cache"
	"github.com/shoplytic/reminder-api/internal/repository/postgres"
	"github.com/shoplytic/reminder-api/internal/router"
	activityService "github.com/shoplytic/reminder-api/internal/service/activity"
	"github.com/shoplytic/reminder-api/internal/service/attribute"
	"github.com/shoplytic/reminder-api/internal/service/message"
	reminderService "github.com/shoplytic/reminder-api/internal/service/reminder"
	"github.com/shoplytic/reminder-api/pkg/auth"
	"github.com/shoplytic/reminder-api/pkg/logger"
	"github.com/shoplytic/reminder-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
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

	// Services
	m := metrics.New("reminder_api")
	evaluator := reminderService.NewEvaluator(productRepo, attribute.NewParser(), zl)
	engine := reminderService.NewEngine(evaluator)
	tracker := reminderService.NewHistoryTracker(historyRepo)
	activitySvc := activityService.NewService(activityRepo, zl)
	tokens := message.NewTokenProvider(storeInfo(cfg.Store), productRepo)
	dispatcher := message.NewEmailDispatcher(emailAccountRepo, tokens, email.NewSMTPService(), activitySvc, zl)
	scanner := reminderService.NewScanner(reminderRepo, customerRepo, historyRepo, engine, tracker, dispatcher, m, zl)
	reminderSvc := reminderService.NewService(reminderRepo, historyRepo, outboxRepo, zl)

	// HTTP layer
	jwtService := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	healthH := healthHandler.NewHandler(db)
	reminderH := reminderHandler.NewHandler(reminderSvc, scanner)

	r := router.NewRouter(authMiddleware, healthH, reminderH, router.RouterConfig{
		RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:     cfg.RateLimit.Burst,
		Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "reminder_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		zl.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal().Err(err).Msg("server forced to shutdown")
	}

	zl.Info().Msg("server exited properly")
}

func storeInfo(cfg config.StoreConfig) message.StoreInfo {
	return message.StoreInfo{
		Name:        cfg.Name,
		URL:         cfg.URL,
		Email:       cfg.Email,
		CompanyName: cfg.CompanyName,
		CompanyAddr: cfg.CompanyAddress,
		CompanyTel:  cfg.CompanyPhone,
		CompanyVat:  cfg.CompanyVat,
		TwitterURL:  cfg.TwitterURL,
		FacebookURL: cfg.FacebookURL,
		YouTubeURL:  cfg.YouTubeURL,
	}
}
