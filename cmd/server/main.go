package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/config"
	"github.com/avelns/shortlinkd/internal/app/model"
	apprepository "github.com/avelns/shortlinkd/internal/app/repository"
	appserver "github.com/avelns/shortlinkd/internal/app/server"
	appservice "github.com/avelns/shortlinkd/internal/app/service"
	"github.com/avelns/shortlinkd/internal/captcha"
	"github.com/avelns/shortlinkd/internal/infra/logger"
	infraNATS "github.com/avelns/shortlinkd/internal/infra/nats"
	infraPostgres "github.com/avelns/shortlinkd/internal/infra/postgres"
	infraPrometheus "github.com/avelns/shortlinkd/internal/infra/prometheus"
	infraRedis "github.com/avelns/shortlinkd/internal/infra/redis"
	"github.com/avelns/shortlinkd/internal/notify"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Bool("telegram_configured", cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != ""),
		zap.Bool("turnstile_configured", cfg.Turnstile.SecretKey != ""),
	)

	if cfg.Admin.Password == "" {
		log.Warn("ADMIN_PASSWORD is empty; the admin API will reject every request")
	}

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &model.Link{}, &model.Settings{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	linkRepo := apprepository.NewCachedLinkRepository(
		apprepository.NewLinkRepository(gormDB), redisClient, log)
	settingsRepo := apprepository.NewSettingsRepository(gormDB)

	// Guarantee the settings singleton up front so reads never need a
	// fallback when the row is missing.
	if err := settingsRepo.EnsureDefault(ctx); err != nil {
		log.Fatal("Failed to initialize settings row", zap.Error(err))
	}

	notifier := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	turnstile := captcha.NewTurnstile(cfg.Turnstile.SecretKey)

	visitPublisher := appservice.NewVisitPublisher(js)
	visitConsumer := appservice.NewVisitConsumer(js, log, linkRepo)
	if err := visitConsumer.Start(); err != nil {
		log.Fatal("Failed to start visit consumer", zap.Error(err))
	}

	linkService := appservice.NewLinkService(linkRepo, settingsRepo, visitPublisher, notifier, log)
	settingsService := appservice.NewSettingsService(settingsRepo, notifier, log)

	server := appserver.New(appserver.Dependencies{
		Logger:           log,
		Postgres:         pool,
		Redis:            redisClient,
		NATS:             natsConn,
		JetStream:        js,
		LinkService:      linkService,
		SettingsService:  settingsService,
		Captcha:          turnstile,
		AdminPassword:    cfg.Admin.Password,
		RootRedirect:     cfg.Server.RootRedirect,
		FallbackURL:      cfg.Server.FallbackURL,
		TurnstileSiteKey: cfg.Turnstile.SiteKey,
	})

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}

	log.Info("Starting HTTP server", zap.Int("port", port))
	if err := server.Listen(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
