package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/lnky-dev/lnky/config"
	appmodel "github.com/lnky-dev/lnky/internal/app/model"
	apprepository "github.com/lnky-dev/lnky/internal/app/repository"
	appserver "github.com/lnky-dev/lnky/internal/app/server"
	appservice "github.com/lnky-dev/lnky/internal/app/service"
	httpUtil "github.com/lnky-dev/lnky/internal/http/util"
	"github.com/lnky-dev/lnky/internal/infra/logger"
	infraNATS "github.com/lnky-dev/lnky/internal/infra/nats"
	infraPostgres "github.com/lnky-dev/lnky/internal/infra/postgres"
	infraPrometheus "github.com/lnky-dev/lnky/internal/infra/prometheus"
	infraRedis "github.com/lnky-dev/lnky/internal/infra/redis"
	"go.uber.org/zap"
)

const defaultSessionTTL = 24 * time.Hour

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
		zap.String("postgres_user", cfg.Postgres.User),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
	)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	sessionTTL := defaultSessionTTL
	if cfg.Auth.SessionTTL != "" {
		parsed, err := time.ParseDuration(cfg.Auth.SessionTTL)
		if err != nil {
			log.Fatal("Invalid SESSION_TTL", zap.Error(err))
		}
		sessionTTL = parsed
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

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.User{},
		&appmodel.Link{},
		&appmodel.ViewEvent{},
	); err != nil {
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

	userRepo := apprepository.NewUserRepository(gormDB)
	linkRepo := apprepository.NewLinkRepository(gormDB)
	viewRepo := apprepository.NewViewEventRepository(gormDB, pool)

	usernames, err := userRepo.ListUsernames(ctx)
	if err != nil {
		log.Fatal("Failed to seed username index", zap.Error(err))
	}
	usernameIndex := appservice.NewUsernameIndex(usernames)
	log.Info("Username index seeded", zap.Int("usernames", len(usernames)))

	userService := appservice.NewUserService(userRepo, usernameIndex)
	linkService := appservice.NewLinkService(linkRepo)
	viewPublisher := appservice.NewViewPublisher(js)

	viewConsumer := appservice.NewViewConsumer(js, log, viewRepo)
	if err := viewConsumer.Start(); err != nil {
		log.Fatal("Failed to start view consumer", zap.Error(err))
	}

	sessions := httpUtil.NewSessionSigner([]byte(cfg.Auth.JWTSecret), sessionTTL)

	server := appserver.New(appserver.Dependencies{
		Logger:        log,
		Redis:         redisClient,
		LinkService:   linkService,
		UserService:   userService,
		ViewPublisher: viewPublisher,
		Sessions:      sessions,
		SecureCookies: !isDev,
	})

	if err := server.Listen(":8080"); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
