package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/app"
	"github.com/orthodoxrecords/site/internal/app/diagnostics"
	"github.com/orthodoxrecords/site/internal/config"
	"github.com/orthodoxrecords/site/internal/domain/apiproxy"
	"github.com/orthodoxrecords/site/internal/domain/oauth"
	"github.com/orthodoxrecords/site/internal/infrastructure/github"
	"github.com/orthodoxrecords/site/internal/infrastructure/logging"
	"github.com/orthodoxrecords/site/internal/infrastructure/monitoring"
	"github.com/orthodoxrecords/site/internal/infrastructure/ratelimit"
	redisinfra "github.com/orthodoxrecords/site/internal/infrastructure/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Sync(logger)

	if err := monitoring.InitSentry(cfg.Monitoring, cfg.App); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	monitoring.Init()
	defer monitoring.Flush()

	var redisClient *redisinfra.Client
	if cfg.Redis.Addr != "" {
		client, err := redisinfra.Connect(ctx, cfg.Redis, 3*time.Second, logger)
		if err == nil {
			redisClient = client
			defer client.Close()
		} else {
			logger.Warn("redis unavailable, falling back to in-memory rate limits", zap.Error(err))
		}
	}

	var ipLimiter, tokenLimiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		if redisClient != nil {
			ipLimiter = ratelimit.NewRedisLimiter(redisClient.Native, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RedisPrefix+":ip")
			tokenLimiter = ratelimit.NewRedisLimiter(redisClient.Native, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RedisPrefix+":token")
		} else {
			ipLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
			tokenLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		}
	}

	githubClient := github.NewClient(cfg.GitHub, &http.Client{Timeout: cfg.GitHub.Timeout}, logger)
	oauthService := oauth.NewService(githubClient, cfg.AdminURL(), cfg.App.PublicURL, logger)

	logBuffer := diagnostics.NewLogBuffer(cfg.Diagnostics.MaxLogLines)
	router := app.NewRouter(app.RouterDeps{
		Config:       cfg,
		OAuthHandler: oauth.NewHandler(oauthService),
		APIHandler:   apiproxy.NewHandler(githubClient, logger),
		Diagnostics:  diagnostics.NewHandler(logBuffer),
		Logger:       logger,
		LogBuffer:    logBuffer,
		IPLimiter:    ipLimiter,
		TokenLimiter: tokenLimiter,
	})

	logger.Info("oauth proxy starting",
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("admin_url", cfg.AdminURL()),
		zap.Bool("redis", redisClient != nil),
	)
	server := &app.Server{Engine: router, Addr: ":" + cfg.App.Port, Logger: logger}
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
