package bootstrap

import (
	"context"
	"time"

	"stockpulse/internal/adapters/ai"
	"stockpulse/internal/adapters/config"
	"stockpulse/internal/adapters/errors/noop"
	"stockpulse/internal/adapters/errors/sentry"
	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/adapters/news"
	redisclient "stockpulse/internal/adapters/redis"
	"stockpulse/internal/agents"
	"stockpulse/internal/api"
	"stockpulse/internal/api/health"
	"stockpulse/internal/metrics"
	"stockpulse/internal/services/analysis"
	"stockpulse/internal/tools"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
	"stockpulse/pkg/templates"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure
	Redis *redisclient.Client // nil when the memory cache backend is used

	// External adapters
	Provider   ai.ChatProvider
	MarketData *marketdata.Client
	News       *news.Client

	// Pipeline
	Tools      *tools.Registry
	Supervisor *agents.Supervisor
	Analysis   *analysis.Service

	// Application layer
	Server *api.Server
}

// New wires the full application from configuration.
func New(cfg *config.Config) (*Container, error) {
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	log := logger.Get()

	tracker := newErrorTracker(cfg, log)
	logger.SetErrorTracker(tracker)

	metrics.Init()

	c := &Container{
		Config:       cfg,
		Log:          log,
		ErrorTracker: tracker,
	}

	if cfg.Cache.Backend == "redis" {
		redisClient, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		c.Redis = redisClient
		log.Infof("Redis connected at %s", cfg.Redis.Addr())
	}

	c.MarketData = marketdata.NewClient(cfg.MarketData)
	c.News = news.NewClient(cfg.News)

	c.Tools = tools.NewCatalog(tools.Deps{
		Market: c.MarketData,
		News:   c.News,
	}, cfg.Pipeline.ToolTimeout)

	provider, err := ai.NewChatProvider(cfg.AI)
	if err != nil {
		return nil, errors.Wrap(err, "init ai provider")
	}
	c.Provider = provider
	log.Infof("AI provider ready: %s (model %s)", cfg.AI.DefaultProvider, cfg.AI.Model)

	c.Supervisor = agents.BuildSupervisor(cfg, provider, c.Tools, templates.Get())

	var cache analysis.Cache
	if c.Redis != nil {
		cache = analysis.NewRedisCache(c.Redis, cfg.Cache.TTL)
	} else {
		cache = analysis.NewMemoryCache(cfg.Cache.TTL)
	}
	c.Analysis = analysis.NewService(c.Supervisor, cache)

	handlers := api.NewHandlers(c.Analysis, c.MarketData, c.News)

	var redisChecker health.Checker
	if c.Redis != nil {
		redisChecker = c.Redis
	}
	healthHandler := health.New(log, redisChecker, cfg.App.Name, cfg.Server.Version)

	c.Server = api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.Server.Version,
	}, handlers, healthHandler, log)

	return c, nil
}

// Close releases infrastructure resources and flushes telemetry.
// Safe to call after a partial New failure via defer in main.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warnw("redis close failed", "error", err)
		}
	}
	if c.ErrorTracker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.ErrorTracker.Flush(ctx)
	}
	logger.Sync()
}

func newErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
