// Package app assembles the service graph. All heavy-weight
// initialization (cache, database, AI clients) happens in Build so the
// server constructor stays focused on routing.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/config"
	"github.com/kapu/cinerec-go/internal/server"
	"github.com/kapu/cinerec-go/internal/service/ai"
	"github.com/kapu/cinerec-go/internal/service/cache"
	"github.com/kapu/cinerec-go/internal/service/enrich"
	"github.com/kapu/cinerec-go/internal/service/history"
	"github.com/kapu/cinerec-go/internal/service/metadata"
	"github.com/kapu/cinerec-go/internal/service/recommend"
	"github.com/kapu/cinerec-go/internal/service/reference"
	"github.com/kapu/cinerec-go/pkg/errors"
)

// Container bundles assembled services and owns their shutdown order.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Server *server.Server

	closers []func()
}

// Close releases infrastructure connections in reverse build order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles the full dependency graph. Redis and Postgres are
// optional: when unconfigured the corresponding services stay nil and
// their callers degrade.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache (optional)
	var cacheSvc *cache.CacheService
	if cfg.RedisEnabled() {
		cacheSvc, err = cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, errors.NewServiceError("failed to create cache service", "cache", "init", err)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
	} else {
		logger.Info("Redis not configured, enrichment caching disabled")
	}

	// History persistence (optional)
	var historyRepo *history.Repository
	if cfg.PostgresEnabled() {
		postgresSvc, pgErr := history.NewPostgresService(history.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, errors.NewServiceError("failed to create postgres service", "history", "init", pgErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})

		historyRepo = history.NewRepository(postgresSvc, logger)
		if err = historyRepo.Migrate(ctx); err != nil {
			return nil, errors.NewServiceError("failed to migrate history schema", "history", "migrate", err)
		}
	} else {
		logger.Info("Postgres not configured, search history disabled")
	}

	// AI stack
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.Model,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, errors.NewServiceError("failed to create model manager", "ai", "init", err)
	}

	// Enrichment stack
	metadataSvc := metadata.NewService(cfg.OMDB.APIKey, cacheSvc, logger)

	sources := []reference.Source{
		reference.NewRedditSource(logger),
		reference.NewQuoraSource(logger),
	}
	if cfg.YouTube.APIKey != "" {
		ytSource, ytErr := buildYouTubeSource(cfg, logger)
		if ytErr != nil {
			logger.Warn("Failed to initialize YouTube source (optional feature)", zap.Error(ytErr))
		} else {
			sources = append(sources, ytSource)
		}
	}

	referenceSvc := reference.NewService(sources, cacheSvc, logger)
	enrichSvc := enrich.NewService(metadataSvc, referenceSvc, logger)

	// Core pipeline
	recommendSvc := recommend.NewService(modelManager, recommend.NewSessionStore(), logger)

	srv := server.New(server.Options{
		Addr:         cfg.Server.Addr,
		Recommender:  recommendSvc,
		Enricher:     enrichSvc,
		HistoryRepo:  historyRepo,
		ModelManager: modelManager,
		CacheService: cacheSvc,
		Logger:       logger,
	})

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  srv,
		closers: closers,
	}, nil
}

// buildYouTubeSource prefers the OAuth client when enabled and
// authorized, falling back to the API key.
func buildYouTubeSource(cfg *config.Config, logger *zap.Logger) (*reference.YouTubeSource, error) {
	if cfg.YouTube.EnableOAuth {
		oauthSvc, err := reference.NewYouTubeOAuthService(logger)
		if err == nil && oauthSvc.IsAuthorized() {
			logger.Info("YouTube source using OAuth client")
			return reference.NewYouTubeSourceFromService(oauthSvc.GetService(), logger), nil
		}
		logger.Warn("YouTube OAuth unavailable, falling back to API key", zap.Error(err))
	}

	return reference.NewYouTubeSource(cfg.YouTube.APIKey, logger)
}
