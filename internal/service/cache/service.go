// Package cache wraps Redis for enrichment lookups. The cache is optional:
// a nil *CacheService disables caching without changing caller logic.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/constants"
	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/util"
	"github.com/kapu/cinerec-go/pkg/errors"
)

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) error {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // Key doesn't exist - not an error
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

// TitleMetadataKey builds the cache key for one metadata record.
func TitleMetadataKey(title, year string, contentType domain.ContentType) string {
	return fmt.Sprintf("cinerec:meta:%s:%s:%s", contentType, normalizeKeyPart(title), year)
}

// ReferencesKey builds the cache key for one title's reference list.
func ReferencesKey(title string, contentType domain.ContentType) string {
	return fmt.Sprintf("cinerec:refs:%s:%s", contentType, normalizeKeyPart(title))
}

// GetTitleMetadata returns a cached metadata record, or (nil, false) on
// miss. A nil receiver always misses.
func (c *CacheService) GetTitleMetadata(ctx context.Context, key string) (*domain.TitleMetadata, bool) {
	if c == nil {
		return nil, false
	}

	var meta *domain.TitleMetadata
	if err := c.Get(ctx, key, &meta); err != nil || meta == nil {
		return nil, false
	}
	return meta, true
}

// SetTitleMetadata stores a metadata record. Failures are logged, not
// returned: a dead cache must not fail the lookup path.
func (c *CacheService) SetTitleMetadata(ctx context.Context, key string, meta *domain.TitleMetadata) {
	if c == nil || meta == nil {
		return
	}

	if err := c.Set(ctx, key, meta, constants.CacheTTL.TitleMetadata); err != nil {
		c.logger.Error("Failed to cache title metadata", zap.String("key", key), zap.Error(err))
	}
}

// GetReferences returns a cached reference list, or (nil, false) on miss.
func (c *CacheService) GetReferences(ctx context.Context, key string) ([]domain.Reference, bool) {
	if c == nil {
		return nil, false
	}

	var refs []domain.Reference
	if err := c.Get(ctx, key, &refs); err != nil || refs == nil {
		return nil, false
	}
	return refs, true
}

// SetReferences stores a reference list.
func (c *CacheService) SetReferences(ctx context.Context, key string, refs []domain.Reference) {
	if c == nil {
		return
	}

	if err := c.Set(ctx, key, refs, constants.CacheTTL.References); err != nil {
		c.logger.Error("Failed to cache references", zap.String("key", key), zap.Error(err))
	}
}

func (c *CacheService) Close() error {
	if c == nil {
		return nil
	}
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	if c == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}

func normalizeKeyPart(s string) string {
	return strings.ReplaceAll(util.Normalize(s), " ", "_")
}
