// Package reference collects discussion links for a recommended title
// from Reddit, Quora and YouTube. Sources run concurrently and fail
// independently; an empty list is a valid outcome.
package reference

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/service/cache"
)

// Source is one reference provider.
type Source interface {
	Platform() string
	Fetch(ctx context.Context, title string, contentType domain.ContentType) ([]domain.Reference, error)
}

type Service struct {
	sources []Source
	cache   *cache.CacheService
	logger  *zap.Logger
}

func NewService(sources []Source, cacheService *cache.CacheService, logger *zap.Logger) *Service {
	return &Service{
		sources: sources,
		cache:   cacheService,
		logger:  logger,
	}
}

// Collect gathers references for one title across all sources. Source
// failures are logged and skipped; ordering follows source registration
// so results are stable across runs.
func (s *Service) Collect(ctx context.Context, title string, contentType domain.ContentType) []domain.Reference {
	if len(s.sources) == 0 {
		return nil
	}

	key := cache.ReferencesKey(title, contentType)
	if cached, ok := s.cache.GetReferences(ctx, key); ok {
		s.logger.Debug("Reference cache hit", zap.String("title", title))
		return cached
	}

	results := make([][]domain.Reference, len(s.sources))

	p := pool.New().WithMaxGoroutines(len(s.sources))
	for i, source := range s.sources {
		i, source := i, source
		p.Go(func() {
			refs, err := source.Fetch(ctx, title, contentType)
			if err != nil {
				s.logger.Warn("Reference source failed",
					zap.String("platform", source.Platform()),
					zap.String("title", title),
					zap.Error(err),
				)
				return
			}
			results[i] = refs
		})
	}
	p.Wait()

	seen := make(map[string]bool)
	merged := make([]domain.Reference, 0)
	for _, refs := range results {
		for _, ref := range refs {
			if ref.URL == "" || seen[ref.URL] {
				continue
			}
			seen[ref.URL] = true
			merged = append(merged, ref)
		}
	}

	if len(merged) > 0 {
		s.cache.SetReferences(ctx, key, merged)
	}

	s.logger.Debug("References collected",
		zap.String("title", title),
		zap.Int("count", len(merged)),
	)

	return merged
}
