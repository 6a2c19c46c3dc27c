// Package metadata resolves recommendation titles against the OMDB API.
// Lookups degrade instead of failing: any error yields a placeholder
// record so the recommendation list still renders.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/constants"
	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/service/cache"
	"github.com/kapu/cinerec-go/pkg/errors"
)

// omdbResponse mirrors the subset of OMDB fields the enrichment uses.
type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	IMDBRating string `json:"imdbRating"`
	Poster     string `json:"Poster"`
	Genre      string `json:"Genre"`
	Runtime    string `json:"Runtime"`
	Type       string `json:"Type"`
}

type Service struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	cache      *cache.CacheService
	logger     *zap.Logger
}

func NewService(apiKey string, cacheService *cache.CacheService, logger *zap.Logger) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: constants.APIConfig.OMDBTimeout},
		apiKey:     apiKey,
		baseURL:    constants.APIConfig.OMDBBaseURL,
		cache:      cacheService,
		logger:     logger,
	}
}

// SetBaseURL points the client at a different endpoint.
func (s *Service) SetBaseURL(baseURL string) {
	s.baseURL = baseURL
}

// Lookup resolves one title. It always returns a usable record: cache hit,
// fresh OMDB data, or the degraded placeholder.
func (s *Service) Lookup(ctx context.Context, title, year string, contentType domain.ContentType) *domain.TitleMetadata {
	key := cache.TitleMetadataKey(title, year, contentType)
	if cached, ok := s.cache.GetTitleMetadata(ctx, key); ok {
		s.logger.Debug("Metadata cache hit", zap.String("title", title))
		return cached
	}

	meta, err := s.fetch(ctx, title, year, contentType)
	if err != nil {
		s.logger.Warn("Metadata lookup degraded",
			zap.String("title", title),
			zap.String("year", year),
			zap.Error(err),
		)
		return domain.DefaultTitleMetadata(title, year, contentType)
	}

	s.cache.SetTitleMetadata(ctx, key, meta)
	return meta
}

func (s *Service) fetch(ctx context.Context, title, year string, contentType domain.ContentType) (*domain.TitleMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("empty title")
	}

	query := title
	if runes := []rune(query); len(runes) > constants.APIConfig.MaxSearchLength {
		query = string(runes[:constants.APIConfig.MaxSearchLength])
	}

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("t", query)
	params.Set("type", contentType.OMDBType())
	params.Set("plot", "short")
	if year != "" {
		params.Set("y", year)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build OMDB request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OMDB request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("OMDB request rejected", resp.StatusCode, map[string]any{
			"title": query,
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OMDB response: %w", err)
	}

	var payload omdbResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode OMDB response: %w", err)
	}

	if payload.Response != "True" {
		return nil, fmt.Errorf("OMDB miss: %s", payload.Error)
	}

	meta := &domain.TitleMetadata{
		Title:   orDefault(payload.Title, title),
		Year:    orDefault(payload.Year, year),
		Rating:  orDefault(payload.IMDBRating, "N/A"),
		Poster:  posterOrEmpty(payload.Poster),
		Genre:   orDefault(payload.Genre, "N/A"),
		Runtime: orDefault(payload.Runtime, "N/A"),
		Type:    orDefault(payload.Type, contentType.OMDBType()),
		Found:   true,
	}

	s.logger.Debug("Metadata resolved",
		zap.String("title", meta.Title),
		zap.String("year", meta.Year),
		zap.String("rating", meta.Rating),
	)

	return meta, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// posterOrEmpty maps OMDB's "N/A" poster marker to an empty string so the
// front end can test for presence.
func posterOrEmpty(poster string) string {
	if poster == "" || poster == "N/A" {
		return ""
	}
	return poster
}
