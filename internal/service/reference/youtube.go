package reference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/kapu/cinerec-go/internal/constants"
	"github.com/kapu/cinerec-go/internal/domain"
)

const (
	dailyQuotaLimit   = 10000
	searchQuotaCost   = 100 // search.list cost
	quotaSafetyMargin = 2000
)

// QuotaExceededError is returned when a search would cross the daily
// quota safety margin.
type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("youtube quota exceeded: used %d/%d, requested %d, resets %s",
		e.Used, e.Limit, e.Requested, e.ResetTime.Format(time.RFC3339))
}

// YouTubeSource finds review and discussion videos through the YouTube
// Data API. Searches cost 100 quota units each, so a guard tracks daily
// usage and refuses to burn through the reserve.
type YouTubeSource struct {
	service    *youtube.Service
	logger     *zap.Logger
	quotaUsed  int
	quotaMu    sync.Mutex
	quotaReset time.Time
}

func NewYouTubeSource(apiKey string, logger *zap.Logger) (*YouTubeSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	service, err := youtube.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	ys := &YouTubeSource{
		service:    service,
		logger:     logger,
		quotaReset: getNextQuotaReset(),
	}

	logger.Info("YouTube reference source initialized",
		zap.Time("quotaReset", ys.quotaReset))

	return ys, nil
}

// NewYouTubeSourceFromService wraps an already constructed client, used
// with the OAuth flow.
func NewYouTubeSourceFromService(service *youtube.Service, logger *zap.Logger) *YouTubeSource {
	return &YouTubeSource{
		service:    service,
		logger:     logger,
		quotaReset: getNextQuotaReset(),
	}
}

func (ys *YouTubeSource) Platform() string {
	return "YouTube"
}

// Quota resets daily at midnight Pacific.
func getNextQuotaReset() time.Time {
	pt, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Now().In(pt)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, pt)
}

func (ys *YouTubeSource) checkQuota(cost int) error {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	now := time.Now()
	if now.After(ys.quotaReset) {
		ys.quotaUsed = 0
		ys.quotaReset = getNextQuotaReset()
		ys.logger.Info("YouTube API quota auto-reset",
			zap.Time("nextReset", ys.quotaReset))
	}

	if ys.quotaUsed+cost > (dailyQuotaLimit - quotaSafetyMargin) {
		return &QuotaExceededError{
			Used:      ys.quotaUsed,
			Limit:     dailyQuotaLimit,
			Requested: cost,
			ResetTime: ys.quotaReset,
		}
	}

	return nil
}

func (ys *YouTubeSource) consumeQuota(cost int) {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	ys.quotaUsed += cost
	remaining := dailyQuotaLimit - ys.quotaUsed

	ys.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", ys.quotaUsed),
		zap.Int("remaining", remaining),
	)

	if remaining < quotaSafetyMargin {
		ys.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("resetTime", ys.quotaReset))
	}
}

func (ys *YouTubeSource) Fetch(ctx context.Context, title string, contentType domain.ContentType) ([]domain.Reference, error) {
	if err := ys.checkQuota(searchQuotaCost); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s %s review", title, contentType.Single())

	call := ys.service.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(query).
		Type("video").
		MaxResults(int64(constants.APIConfig.MaxRefsPerSource))

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	ys.consumeQuota(searchQuotaCost)

	refs := make([]domain.Reference, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}

		refs = append(refs, domain.Reference{
			Platform: ys.Platform(),
			Source:   item.Snippet.Title,
			URL:      fmt.Sprintf("https://www.youtube.com/watch?v=%s", item.Id.VideoId),
		})
	}

	ys.logger.Debug("YouTube references fetched",
		zap.String("title", title),
		zap.Int("count", len(refs)),
	)

	return refs, nil
}
