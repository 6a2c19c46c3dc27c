package reference

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/constants"
	"github.com/kapu/cinerec-go/internal/domain"
)

const redditSearchURL = "https://old.reddit.com/search"

// RedditSource scrapes discussion threads from Reddit search results.
type RedditSource struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewRedditSource(logger *zap.Logger) *RedditSource {
	return &RedditSource{
		httpClient: &http.Client{Timeout: constants.APIConfig.ScraperTimeout},
		baseURL:    redditSearchURL,
		logger:     logger,
	}
}

func (r *RedditSource) Platform() string {
	return "Reddit"
}

// SetBaseURL points the scraper at a different endpoint.
func (r *RedditSource) SetBaseURL(baseURL string) {
	r.baseURL = baseURL
}

func (r *RedditSource) Fetch(ctx context.Context, title string, contentType domain.ContentType) ([]domain.Reference, error) {
	query := fmt.Sprintf("%s %s discussion", title, contentType.Single())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CineRecBot/1.0)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reddit HTML parse failed: %w", err)
	}

	refs := make([]domain.Reference, 0, constants.APIConfig.MaxRefsPerSource)
	doc.Find("a.search-title").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, exists := sel.Attr("href")
		if !exists {
			return true
		}

		text := strings.TrimSpace(sel.Text())
		if text == "" || !strings.Contains(href, "reddit.com") {
			return true
		}

		refs = append(refs, domain.Reference{
			Platform: r.Platform(),
			Source:   text,
			URL:      href,
		})
		return len(refs) < constants.APIConfig.MaxRefsPerSource
	})

	r.logger.Debug("Reddit references fetched",
		zap.String("title", title),
		zap.Int("count", len(refs)),
	)

	return refs, nil
}
