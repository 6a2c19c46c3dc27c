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

const quoraSearchURL = "https://www.quora.com/search"

// QuoraSource scrapes question links from Quora search results. Quora
// renders much of its page client-side, so sparse results are normal.
type QuoraSource struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewQuoraSource(logger *zap.Logger) *QuoraSource {
	return &QuoraSource{
		httpClient: &http.Client{Timeout: constants.APIConfig.ScraperTimeout},
		baseURL:    quoraSearchURL,
		logger:     logger,
	}
}

func (q *QuoraSource) Platform() string {
	return "Quora"
}

// SetBaseURL points the scraper at a different endpoint.
func (q *QuoraSource) SetBaseURL(baseURL string) {
	q.baseURL = baseURL
}

func (q *QuoraSource) Fetch(ctx context.Context, title string, contentType domain.ContentType) ([]domain.Reference, error) {
	query := fmt.Sprintf("%s %s", title, contentType.Single())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CineRecBot/1.0)")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quora request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quora returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("quora HTML parse failed: %w", err)
	}

	refs := make([]domain.Reference, 0, constants.APIConfig.MaxRefsPerSource)
	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !isQuoraQuestionLink(href) {
			return true
		}

		text := strings.TrimSpace(sel.Text())
		if text == "" {
			text = questionFromSlug(href)
		}
		if text == "" {
			return true
		}

		refs = append(refs, domain.Reference{
			Platform: q.Platform(),
			Source:   text,
			URL:      absoluteQuoraURL(href),
		})
		return len(refs) < constants.APIConfig.MaxRefsPerSource
	})

	q.logger.Debug("Quora references fetched",
		zap.String("title", title),
		zap.Int("count", len(refs)),
	)

	return refs, nil
}

// isQuoraQuestionLink filters for question slugs like
// "/Is-Parasite-worth-watching", skipping profile, topic and nav links.
func isQuoraQuestionLink(href string) bool {
	if href == "" {
		return false
	}

	path := strings.TrimPrefix(href, "https://www.quora.com")
	if !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "/profile/") || strings.HasPrefix(path, "/topic/") || strings.HasPrefix(path, "/search") {
		return false
	}

	return strings.Contains(path, "-")
}

func questionFromSlug(href string) string {
	path := strings.TrimPrefix(href, "https://www.quora.com")
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexAny(path, "?#"); idx != -1 {
		path = path[:idx]
	}
	return strings.ReplaceAll(path, "-", " ")
}

func absoluteQuoraURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.quora.com" + href
}
