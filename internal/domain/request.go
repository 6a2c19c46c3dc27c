package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kapu/cinerec-go/internal/constants"
)

type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

func (c ContentType) String() string {
	return string(c)
}

func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeMovie, ContentTypeSeries:
		return true
	default:
		return false
	}
}

// Display returns the plural display form used in prompts ("movies" / "TV series").
func (c ContentType) Display() string {
	if c == ContentTypeSeries {
		return "TV series"
	}
	return "movies"
}

// Single returns the singular display form.
func (c ContentType) Single() string {
	if c == ContentTypeSeries {
		return "TV series"
	}
	return "movie"
}

// Sibling returns the display form of the excluded content type.
func (c ContentType) Sibling() string {
	if c == ContentTypeSeries {
		return "movies"
	}
	return "TV series"
}

// OMDBType returns the type tag the metadata service expects.
func (c ContentType) OMDBType() string {
	if c == ContentTypeSeries {
		return "series"
	}
	return "movie"
}

// RecommendationRequest carries the user's liked titles and query options.
type RecommendationRequest struct {
	Titles      []string    `json:"titles"`
	Underrated  bool        `json:"underrated"`
	ContentType ContentType `json:"content_type"`
}

const (
	MinRequestTitles = 1
	MaxRequestTitles = 3
)

// NewRecommendationRequest trims and validates the liked-title list.
// Empty strings are dropped before the length check.
func NewRecommendationRequest(titles []string, underrated bool, contentType ContentType) (*RecommendationRequest, error) {
	cleaned := make([]string, 0, len(titles))
	for _, t := range titles {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		if len([]rune(trimmed)) > constants.AIInputLimits.MaxTitleLength {
			return nil, fmt.Errorf("title exceeds %d characters", constants.AIInputLimits.MaxTitleLength)
		}
		cleaned = append(cleaned, trimmed)
	}

	if len(cleaned) < MinRequestTitles {
		return nil, fmt.Errorf("at least one title is required")
	}
	if len(cleaned) > MaxRequestTitles {
		return nil, fmt.Errorf("at most %d titles are allowed, got %d", MaxRequestTitles, len(cleaned))
	}
	if !contentType.IsValid() {
		return nil, fmt.Errorf("invalid content type: %q", contentType)
	}

	return &RecommendationRequest{
		Titles:      cleaned,
		Underrated:  underrated,
		ContentType: contentType,
	}, nil
}

// Fingerprint identifies a request by its parameters so a session can tell
// whether the inputs changed since the last accepted search. Title order is
// not significant.
func (r *RecommendationRequest) Fingerprint() string {
	sorted := make([]string, len(r.Titles))
	copy(sorted, r.Titles)
	sort.Strings(sorted)

	return fmt.Sprintf("%s|%t|%s", strings.Join(sorted, ","), r.Underrated, r.ContentType)
}
