package domain

import "github.com/kapu/cinerec-go/internal/util"

const (
	// MaxEntries is the hard cap on entries per recommendation set.
	MaxEntries = 16
	// PageSize is the visible-prefix step for pagination.
	PageSize = 8
)

// Entry is one structured recommendation parsed from a single line of
// generated text. Rank is 1-based and dense after filtering.
type Entry struct {
	Rank int    `json:"rank"`
	Line string `json:"line"`
}

// RecommendationSet is the ordered result of one accepted request. It is
// replaced wholesale on a new request; the only in-place mutation is the
// visible-prefix cursor.
type RecommendationSet struct {
	Entries     []Entry `json:"entries"`
	Fingerprint string  `json:"fingerprint"`

	visible int
}

func NewRecommendationSet(entries []Entry, fingerprint string) *RecommendationSet {
	s := &RecommendationSet{
		Entries:     entries,
		Fingerprint: fingerprint,
	}
	s.visible = util.Min(PageSize, len(entries))
	return s
}

// Size returns the total number of entries.
func (s *RecommendationSet) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// VisibleCount returns the current visible-prefix length.
func (s *RecommendationSet) VisibleCount() int {
	if s == nil {
		return 0
	}
	return s.visible
}

// Visible returns the currently visible prefix of the set.
func (s *RecommendationSet) Visible() []Entry {
	if s == nil {
		return nil
	}
	return s.Entries[:s.visible]
}

// HasMore reports whether entries remain beyond the visible prefix.
func (s *RecommendationSet) HasMore() bool {
	if s == nil {
		return false
	}
	return s.visible < len(s.Entries)
}

// ShowMore advances the cursor by one page, clamped to the set size.
// At the end of the set it is a no-op.
func (s *RecommendationSet) ShowMore() {
	if s == nil {
		return
	}
	s.visible = util.Min(len(s.Entries), s.visible+PageSize)
}

// ShowLess resets the cursor to the first page.
func (s *RecommendationSet) ShowLess() {
	if s == nil {
		return
	}
	s.visible = util.Min(PageSize, len(s.Entries))
}
