package domain

import (
	"fmt"
	"strings"
	"testing"
)

func setOf(n int) *RecommendationSet {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Rank: i + 1, Line: fmt.Sprintf("%d. x", i+1)}
	}
	return NewRecommendationSet(entries, "fp")
}

func TestNewSetInitialWindow(t *testing.T) {
	s := setOf(16)
	if s.VisibleCount() != PageSize {
		t.Errorf("visible = %d", s.VisibleCount())
	}
	if !s.HasMore() {
		t.Error("expected more entries")
	}
	if len(s.Visible()) != PageSize {
		t.Errorf("Visible() = %d entries", len(s.Visible()))
	}
}

func TestNewSetSmallerThanPage(t *testing.T) {
	s := setOf(5)
	if s.VisibleCount() != 5 {
		t.Errorf("visible = %d", s.VisibleCount())
	}
	if s.HasMore() {
		t.Error("no more entries should remain")
	}
}

func TestShowMoreClampsToSize(t *testing.T) {
	s := setOf(11)

	s.ShowMore()
	if s.VisibleCount() != 11 {
		t.Errorf("visible = %d", s.VisibleCount())
	}

	// No-op at the end.
	s.ShowMore()
	if s.VisibleCount() != 11 {
		t.Errorf("visible after second ShowMore = %d", s.VisibleCount())
	}
}

func TestShowLessResetsToFirstPage(t *testing.T) {
	s := setOf(16)
	s.ShowMore()
	s.ShowLess()
	if s.VisibleCount() != PageSize {
		t.Errorf("visible = %d", s.VisibleCount())
	}
}

func TestNilSetIsSafe(t *testing.T) {
	var s *RecommendationSet
	if s.Size() != 0 || s.VisibleCount() != 0 || s.HasMore() {
		t.Error("nil set accessors must be zero-valued")
	}
	s.ShowMore()
	s.ShowLess()
	if s.Visible() != nil {
		t.Error("nil set Visible must be nil")
	}
}

func TestRequestFingerprintIgnoresTitleOrder(t *testing.T) {
	a, err := NewRecommendationRequest([]string{"Parasite", "Oldboy"}, true, ContentTypeMovie)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRecommendationRequest([]string{"Oldboy", "Parasite"}, true, ContentTypeMovie)
	if err != nil {
		t.Fatal(err)
	}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint must not depend on title order")
	}

	c, _ := NewRecommendationRequest([]string{"Oldboy", "Parasite"}, false, ContentTypeMovie)
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint must reflect the underrated flag")
	}
}

func TestNewRequestValidation(t *testing.T) {
	if _, err := NewRecommendationRequest([]string{" ", ""}, false, ContentTypeMovie); err == nil {
		t.Error("blank titles must be rejected")
	}
	if _, err := NewRecommendationRequest([]string{"a", "b", "c", "d"}, false, ContentTypeMovie); err == nil {
		t.Error("too many titles must be rejected")
	}
	if _, err := NewRecommendationRequest([]string{"a"}, false, ContentType("anime")); err == nil {
		t.Error("unknown content type must be rejected")
	}
	if _, err := NewRecommendationRequest([]string{strings.Repeat("a", 201)}, false, ContentTypeMovie); err == nil {
		t.Error("overlong title must be rejected")
	}

	req, err := NewRecommendationRequest([]string{"  Parasite  "}, false, ContentTypeSeries)
	if err != nil {
		t.Fatal(err)
	}
	if req.Titles[0] != "Parasite" {
		t.Errorf("titles must be trimmed: %q", req.Titles[0])
	}
}
