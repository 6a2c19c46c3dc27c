package enrich

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/domain"
)

type fakeMetadata struct {
	mu     sync.Mutex
	titles []string
	fail   bool
}

func (f *fakeMetadata) Lookup(ctx context.Context, title, year string, contentType domain.ContentType) *domain.TitleMetadata {
	f.mu.Lock()
	f.titles = append(f.titles, title)
	f.mu.Unlock()

	if f.fail {
		return domain.DefaultTitleMetadata(title, year, contentType)
	}

	return &domain.TitleMetadata{
		Title: title,
		Year:  year,
		Found: true,
	}
}

type fakeReferences struct{}

func (f *fakeReferences) Collect(ctx context.Context, title string, contentType domain.ContentType) []domain.Reference {
	return []domain.Reference{
		{Platform: "Reddit", Source: title + " thread", URL: "https://reddit.example/" + title},
	}
}

func entriesFixture(n int) []domain.Entry {
	entries := make([]domain.Entry, n)
	for i := range entries {
		entries[i] = domain.Entry{
			Rank: i + 1,
			Line: fmt.Sprintf("%d. Title%d (2019) [Korean] - reason", i+1, i+1),
		}
	}
	return entries
}

func TestEnrichPreservesOrder(t *testing.T) {
	svc := NewService(&fakeMetadata{}, &fakeReferences{}, zap.NewNop())

	entries := entriesFixture(10)
	enriched := svc.Enrich(context.Background(), entries, domain.ContentTypeMovie)

	if len(enriched) != 10 {
		t.Fatalf("expected 10 enriched entries, got %d", len(enriched))
	}
	for i, e := range enriched {
		if e.Entry.Rank != i+1 {
			t.Errorf("entry at %d has rank %d", i, e.Entry.Rank)
		}
		want := fmt.Sprintf("Title%d", i+1)
		if e.Metadata.Title != want {
			t.Errorf("metadata at %d resolved %q, want %q", i, e.Metadata.Title, want)
		}
	}
}

func TestEnrichExtractsTitleAndYear(t *testing.T) {
	meta := &fakeMetadata{}
	svc := NewService(meta, nil, zap.NewNop())

	entries := []domain.Entry{
		{Rank: 1, Line: "1. Parasite (2019) [Korean] - A masterful social satire"},
	}

	enriched := svc.Enrich(context.Background(), entries, domain.ContentTypeMovie)

	if enriched[0].Metadata.Title != "Parasite" {
		t.Errorf("title = %q", enriched[0].Metadata.Title)
	}
	if enriched[0].Metadata.Year != "2019" {
		t.Errorf("year = %q", enriched[0].Metadata.Year)
	}
	if enriched[0].References != nil {
		t.Errorf("expected no references without a collector")
	}
}

func TestEnrichDegradedEntriesStillRender(t *testing.T) {
	svc := NewService(&fakeMetadata{fail: true}, &fakeReferences{}, zap.NewNop())

	entries := entriesFixture(3)
	enriched := svc.Enrich(context.Background(), entries, domain.ContentTypeMovie)

	for _, e := range enriched {
		if e.Metadata == nil {
			t.Fatal("metadata must never be nil")
		}
		if e.Metadata.Found {
			t.Error("expected degraded metadata")
		}
		if e.Metadata.Rating != "N/A" {
			t.Errorf("rating = %q", e.Metadata.Rating)
		}
		if len(e.References) != 1 {
			t.Errorf("references should survive metadata degradation")
		}
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	svc := NewService(&fakeMetadata{}, &fakeReferences{}, zap.NewNop())

	if got := svc.Enrich(context.Background(), nil, domain.ContentTypeMovie); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
