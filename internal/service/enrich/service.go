// Package enrich resolves metadata and references for a parsed
// recommendation set. Entries are processed concurrently and each entry
// degrades independently, so one slow lookup never blanks the list.
package enrich

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/constants"
	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/parser"
)

// MetadataLookup resolves one title against the metadata provider.
type MetadataLookup interface {
	Lookup(ctx context.Context, title, year string, contentType domain.ContentType) *domain.TitleMetadata
}

// ReferenceCollector gathers discussion links for one title.
type ReferenceCollector interface {
	Collect(ctx context.Context, title string, contentType domain.ContentType) []domain.Reference
}

type Service struct {
	metadata   MetadataLookup
	references ReferenceCollector
	logger     *zap.Logger
}

func NewService(metadata MetadataLookup, references ReferenceCollector, logger *zap.Logger) *Service {
	return &Service{
		metadata:   metadata,
		references: references,
		logger:     logger,
	}
}

// Enrich resolves every entry in order. The result slice is positionally
// aligned with the input regardless of which lookup finishes first.
func (s *Service) Enrich(ctx context.Context, entries []domain.Entry, contentType domain.ContentType) []domain.EnrichedEntry {
	if len(entries) == 0 {
		return nil
	}

	results := make([]domain.EnrichedEntry, len(entries))

	p := pool.New().WithMaxGoroutines(constants.EnrichConfig.Concurrency)
	for i, entry := range entries {
		i, entry := i, entry
		p.Go(func() {
			results[i] = s.enrichOne(ctx, entry, contentType)
		})
	}
	p.Wait()

	return results
}

// EnrichOne resolves a single entry with the standard per-entry deadline.
func (s *Service) EnrichOne(ctx context.Context, entry domain.Entry, contentType domain.ContentType) domain.EnrichedEntry {
	return s.enrichOne(ctx, entry, contentType)
}

func (s *Service) enrichOne(ctx context.Context, entry domain.Entry, contentType domain.ContentType) domain.EnrichedEntry {
	ctx, cancel := context.WithTimeout(ctx, constants.APIConfig.EnrichTimeout)
	defer cancel()

	title, year := parser.ExtractTitleYear(entry.Line)
	yearStr := parser.YearString(year)

	meta := s.metadata.Lookup(ctx, title, yearStr, contentType)
	if meta == nil {
		meta = domain.DefaultTitleMetadata(title, yearStr, contentType)
	}

	var refs []domain.Reference
	if s.references != nil {
		refs = s.references.Collect(ctx, title, contentType)
	}

	if !meta.Found {
		s.logger.Debug("Entry enrichment degraded",
			zap.Int("rank", entry.Rank),
			zap.String("title", title),
		)
	}

	return domain.EnrichedEntry{
		Entry:      entry,
		Metadata:   meta,
		References: refs,
	}
}
