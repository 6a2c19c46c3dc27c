package recommend

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/parser"
	"github.com/kapu/cinerec-go/internal/service/ai"
)

type fakeGenerator struct {
	text       string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, promptText string, preset ai.ModelPreset, opts *ai.GenerateOptions) (string, *ai.GenerateMetadata, error) {
	f.lastPrompt = promptText
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, &ai.GenerateMetadata{Provider: "Gemini", Model: "test"}, nil
}

func generatedList(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d. Title %d (2019) [Korean] - reason\n", i, i)
	}
	return b.String()
}

func movieRequest(t *testing.T) *domain.RecommendationRequest {
	t.Helper()
	req, err := domain.NewRecommendationRequest([]string{"Parasite"}, false, domain.ContentTypeMovie)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}

func TestSearchStoresSessionSet(t *testing.T) {
	gen := &fakeGenerator{text: generatedList(16)}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	outcome, err := svc.Search(context.Background(), "s1", movieRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Failed() {
		t.Fatalf("expected set, got message %q", outcome.Message)
	}
	if outcome.Set.Size() != 16 {
		t.Errorf("size = %d", outcome.Set.Size())
	}
	if outcome.Set.VisibleCount() != domain.PageSize {
		t.Errorf("initial visible = %d", outcome.Set.VisibleCount())
	}

	if !strings.Contains(gen.lastPrompt, "Parasite") {
		t.Error("prompt should carry the liked titles")
	}

	stored, ok := svc.Current("s1")
	if !ok || stored.Size() != 16 {
		t.Error("session should hold the new set")
	}
}

func TestSearchParseFailureReturnsMessage(t *testing.T) {
	gen := &fakeGenerator{text: "I cannot help with that."}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	outcome, err := svc.Search(context.Background(), "s1", movieRequest(t))
	if err != nil {
		t.Fatalf("parse failure must not be an error: %v", err)
	}
	if !outcome.Failed() {
		t.Fatal("expected failed outcome")
	}
	if outcome.Message != parser.UnparseableResultMessage {
		t.Errorf("message = %q", outcome.Message)
	}

	if _, ok := svc.Current("s1"); ok {
		t.Error("failed search must not create a session")
	}
}

func TestSearchCircuitOpenReturnsMessage(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("%w (next retry 12:00:00)", ai.ErrServiceUnavailable)}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	outcome, err := svc.Search(context.Background(), "s1", movieRequest(t))
	if err != nil {
		t.Fatalf("circuit-open must degrade to a message: %v", err)
	}
	if outcome.Message != UnavailableMessage {
		t.Errorf("message = %q", outcome.Message)
	}
}

func TestSearchGenerationErrorReturnsMessage(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("upstream provider exploded")}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	outcome, err := svc.Search(context.Background(), "s1", movieRequest(t))
	if err != nil {
		t.Fatalf("generation failure must not surface as an error: %v", err)
	}
	if !outcome.Failed() {
		t.Fatal("expected failed outcome")
	}
	if outcome.Message != parser.EmptyResultMessage {
		t.Errorf("message = %q", outcome.Message)
	}
	if _, ok := svc.Current("s1"); ok {
		t.Error("failed search must not create a session")
	}
}

func TestSearchEmptyGenerationReturnsMessage(t *testing.T) {
	gen := &fakeGenerator{text: ""}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	outcome, err := svc.Search(context.Background(), "s1", movieRequest(t))
	if err != nil {
		t.Fatalf("empty generation must not surface as an error: %v", err)
	}
	if outcome.Message != parser.EmptyResultMessage {
		t.Errorf("message = %q", outcome.Message)
	}
}

func TestSearchFailureKeepsPreviousSet(t *testing.T) {
	gen := &fakeGenerator{text: generatedList(16)}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	if _, err := svc.Search(context.Background(), "s1", movieRequest(t)); err != nil {
		t.Fatal(err)
	}

	gen.text = ""
	gen.err = fmt.Errorf("provider down")

	outcome, err := svc.Search(context.Background(), "s1", movieRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Failed() {
		t.Fatal("expected failed outcome")
	}

	set, ok := svc.Current("s1")
	if !ok || set.Size() != 16 {
		t.Error("a failed search must leave the previous set in place")
	}
}

func TestSearchReplacesPreviousSet(t *testing.T) {
	gen := &fakeGenerator{text: generatedList(16)}
	store := NewSessionStore()
	svc := NewService(gen, store, zap.NewNop())

	if _, err := svc.Search(context.Background(), "s1", movieRequest(t)); err != nil {
		t.Fatal(err)
	}
	set, _ := svc.Current("s1")
	set.ShowMore()
	if set.VisibleCount() != 16 {
		t.Fatalf("visible = %d", set.VisibleCount())
	}

	gen.text = generatedList(10)
	if _, err := svc.Search(context.Background(), "s1", movieRequest(t)); err != nil {
		t.Fatal(err)
	}

	set, _ = svc.Current("s1")
	if set.Size() != 10 {
		t.Errorf("new set size = %d", set.Size())
	}
	if set.VisibleCount() != domain.PageSize {
		t.Errorf("cursor must reset on replacement, visible = %d", set.VisibleCount())
	}
}

func TestShowMoreAndLessCursorSemantics(t *testing.T) {
	gen := &fakeGenerator{text: generatedList(16)}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	if _, err := svc.Search(context.Background(), "s1", movieRequest(t)); err != nil {
		t.Fatal(err)
	}

	set, err := svc.ShowMore("s1")
	if err != nil {
		t.Fatal(err)
	}
	if set.VisibleCount() != 16 {
		t.Errorf("after ShowMore visible = %d", set.VisibleCount())
	}

	// Already at the end: no-op.
	set, _ = svc.ShowMore("s1")
	if set.VisibleCount() != 16 {
		t.Errorf("ShowMore at max must be a no-op, visible = %d", set.VisibleCount())
	}

	set, err = svc.ShowLess("s1")
	if err != nil {
		t.Fatal(err)
	}
	if set.VisibleCount() != domain.PageSize {
		t.Errorf("after ShowLess visible = %d", set.VisibleCount())
	}
}

func TestShowMorePartialSet(t *testing.T) {
	gen := &fakeGenerator{text: generatedList(11)}
	svc := NewService(gen, NewSessionStore(), zap.NewNop())

	if _, err := svc.Search(context.Background(), "s1", movieRequest(t)); err != nil {
		t.Fatal(err)
	}

	set, _ := svc.ShowMore("s1")
	if set.VisibleCount() != 11 {
		t.Errorf("ShowMore must clamp to set size, visible = %d", set.VisibleCount())
	}
	if set.HasMore() {
		t.Error("no entries should remain")
	}
}

func TestShowMoreWithoutSession(t *testing.T) {
	svc := NewService(&fakeGenerator{}, NewSessionStore(), zap.NewNop())

	if _, err := svc.ShowMore("missing"); err == nil {
		t.Fatal("expected error for unknown session")
	}
	if _, err := svc.ShowLess("missing"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}
