package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/service/recommend"
)

type fakeRecommender struct {
	outcome *recommend.Outcome
	err     error
	set     *domain.RecommendationSet
	req     *domain.RecommendationRequest
}

func (f *fakeRecommender) Search(ctx context.Context, sessionID string, req *domain.RecommendationRequest) (*recommend.Outcome, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome.Set != nil {
		f.set = f.outcome.Set
	}
	return f.outcome, nil
}

func (f *fakeRecommender) ShowMore(sessionID string) (*domain.RecommendationSet, error) {
	if f.set == nil {
		return nil, fmt.Errorf("no session")
	}
	f.set.ShowMore()
	return f.set, nil
}

func (f *fakeRecommender) ShowLess(sessionID string) (*domain.RecommendationSet, error) {
	if f.set == nil {
		return nil, fmt.Errorf("no session")
	}
	f.set.ShowLess()
	return f.set, nil
}

func (f *fakeRecommender) Current(sessionID string) (*domain.RecommendationSet, bool) {
	return f.set, f.set != nil
}

func (f *fakeRecommender) Request(sessionID string) (*domain.RecommendationRequest, bool) {
	return f.req, f.req != nil
}

type passthroughEnricher struct{}

func (passthroughEnricher) Enrich(ctx context.Context, entries []domain.Entry, contentType domain.ContentType) []domain.EnrichedEntry {
	out := make([]domain.EnrichedEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.EnrichedEntry{
			Entry:    e,
			Metadata: domain.DefaultTitleMetadata("t", "", contentType),
		}
	}
	return out
}

func (passthroughEnricher) EnrichOne(ctx context.Context, entry domain.Entry, contentType domain.ContentType) domain.EnrichedEntry {
	return domain.EnrichedEntry{
		Entry:    entry,
		Metadata: domain.DefaultTitleMetadata("t", "", contentType),
	}
}

func testSet(n int) *domain.RecommendationSet {
	entries := make([]domain.Entry, n)
	for i := range entries {
		entries[i] = domain.Entry{Rank: i + 1, Line: fmt.Sprintf("%d. Title (2019) [Korean] - x", i+1)}
	}
	return domain.NewRecommendationSet(entries, "fp")
}

func newTestServer(rec Recommender) *Server {
	return New(Options{
		Addr:        ":0",
		Recommender: rec,
		Enricher:    passthroughEnricher{},
		Logger:      zap.NewNop(),
	})
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRecommendReturnsVisiblePage(t *testing.T) {
	rec := &fakeRecommender{outcome: &recommend.Outcome{Set: testSet(16)}}
	srv := newTestServer(rec)

	w := postJSON(t, srv.Handler(), "/api/recommend", `{"titles":["Parasite"],"content_type":"movie"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp recommendResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 16 || resp.VisibleCount != 8 || !resp.HasMore {
		t.Errorf("unexpected pagination: %+v", resp)
	}
	if len(resp.Entries) != 8 {
		t.Errorf("entries = %d", len(resp.Entries))
	}
	if resp.Entries[0].Metadata == nil {
		t.Error("entries must carry metadata")
	}
}

func TestRecommendValidation(t *testing.T) {
	srv := newTestServer(&fakeRecommender{})

	cases := []string{
		`{"titles":[],"content_type":"movie"}`,
		`{"titles":["a","b","c","d"],"content_type":"movie"}`,
		`{"titles":["a"],"content_type":"documentary"}`,
		`not json`,
	}

	for _, body := range cases {
		w := postJSON(t, srv.Handler(), "/api/recommend", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, w.Code)
		}
	}
}

func TestRecommendMessageOutcome(t *testing.T) {
	rec := &fakeRecommender{outcome: &recommend.Outcome{Message: "Sorry, nothing today."}}
	srv := newTestServer(rec)

	w := postJSON(t, srv.Handler(), "/api/recommend", `{"titles":["Parasite"],"content_type":"movie"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("message outcomes are 200s, got %d", w.Code)
	}

	var resp recommendResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message == "" || len(resp.Entries) != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRecommendGenerationFailure(t *testing.T) {
	rec := &fakeRecommender{err: fmt.Errorf("provider down")}
	srv := newTestServer(rec)

	w := postJSON(t, srv.Handler(), "/api/recommend", `{"titles":["Parasite"],"content_type":"movie"}`)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d", w.Code)
	}
}

func TestShowMoreFlow(t *testing.T) {
	rec := &fakeRecommender{outcome: &recommend.Outcome{Set: testSet(16)}}
	srv := newTestServer(rec)

	postJSON(t, srv.Handler(), "/api/recommend", `{"titles":["Parasite"],"content_type":"movie"}`)

	w := postJSON(t, srv.Handler(), "/api/recommend/more", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp recommendResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.VisibleCount != 16 || resp.HasMore {
		t.Errorf("unexpected pagination after more: %+v", resp)
	}
}

func TestShowMoreWithoutSearch(t *testing.T) {
	srv := newTestServer(&fakeRecommender{})

	w := postJSON(t, srv.Handler(), "/api/recommend/more", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv := newTestServer(&fakeRecommender{})

	for _, path := range []string{"/api/history", "/api/history/7"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeRecommender{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status field = %q", resp.Status)
	}
	if resp.CacheActive || resp.History {
		t.Errorf("optional backends should be off: %+v", resp)
	}
}

func TestSessionCookieMinted(t *testing.T) {
	rec := &fakeRecommender{outcome: &recommend.Outcome{Set: testSet(8)}}
	srv := newTestServer(rec)

	w := postJSON(t, srv.Handler(), "/api/recommend", `{"titles":["Parasite"],"content_type":"movie"}`)

	cookies := w.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == sessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}
}
