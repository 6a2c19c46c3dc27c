// Package server exposes the recommendation pipeline over HTTP and
// WebSocket. Handlers stay thin: validation and JSON shaping here,
// everything else in the services.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/service/ai"
	"github.com/kapu/cinerec-go/internal/service/cache"
	"github.com/kapu/cinerec-go/internal/service/history"
	"github.com/kapu/cinerec-go/internal/service/recommend"
)

const sessionCookie = "cinerec_session"

// Recommender is the search and pagination surface of the recommend
// service.
type Recommender interface {
	Search(ctx context.Context, sessionID string, req *domain.RecommendationRequest) (*recommend.Outcome, error)
	ShowMore(sessionID string) (*domain.RecommendationSet, error)
	ShowLess(sessionID string) (*domain.RecommendationSet, error)
	Current(sessionID string) (*domain.RecommendationSet, bool)
	Request(sessionID string) (*domain.RecommendationRequest, bool)
}

// Enricher resolves metadata and references for entries.
type Enricher interface {
	Enrich(ctx context.Context, entries []domain.Entry, contentType domain.ContentType) []domain.EnrichedEntry
	EnrichOne(ctx context.Context, entry domain.Entry, contentType domain.ContentType) domain.EnrichedEntry
}

type Server struct {
	recommender  Recommender
	enricher     Enricher
	historyRepo  *history.Repository
	modelManager *ai.ModelManager
	cacheService *cache.CacheService
	logger       *zap.Logger
	httpServer   *http.Server
}

type Options struct {
	Addr         string
	Recommender  Recommender
	Enricher     Enricher
	HistoryRepo  *history.Repository
	ModelManager *ai.ModelManager
	CacheService *cache.CacheService
	Logger       *zap.Logger
}

func New(opts Options) *Server {
	s := &Server{
		recommender:  opts.Recommender,
		enricher:     opts.Enricher,
		historyRepo:  opts.HistoryRepo,
		modelManager: opts.ModelManager,
		cacheService: opts.CacheService,
		logger:       opts.Logger,
	}

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/recommend", s.handleRecommend)
	mux.HandleFunc("POST /api/recommend/more", s.handleShowMore)
	mux.HandleFunc("POST /api/recommend/less", s.handleShowLess)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleHistoryEntries)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Handler exposes the routing table.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var body recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := domain.NewRecommendationRequest(body.Titles, body.Underrated, domain.ContentType(body.ContentType))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := s.sessionID(w, r)

	outcome, err := s.recommender.Search(r.Context(), sessionID, req)
	if err != nil {
		s.logger.Error("Search failed", zap.String("session", sessionID), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "recommendation generation failed")
		return
	}

	if outcome.Failed() {
		s.writeJSON(w, http.StatusOK, recommendResponse{Message: outcome.Message})
		return
	}

	if s.historyRepo.Enabled() {
		go s.recordHistory(sessionID, req, outcome.Set)
	}

	s.writeSetResponse(w, r, outcome.Set, req.ContentType)
}

func (s *Server) handleShowMore(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)

	set, err := s.recommender.ShowMore(sessionID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "no active recommendations; run a search first")
		return
	}

	s.writeSetResponse(w, r, set, s.sessionContentType(sessionID))
}

func (s *Server) handleShowLess(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)

	set, err := s.recommender.ShowLess(sessionID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "no active recommendations; run a search first")
		return
	}

	s.writeSetResponse(w, r, set, s.sessionContentType(sessionID))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.historyRepo.Enabled() {
		s.writeError(w, http.StatusNotFound, "history persistence is not configured")
		return
	}

	sessionID := s.sessionID(w, r)

	records, err := s.historyRepo.RecentSearches(r.Context(), sessionID, 10)
	if err != nil {
		s.logger.Error("History query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	s.writeJSON(w, http.StatusOK, records)
}

// handleHistoryEntries returns the stored lines of one past search.
func (s *Server) handleHistoryEntries(w http.ResponseWriter, r *http.Request) {
	if !s.historyRepo.Enabled() {
		s.writeError(w, http.StatusNotFound, "history persistence is not configured")
		return
	}

	searchID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid search id")
		return
	}

	lines, err := s.historyRepo.SearchEntries(r.Context(), searchID)
	if err != nil {
		s.logger.Error("History entries query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load search entries")
		return
	}

	s.writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		CacheActive: s.cacheService.IsConnected(r.Context()),
		History:     s.historyRepo.Enabled(),
	}

	if s.modelManager != nil {
		resp.CircuitState = s.modelManager.GetCircuitStatus().State.String()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// writeSetResponse enriches the visible slice and writes the standard
// pagination payload.
func (s *Server) writeSetResponse(w http.ResponseWriter, r *http.Request, set *domain.RecommendationSet, contentType domain.ContentType) {
	enriched := s.enricher.Enrich(r.Context(), set.Visible(), contentType)

	s.writeJSON(w, http.StatusOK, recommendResponse{
		Total:        set.Size(),
		VisibleCount: set.VisibleCount(),
		HasMore:      set.HasMore(),
		Entries:      enriched,
	})
}

// sessionContentType recovers the content type of the session's last
// accepted search for enrichment of paginated views.
func (s *Server) sessionContentType(sessionID string) domain.ContentType {
	if req, ok := s.recommender.Request(sessionID); ok {
		return req.ContentType
	}
	return domain.ContentTypeMovie
}

func (s *Server) recordHistory(sessionID string, req *domain.RecommendationRequest, set *domain.RecommendationSet) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.historyRepo.SaveSearch(ctx, sessionID, req, set); err != nil {
		s.logger.Warn("Failed to record search history", zap.Error(err))
	}
}

// sessionID reads the session cookie, minting one when absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := newSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(buf)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
