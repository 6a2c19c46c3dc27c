package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/constants"
	"github.com/kapu/cinerec-go/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Same-origin policy is enforced upstream; the API carries no
	// credentials beyond the session cookie.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket streams one search: a "set" frame with the totals,
// then one "entry" frame per enriched entry as each completes, then
// "done". Entries carry their rank so the client can slot them in order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	var body recommendRequest
	if err := conn.ReadJSON(&body); err != nil {
		s.logger.Debug("WebSocket read failed", zap.Error(err))
		return
	}

	req, err := domain.NewRecommendationRequest(body.Titles, body.Underrated, domain.ContentType(body.ContentType))
	if err != nil {
		_ = conn.WriteJSON(wsEvent{Type: "error", Message: err.Error()})
		return
	}

	outcome, err := s.recommender.Search(r.Context(), sessionID, req)
	if err != nil {
		s.logger.Error("WebSocket search failed", zap.String("session", sessionID), zap.Error(err))
		_ = conn.WriteJSON(wsEvent{Type: "error", Message: "recommendation generation failed"})
		return
	}

	if outcome.Failed() {
		_ = conn.WriteJSON(wsEvent{Type: "set", Message: outcome.Message})
		_ = conn.WriteJSON(wsEvent{Type: "done"})
		return
	}

	set := outcome.Set
	if err := conn.WriteJSON(wsEvent{Type: "set", Total: set.Size()}); err != nil {
		return
	}

	if s.historyRepo.Enabled() {
		go s.recordHistory(sessionID, req, set)
	}

	// gorilla connections allow a single concurrent writer.
	var writeMu sync.Mutex

	p := pool.New().WithMaxGoroutines(constants.EnrichConfig.Concurrency)
	for _, entry := range set.Entries {
		entry := entry
		p.Go(func() {
			enriched := s.enricher.EnrichOne(r.Context(), entry, req.ContentType)

			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(wsEvent{Type: "entry", Entry: &enriched}); err != nil {
				s.logger.Debug("WebSocket write failed",
					zap.Int("rank", entry.Rank),
					zap.Error(err),
				)
			}
		})
	}
	p.Wait()

	_ = conn.WriteJSON(wsEvent{Type: "done"})
}
