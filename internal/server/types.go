package server

import (
	"github.com/kapu/cinerec-go/internal/domain"
)

// recommendRequest is the POST /api/recommend body.
type recommendRequest struct {
	Titles      []string `json:"titles"`
	Underrated  bool     `json:"underrated"`
	ContentType string   `json:"content_type"`
}

// recommendResponse carries the visible slice of the active set. Message
// is set instead of entries when the search produced nothing usable.
type recommendResponse struct {
	Message      string                 `json:"message,omitempty"`
	Total        int                    `json:"total"`
	VisibleCount int                    `json:"visible_count"`
	HasMore      bool                   `json:"has_more"`
	Entries      []domain.EnrichedEntry `json:"entries,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status       string `json:"status"`
	CircuitState string `json:"circuit_state"`
	CacheActive  bool   `json:"cache_active"`
	History      bool   `json:"history"`
}

// wsEvent is one frame on the /ws stream. Type is "set", "entry",
// "error" or "done".
type wsEvent struct {
	Type    string                `json:"type"`
	Message string                `json:"message,omitempty"`
	Total   int                   `json:"total,omitempty"`
	Entry   *domain.EnrichedEntry `json:"entry,omitempty"`
}
