package recommend

import (
	"sync"
	"time"

	"github.com/kapu/cinerec-go/internal/domain"
)

// Session holds one client's active recommendation state. A new accepted
// search replaces the whole session; there is no cross-request merging.
type Session struct {
	Request   *domain.RecommendationRequest
	Set       *domain.RecommendationSet
	CreatedAt time.Time
}

// SessionStore is an in-memory session map. Sessions are small (at most
// sixteen lines plus the request) so no eviction runs; stale sessions are
// simply overwritten by the next search.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Put replaces the session's state wholesale.
func (st *SessionStore) Put(sessionID string, req *domain.RecommendationRequest, set *domain.RecommendationSet) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sessions[sessionID] = &Session{
		Request:   req,
		Set:       set,
		CreatedAt: time.Now(),
	}
}

func (st *SessionStore) Get(sessionID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, ok := st.sessions[sessionID]
	return session, ok
}

func (st *SessionStore) Delete(sessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, sessionID)
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}
