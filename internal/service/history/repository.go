package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/domain"
)

// Record is one persisted search with its produced lines.
type Record struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Titles      []string  `json:"titles"`
	ContentType string    `json:"content_type"`
	Underrated  bool      `json:"underrated"`
	EntryCount  int       `json:"entry_count"`
	Entries     []string  `json:"entries,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository writes and reads search history. A nil *Repository disables
// persistence; every method is nil-safe.
type Repository struct {
	pg     *PostgresService
	logger *zap.Logger
}

func NewRepository(pg *PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		pg:     pg,
		logger: logger,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS recommendation_searches (
	id           BIGSERIAL PRIMARY KEY,
	session_id   TEXT NOT NULL,
	titles       TEXT NOT NULL,
	content_type TEXT NOT NULL,
	underrated   BOOLEAN NOT NULL DEFAULT FALSE,
	entry_count  INT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS recommendation_entries (
	id        BIGSERIAL PRIMARY KEY,
	search_id BIGINT NOT NULL REFERENCES recommendation_searches(id) ON DELETE CASCADE,
	rank      INT NOT NULL,
	line      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_session ON recommendation_searches(session_id, created_at DESC);
`

// Migrate creates the history tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if r == nil || r.pg == nil {
		return nil
	}

	if _, err := r.pg.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("history migration failed: %w", err)
	}

	r.logger.Info("History schema ready")
	return nil
}

// SaveSearch records an accepted search and its entries in one
// transaction. Failures are returned but callers treat them as
// non-fatal: history must never block a recommendation.
func (r *Repository) SaveSearch(ctx context.Context, sessionID string, req *domain.RecommendationRequest, set *domain.RecommendationSet) error {
	if r == nil || r.pg == nil {
		return nil
	}

	tx, err := r.pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var searchID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO recommendation_searches (session_id, titles, content_type, underrated, entry_count)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		sessionID,
		strings.Join(req.Titles, "|"),
		req.ContentType.String(),
		req.Underrated,
		set.Size(),
	).Scan(&searchID)
	if err != nil {
		return fmt.Errorf("insert search failed: %w", err)
	}

	for _, entry := range set.Entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recommendation_entries (search_id, rank, line) VALUES ($1, $2, $3)`,
			searchID, entry.Rank, entry.Line,
		); err != nil {
			return fmt.Errorf("insert entry failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	r.logger.Debug("Search recorded",
		zap.String("session", sessionID),
		zap.Int64("search_id", searchID),
		zap.Int("entries", set.Size()),
	)

	return nil
}

// RecentSearches lists the newest searches for a session, without entry
// lines.
func (r *Repository) RecentSearches(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	if r == nil || r.pg == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pg.db.QueryContext(ctx,
		`SELECT id, session_id, titles, content_type, underrated, entry_count, created_at
		 FROM recommendation_searches
		 WHERE session_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query searches failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var titles string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &titles, &rec.ContentType, &rec.Underrated, &rec.EntryCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search failed: %w", err)
		}
		rec.Titles = strings.Split(titles, "|")
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SearchEntries returns the stored lines of one search in rank order.
func (r *Repository) SearchEntries(ctx context.Context, searchID int64) ([]string, error) {
	if r == nil || r.pg == nil {
		return nil, nil
	}

	rows, err := r.pg.db.QueryContext(ctx,
		`SELECT line FROM recommendation_entries WHERE search_id = $1 ORDER BY rank`,
		searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query entries failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	lines := make([]string, 0, domain.MaxEntries)
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scan entry failed: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// Enabled reports whether persistence is active.
func (r *Repository) Enabled() bool {
	return r != nil && r.pg != nil
}
