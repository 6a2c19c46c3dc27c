// Package recommend orchestrates the core flow: prompt construction,
// text generation and response parsing, with per-session result state.
package recommend

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/kapu/cinerec-go/internal/domain"
	"github.com/kapu/cinerec-go/internal/parser"
	"github.com/kapu/cinerec-go/internal/prompt"
	"github.com/kapu/cinerec-go/internal/service/ai"
	"github.com/kapu/cinerec-go/pkg/errors"
)

// UnavailableMessage is shown while the AI circuit is open.
const UnavailableMessage = "The recommendation service is temporarily unavailable. Please try again in a few minutes."

// TextGenerator is the generation backend. Satisfied by *ai.ModelManager.
type TextGenerator interface {
	GenerateText(ctx context.Context, promptText string, preset ai.ModelPreset, opts *ai.GenerateOptions) (string, *ai.GenerateMetadata, error)
}

// Outcome is the result of one search. Exactly one of Set and Message is
// populated: Message carries the user-facing explanation when no entries
// could be produced.
type Outcome struct {
	Set      *domain.RecommendationSet `json:"set,omitempty"`
	Message  string                    `json:"message,omitempty"`
	Metadata *ai.GenerateMetadata      `json:"-"`
}

// Failed reports whether the search produced no recommendation set.
func (o *Outcome) Failed() bool {
	return o == nil || o.Set == nil
}

type Service struct {
	generator TextGenerator
	sessions  *SessionStore
	logger    *zap.Logger
}

func NewService(generator TextGenerator, sessions *SessionStore, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		sessions:  sessions,
		logger:    logger,
	}
}

// Search runs the full pipeline for one request and replaces the
// session's result set on success. Every failure mode degrades to a
// message-bearing outcome: an open circuit, a generation error and an
// unparseable response all come back as (nil set, message), never as a
// raised fault, and the session keeps its previous set.
func (s *Service) Search(ctx context.Context, sessionID string, req *domain.RecommendationRequest) (*Outcome, error) {
	promptText := prompt.BuildRecommendationPrompt(prompt.RecommendationPromptVars{
		Titles:      req.Titles,
		Underrated:  req.Underrated,
		ContentType: req.ContentType,
	})

	text, metadata, err := s.generator.GenerateText(ctx, promptText, ai.PresetRecommend, nil)
	if err != nil {
		if stderrors.Is(err, ai.ErrServiceUnavailable) {
			s.logger.Warn("Search rejected while circuit open", zap.String("session", sessionID))
			return &Outcome{Message: UnavailableMessage}, nil
		}
		// A failed generation parses as empty text.
		s.logger.Error("Generation failed",
			zap.String("session", sessionID),
			zap.Error(err),
		)
		text = ""
	}

	result := parser.Parse(text)
	if result.Failed() {
		s.logger.Warn("Generated text yielded no entries",
			zap.String("session", sessionID),
			zap.Int("raw_length", len(text)),
			zap.String("provider", providerName(metadata)),
		)
		return &Outcome{Message: result.Message, Metadata: metadata}, nil
	}

	set := domain.NewRecommendationSet(result.Entries, req.Fingerprint())
	s.sessions.Put(sessionID, req, set)

	s.logger.Info("Recommendations generated",
		zap.String("session", sessionID),
		zap.Int("entries", set.Size()),
		zap.Int("visible", set.VisibleCount()),
		zap.String("provider", metadata.Provider),
		zap.Bool("used_fallback", metadata.UsedFallback),
	)

	return &Outcome{Set: set, Metadata: metadata}, nil
}

// ShowMore advances the session's visible window. It is a no-op at the
// end of the set.
func (s *Service) ShowMore(sessionID string) (*domain.RecommendationSet, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, errors.NewValidationError("no recommendations in session", "session_id", sessionID)
	}

	session.Set.ShowMore()
	return session.Set, nil
}

// ShowLess collapses the session's visible window back to the first page.
func (s *Service) ShowLess(sessionID string) (*domain.RecommendationSet, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, errors.NewValidationError("no recommendations in session", "session_id", sessionID)
	}

	session.Set.ShowLess()
	return session.Set, nil
}

// Current returns the session's active set without mutating the cursor.
func (s *Service) Current(sessionID string) (*domain.RecommendationSet, bool) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}
	return session.Set, true
}

// Request returns the request behind the session's active set.
func (s *Service) Request(sessionID string) (*domain.RecommendationRequest, bool) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}
	return session.Request, true
}

func providerName(m *ai.GenerateMetadata) string {
	if m == nil {
		return ""
	}
	return m.Provider
}
