package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiotributario-backend/models"
	"studiotributario-backend/session"

	"github.com/rs/zerolog"
)

// SearchService runs the criterion-by-criterion jurisprudence search
type SearchService struct {
	client      SearchClient
	stepTimeout time.Duration
	logger      zerolog.Logger
}

// SearchServiceOption is a functional option for SearchService
type SearchServiceOption func(*SearchService)

// SearchWithClient sets the conversational search client
func SearchWithClient(client SearchClient) SearchServiceOption {
	return func(s *SearchService) {
		s.client = client
	}
}

// SearchWithStepTimeout bounds the wait of each remote call
func SearchWithStepTimeout(timeout time.Duration) SearchServiceOption {
	return func(s *SearchService) {
		s.stepTimeout = timeout
	}
}

// SearchWithLogger sets the logger
func SearchWithLogger(logger zerolog.Logger) SearchServiceOption {
	return func(s *SearchService) {
		s.logger = logger
	}
}

// NewSearchService creates a new search service
func NewSearchService(opts ...SearchServiceOption) *SearchService {
	s := &SearchService{
		stepTimeout: DefaultSearchTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunSearchRequest represents a request to run the sequential search
type RunSearchRequest struct {
	ExtractMaxims bool
}

// RunSearchResult represents the outcome of a sequential search
type RunSearchResult struct {
	Suppressed        bool                      `json:"suppressed"`
	Results           []models.SearchStepResult `json:"results"`
	ConversationTurns int                       `json:"conversation_turns"`
	PlannedSteps      int                       `json:"planned_steps"`
	FailedStep        *StepInstruction          `json:"failed_step,omitempty"`
}

// RunSequential executes the planned steps in order against the search endpoint.
// The caller must hold the session.
//
// A missing token fails before any call and leaves the session untouched. Blank
// keywords suppress the sequence without touching the session either. Otherwise
// the conversation and the results of the previous run are replaced; the first
// failing step stops the sequence and the completed steps keep their results.
func (s *SearchService) RunSequential(ctx context.Context, sess *session.Session, req RunSearchRequest) (*RunSearchResult, error) {
	if s.client == nil {
		return nil, errors.New("search client not set")
	}
	token := sess.Credentials.SearchAPIKey
	if token == "" {
		return nil, fmt.Errorf("%w: search API key", ErrMissingCredential)
	}

	steps := PlanSteps(sess.Filters, req.ExtractMaxims)
	if len(steps) == 0 {
		s.logger.Info().Str("session_id", sess.ID.String()).Msg("search suppressed: no keywords")
		return &RunSearchResult{
			Suppressed:        true,
			Results:           []models.SearchStepResult{},
			ConversationTurns: sess.Conversation.Len(),
		}, nil
	}

	sess.Conversation = models.NewConversation(SearchSystemPrompt)
	sess.Results = make([]models.SearchStepResult, 0, len(steps))

	result := &RunSearchResult{PlannedSteps: len(steps)}
	for i := range steps {
		step := steps[i]
		log := s.logger.With().
			Str("session_id", sess.ID.String()).
			Int("step", step.Step).
			Str("kind", string(step.Kind)).
			Logger()

		reply, err := s.exchange(ctx, sess.Conversation, token, step.Text)
		if err != nil {
			log.Warn().Err(err).Msg("search step failed")
			result.FailedStep = &step
			result.Results = sess.Results
			result.ConversationTurns = sess.Conversation.Len()
			return result, err
		}

		sess.Results = append(sess.Results, models.SearchStepResult{
			Step:         step.Step,
			Kind:         step.Kind,
			Label:        step.Label,
			Instruction:  step.Text,
			ResponseText: reply,
			CompletedAt:  time.Now(),
		})
		log.Info().Int("reply_chars", len(reply)).Msg("search step completed")
	}

	result.Results = sess.Results
	result.ConversationTurns = sess.Conversation.Len()
	return result, nil
}

// exchange sends the conversation plus the new instruction and commits both
// turns only when a reply arrived.
func (s *SearchService) exchange(ctx context.Context, conv *models.Conversation, token, instruction string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	reply, err := s.client.Complete(stepCtx, token, conv.WithPending(instruction))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, ErrSearchUnavailable) || errors.Is(err, ErrMissingCredential) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	conv.Commit(instruction, reply)
	return reply, nil
}

// Results returns the accumulated results of the last run. The caller must hold the session.
func (s *SearchService) Results(sess *session.Session) []models.SearchStepResult {
	out := make([]models.SearchStepResult, len(sess.Results))
	copy(out, sess.Results)
	return out
}
