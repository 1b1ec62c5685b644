package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studiotributario-backend/models"
	"studiotributario-backend/session"

	"github.com/rs/zerolog"
)

const (
	DefaultCourtHeading = "Corte di Giustizia Tributaria di I Grado di [CITTÀ]"
	maxReferenceChars   = 10000
)

// DraftService drafts the tax appeal from the defects, the jurisprudence found
// and the reference judgments uploaded by the user
type DraftService struct {
	generator Generator
	documents *DocumentService
	logger    zerolog.Logger
}

// DraftServiceOption is a functional option for DraftService
type DraftServiceOption func(*DraftService)

// DraftWithGenerator sets the generative model client
func DraftWithGenerator(g Generator) DraftServiceOption {
	return func(s *DraftService) {
		s.generator = g
	}
}

// DraftWithDocumentService sets the document service used to read reference judgments
func DraftWithDocumentService(d *DocumentService) DraftServiceOption {
	return func(s *DraftService) {
		s.documents = d
	}
}

// DraftWithLogger sets the logger
func DraftWithLogger(logger zerolog.Logger) DraftServiceOption {
	return func(s *DraftService) {
		s.logger = logger
	}
}

// NewDraftService creates a new draft service
func NewDraftService(opts ...DraftServiceOption) *DraftService {
	s := &DraftService{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.documents == nil {
		s.documents = NewDocumentService()
	}
	return s
}

// GenerateAppealRequest represents a request to draft the appeal
type GenerateAppealRequest struct {
	CourtHeading string
}

// buildAppealInstruction assembles the drafting instruction and its legal context
func buildAppealInstruction(heading string, defects *models.DefectAnalysis, results []models.SearchStepResult, references string) string {
	var b strings.Builder

	b.WriteString("Sei un avvocato tributarista senior. Redigi un RICORSO TRIBUTARIO formale per la ")
	b.WriteString(heading)
	b.WriteString(".\n\nStruttura obbligatoria:\n")
	b.WriteString("1. INTESTAZIONE: Corte, ricorrente ([NOME]), resistente (Agenzia delle Entrate / Agenzia Entrate-Riscossione).\n")
	b.WriteString("2. FATTO: sintesi della notifica dell'atto impugnato.\n")
	b.WriteString("3. DIRITTO: motivi di ricorso fondati sui vizi indicati, numerati con lettere minuscole (a, b, c); ")
	b.WriteString("per ciascun motivo argomenta in diritto e cita la giurisprudenza fornita.\n")
	b.WriteString("4. P.Q.M.: conclusioni (annullamento dell'atto, vittoria di spese).\n\n")

	b.WriteString("VIZI RILEVATI:\n")
	b.WriteString(defects.Text)
	b.WriteString("\n\nGIURISPRUDENZA TROVATA (online):\n")
	if len(results) == 0 {
		b.WriteString("(nessuna)\n")
	}
	for _, r := range results {
		fmt.Fprintf(&b, "[%s]\n%s\n", r.Label, r.ResponseText)
	}
	b.WriteString("\nGIURISPRUDENZA CARICATA (offline):\n")
	if references == "" {
		b.WriteString("(nessuna)\n")
	} else {
		b.WriteString(truncate(references, maxReferenceChars))
	}
	return b.String()
}

// GenerateAppeal drafts the appeal. It requires a defect analysis; on failure the
// current draft is left unchanged. The caller must hold the session.
func (s *DraftService) GenerateAppeal(ctx context.Context, sess *session.Session, req GenerateAppealRequest) (*models.AppealDraft, error) {
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}
	apiKey := sess.Credentials.GeminiAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key", ErrMissingCredential)
	}
	if sess.Defects == nil {
		return nil, ErrDefectsMissing
	}

	heading := strings.TrimSpace(req.CourtHeading)
	if heading == "" {
		heading = DefaultCourtHeading
	}

	instruction := buildAppealInstruction(heading, sess.Defects, sess.Results, s.documents.ReferenceText(sess))

	out, err := s.generator.Generate(ctx, apiKey, GenerateInput{Instruction: instruction, Temperature: 0.2})
	if err != nil {
		if !errors.Is(err, ErrGenerationUnavailable) && !errors.Is(err, ErrMissingCredential) {
			err = fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
		}
		s.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("appeal drafting failed")
		return nil, err
	}

	now := time.Now()
	draft := &models.AppealDraft{
		Text:         out,
		CourtHeading: heading,
		GeneratedAt:  now,
		UpdatedAt:    now,
	}
	sess.Draft = draft
	return draft, nil
}

// UpdateDraft stores the user's edits of the draft. The caller must hold the session.
func (s *DraftService) UpdateDraft(sess *session.Session, text string) *models.AppealDraft {
	now := time.Now()
	if sess.Draft == nil {
		sess.Draft = &models.AppealDraft{CourtHeading: DefaultCourtHeading, GeneratedAt: now}
	}
	sess.Draft.Text = text
	sess.Draft.Edited = true
	sess.Draft.UpdatedAt = now
	return sess.Draft
}
