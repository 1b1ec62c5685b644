package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiotributario-backend/extract"
	"studiotributario-backend/models"
	"studiotributario-backend/session"

	"github.com/rs/zerolog"
)

const maxAnalysisChars = 30000

// AnalysisService finds the defects of the challenged act through the generative model
type AnalysisService struct {
	generator Generator
	documents *DocumentService
	logger    zerolog.Logger
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithGenerator sets the generative model client
func AnalysisWithGenerator(g Generator) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.generator = g
	}
}

// AnalysisWithDocumentService sets the document service used to read the act
func AnalysisWithDocumentService(d *DocumentService) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.documents = d
	}
}

// AnalysisWithLogger sets the logger
func AnalysisWithLogger(logger zerolog.Logger) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.logger = logger
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.documents == nil {
		s.documents = NewDocumentService()
	}
	return s
}

func defectsInstruction(actText string) string {
	return "Agisci come un avvocato tributarista italiano. Analizza l'atto impositivo (avviso di accertamento " +
		"o cartella) fornito ed elenca i potenziali vizi formali e sostanziali che possono fondare un ricorso. " +
		"Per ciascun vizio indica un titolo tecnico, perché è applicabile al caso concreto in base al testo " +
		"e i riferimenti normativi (TUIR, Statuto del Contribuente, D.Lgs. 546/1992 e altri).\n\n" +
		"TESTO ATTO:\n" + actText
}

// AnalyzeDefects asks the generative model for the defects of the challenged act.
// When no text can be extracted from a PDF the raw bytes are sent instead. On
// failure the previous analysis is left in place. The caller must hold the session.
func (s *AnalysisService) AnalyzeDefects(ctx context.Context, sess *session.Session) (*models.DefectAnalysis, error) {
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}
	apiKey := sess.Credentials.GeminiAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key", ErrMissingCredential)
	}
	doc := sess.ChallengedDocument
	if doc == nil {
		return nil, ErrDocumentMissing
	}

	analysis := &models.DefectAnalysis{DocumentID: doc.ID}
	in := GenerateInput{Temperature: 0.2}

	text, err := s.documents.Text(doc)
	switch {
	case err == nil:
		in.Instruction = defectsInstruction(truncate(text, maxAnalysisChars))
	case doc.MimeType == extract.MimePDF:
		s.logger.Warn().Err(err).Str("filename", doc.Filename).Msg("sending raw PDF to the generative model")
		in.Instruction = defectsInstruction("(vedi documento allegato)")
		in.Document = &DocumentPayload{MIMEType: doc.MimeType, Data: doc.Data}
		analysis.RawDocument = true
	default:
		return nil, err
	}

	out, err := s.generator.Generate(ctx, apiKey, in)
	if err != nil {
		if !errors.Is(err, ErrGenerationUnavailable) && !errors.Is(err, ErrMissingCredential) {
			err = fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
		}
		s.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("defect analysis failed")
		return nil, err
	}

	analysis.Text = out
	analysis.GeneratedAt = time.Now()
	sess.Defects = analysis
	return analysis, nil
}
