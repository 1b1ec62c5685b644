// Package session holds the in-memory state of one interactive client.
package session

import (
	"errors"
	"sync"
	"time"

	"studiotributario-backend/models"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session is running another operation")
)

// Credentials are the API tokens entered by the user. They live only in memory.
type Credentials struct {
	GeminiAPIKey string
	SearchAPIKey string
}

// Session is the state owned by one interactive client. Callers must hold the
// session (see Acquire) while reading or mutating any field.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	Credentials        Credentials
	Filters            models.SearchFilters
	Conversation       *models.Conversation
	Results            []models.SearchStepResult
	ChallengedDocument *models.UploadedDocument
	ReferenceDocuments []*models.UploadedDocument
	Defects            *models.DefectAnalysis
	Draft              *models.AppealDraft

	busy     sync.Mutex
	lastSeen time.Time
}

// New creates an empty session
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		Filters:   models.NewSearchFilters(),
		Results:   []models.SearchStepResult{},
		lastSeen:  now,
	}
}

// Acquire takes exclusive ownership of the session for one operation. It never
// waits: if another operation is in flight it fails with ErrSessionBusy.
func (s *Session) Acquire() (release func(), err error) {
	if !s.busy.TryLock() {
		return nil, ErrSessionBusy
	}
	return s.busy.Unlock, nil
}

// Summary is the client-facing view of a session. Credentials are reported only
// as present or absent.
type Summary struct {
	ID                 uuid.UUID                  `json:"id"`
	CreatedAt          time.Time                  `json:"created_at"`
	HasGeminiKey       bool                       `json:"has_gemini_key"`
	HasSearchKey       bool                       `json:"has_search_key"`
	Filters            models.SearchFilters       `json:"filters"`
	ConversationTurns  int                        `json:"conversation_turns"`
	ResultCount        int                        `json:"result_count"`
	ChallengedDocument *models.UploadedDocument   `json:"challenged_document,omitempty"`
	ReferenceDocuments []*models.UploadedDocument `json:"reference_documents"`
	HasDefects         bool                       `json:"has_defects"`
	HasDraft           bool                       `json:"has_draft"`
}

// Summarize builds the client-facing view
func (s *Session) Summarize() Summary {
	refs := s.ReferenceDocuments
	if refs == nil {
		refs = []*models.UploadedDocument{}
	}
	return Summary{
		ID:                 s.ID,
		CreatedAt:          s.CreatedAt,
		HasGeminiKey:       s.Credentials.GeminiAPIKey != "",
		HasSearchKey:       s.Credentials.SearchAPIKey != "",
		Filters:            s.Filters,
		ConversationTurns:  s.Conversation.Len(),
		ResultCount:        len(s.Results),
		ChallengedDocument: s.ChallengedDocument,
		ReferenceDocuments: refs,
		HasDefects:         s.Defects != nil,
		HasDraft:           s.Draft != nil,
	}
}
