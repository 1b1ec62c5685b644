package models

import (
	"time"

	"github.com/google/uuid"
)

// DefectAnalysis is the list of formal and substantive defects found in the challenged act
type DefectAnalysis struct {
	Text        string    `json:"text"`
	DocumentID  uuid.UUID `json:"document_id"`
	RawDocument bool      `json:"raw_document"` // sent as bytes because no text could be extracted
	GeneratedAt time.Time `json:"generated_at"`
}

// AppealDraft represents the tax appeal being drafted
type AppealDraft struct {
	Text         string    `json:"text"`
	CourtHeading string    `json:"court_heading"`
	Edited       bool      `json:"edited"`
	GeneratedAt  time.Time `json:"generated_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
