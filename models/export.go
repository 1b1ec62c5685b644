package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportFormat represents the serialization of an exported draft
type ExportFormat string

const (
	ExportFormatText ExportFormat = "txt"
	ExportFormatDocx ExportFormat = "docx"
)

// MimeType returns the content type of the format
func (f ExportFormat) MimeType() string {
	switch f {
	case ExportFormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ExportedDraft is the serialized draft returned to the client
type ExportedDraft struct {
	Filename string
	Format   ExportFormat
	Data     []byte
}

// ExportRecord represents an archived export
type ExportRecord struct {
	ID          uuid.UUID    `json:"id"`
	SessionID   uuid.UUID    `json:"session_id"`
	Filename    string       `json:"filename"`
	Format      ExportFormat `json:"format"`
	MimeType    string       `json:"mime_type"`
	Size        int64        `json:"size"`
	StoragePath string       `json:"storage_path"`
	CreatedAt   time.Time    `json:"created_at"`
}
