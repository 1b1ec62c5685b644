package models

import (
	"time"

	"github.com/google/uuid"
)

// TextExtractor turns the raw bytes of a document into plain text
type TextExtractor func(filename, mimeType string, data []byte) (string, error)

// UploadedDocument represents a file uploaded into a session.
// Its plain text is extracted on first use and cached.
type UploadedDocument struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	Data       []byte    `json:"-"`

	extracted  bool
	text       string
	extractErr error
}

// NewUploadedDocument wraps uploaded bytes
func NewUploadedDocument(filename, mimeType string, data []byte) *UploadedDocument {
	return &UploadedDocument{
		ID:         uuid.New(),
		Filename:   filename,
		MimeType:   mimeType,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Data:       data,
	}
}

// Text returns the extracted plain text, running the extractor only once
func (d *UploadedDocument) Text(extract TextExtractor) (string, error) {
	if !d.extracted {
		d.text, d.extractErr = extract(d.Filename, d.MimeType, d.Data)
		if d.extractErr != nil {
			d.text = ""
		}
		d.extracted = true
	}
	return d.text, d.extractErr
}

// Extracted reports whether extraction already ran and whether it succeeded
func (d *UploadedDocument) Extracted() (done bool, readable bool) {
	return d.extracted, d.extracted && d.extractErr == nil
}
