package service

import (
	"errors"
	"fmt"
	"strings"

	"studiotributario-backend/extract"
	"studiotributario-backend/models"
	"studiotributario-backend/session"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB
	referenceSeparator = "\n---\n"
)

// DocumentService handles the documents uploaded into a session
type DocumentService struct {
	extractor        models.TextExtractor
	maxFileSize      int64
	allowedMimeTypes map[string]bool
	logger           zerolog.Logger
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithExtractor sets the text extractor
func DocumentWithExtractor(extractor models.TextExtractor) DocumentServiceOption {
	return func(s *DocumentService) {
		s.extractor = extractor
	}
}

// DocumentWithMaxFileSize sets the upload limit in bytes
func DocumentWithMaxFileSize(size int64) DocumentServiceOption {
	return func(s *DocumentService) {
		if size > 0 {
			s.maxFileSize = size
		}
	}
}

// DocumentWithLogger sets the logger
func DocumentWithLogger(logger zerolog.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{
		extractor:   extract.PlainText,
		maxFileSize: DefaultMaxFileSize,
		allowedMimeTypes: map[string]bool{
			extract.MimePDF:  true,
			extract.MimeText: true,
			extract.MimeDocx: true,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadFile represents one file received from the client
type UploadFile struct {
	Filename string
	MimeType string
	Data     []byte
}

// DocumentStatus reports whether the text of an uploaded document is usable
type DocumentStatus struct {
	Document  *models.UploadedDocument `json:"document"`
	Readable  bool                     `json:"readable"`
	TextChars int                      `json:"text_chars"`
	Warning   string                   `json:"warning,omitempty"`
}

// MaxFileSize returns the upload limit in bytes
func (s *DocumentService) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *DocumentService) validate(f *UploadFile) error {
	if int64(len(f.Data)) > s.maxFileSize {
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, f.Filename, s.maxFileSize)
	}
	mimeType := strings.TrimSpace(strings.SplitN(f.MimeType, ";", 2)[0])
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = extract.MimeTypeFor(f.Filename)
	}
	if !s.allowedMimeTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFile, f.Filename, mimeType)
	}
	f.MimeType = mimeType
	return nil
}

// Text returns the plain text of a document. An extraction failure is reported
// as ErrDocumentUnreadable and the text is treated as empty.
func (s *DocumentService) Text(doc *models.UploadedDocument) (string, error) {
	if doc == nil {
		return "", nil
	}
	text, err := doc.Text(s.extractor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentUnreadable, err)
	}
	return text, nil
}

func (s *DocumentService) status(doc *models.UploadedDocument) DocumentStatus {
	st := DocumentStatus{Document: doc}
	text, err := s.Text(doc)
	if err != nil {
		st.Warning = err.Error()
		s.logger.Warn().Err(err).Str("filename", doc.Filename).Msg("document unreadable, continuing without its text")
		return st
	}
	st.Readable = true
	st.TextChars = len([]rune(text))
	return st
}

// UploadChallenged replaces the challenged document of the session.
// The caller must hold the session.
func (s *DocumentService) UploadChallenged(sess *session.Session, f UploadFile) (*DocumentStatus, error) {
	if err := s.validate(&f); err != nil {
		return nil, err
	}
	doc := models.NewUploadedDocument(f.Filename, f.MimeType, f.Data)
	sess.ChallengedDocument = doc

	st := s.status(doc)
	return &st, nil
}

// UploadReferences replaces the set of reference documents of the session.
// Nothing is changed if any file is rejected. The caller must hold the session.
func (s *DocumentService) UploadReferences(sess *session.Session, files []UploadFile) ([]DocumentStatus, error) {
	if len(files) == 0 {
		return nil, errors.New("no files uploaded")
	}
	for i := range files {
		if err := s.validate(&files[i]); err != nil {
			return nil, err
		}
	}

	docs := make([]*models.UploadedDocument, 0, len(files))
	statuses := make([]DocumentStatus, 0, len(files))
	for _, f := range files {
		doc := models.NewUploadedDocument(f.Filename, f.MimeType, f.Data)
		docs = append(docs, doc)
		statuses = append(statuses, s.status(doc))
	}
	sess.ReferenceDocuments = docs
	return statuses, nil
}

// ReferenceText concatenates the readable reference documents. Unreadable ones
// contribute no text. The caller must hold the session.
func (s *DocumentService) ReferenceText(sess *session.Session) string {
	var b strings.Builder
	for _, doc := range sess.ReferenceDocuments {
		text, err := s.Text(doc)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString(referenceSeparator)
	}
	return b.String()
}
