package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"studiotributario-backend/export"
	"studiotributario-backend/models"
	"studiotributario-backend/repository"
	"studiotributario-backend/session"
	"studiotributario-backend/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const exportBaseName = "ricorso_bozza"

// ExportRecordStore keeps the records of archived exports
type ExportRecordStore interface {
	Create(ctx context.Context, rec *models.ExportRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExportRecord, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ExportRecord, error)
}

// ExportService serializes the draft and optionally archives the exported file
type ExportService struct {
	storage  storage.Storage
	recorder ExportRecordStore
	archive  bool
	logger   zerolog.Logger
}

// ExportServiceOption is a functional option for ExportService
type ExportServiceOption func(*ExportService)

// ExportWithStorage sets the archive storage and enables archiving
func ExportWithStorage(st storage.Storage) ExportServiceOption {
	return func(s *ExportService) {
		s.storage = st
		s.archive = st != nil
	}
}

// ExportWithRecorder sets the repository recording archived exports
func ExportWithRecorder(r ExportRecordStore) ExportServiceOption {
	return func(s *ExportService) {
		s.recorder = r
	}
}

// ExportWithLogger sets the logger
func ExportWithLogger(logger zerolog.Logger) ExportServiceOption {
	return func(s *ExportService) {
		s.logger = logger
	}
}

// NewExportService creates a new export service
func NewExportService(opts ...ExportServiceOption) *ExportService {
	s := &ExportService{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseExportFormat validates a requested export format
func ParseExportFormat(v string) (models.ExportFormat, error) {
	switch models.ExportFormat(strings.ToLower(strings.TrimSpace(v))) {
	case models.ExportFormatText, "":
		return models.ExportFormatText, nil
	case models.ExportFormatDocx:
		return models.ExportFormatDocx, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, v)
	}
}

// Export serializes the current draft. Archiving failures are logged and never
// fail the export. The caller must hold the session.
func (s *ExportService) Export(ctx context.Context, sess *session.Session, format models.ExportFormat) (*models.ExportedDraft, error) {
	if sess.Draft == nil || strings.TrimSpace(sess.Draft.Text) == "" {
		return nil, ErrDraftMissing
	}

	out := &models.ExportedDraft{
		Filename: exportBaseName + "." + string(format),
		Format:   format,
	}
	switch format {
	case models.ExportFormatText:
		out.Data = export.Text(sess.Draft.Text)
	case models.ExportFormatDocx:
		data, err := export.Docx(sess.Draft.Text)
		if err != nil {
			return nil, err
		}
		out.Data = data
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if s.archive {
		if err := s.archiveExport(ctx, sess.ID, out); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("failed to archive export")
		}
	}
	return out, nil
}

func (s *ExportService) archiveExport(ctx context.Context, sessionID uuid.UUID, out *models.ExportedDraft) error {
	id := uuid.New()
	storagePath, err := s.storage.Upload(ctx, id, out.Filename, bytes.NewReader(out.Data))
	if err != nil {
		return err
	}

	if s.recorder == nil {
		return nil
	}
	rec := &models.ExportRecord{
		ID:          id,
		SessionID:   sessionID,
		Filename:    out.Filename,
		Format:      out.Format,
		MimeType:    out.Format.MimeType(),
		Size:        int64(len(out.Data)),
		StoragePath: storagePath,
		CreatedAt:   time.Now(),
	}
	if err := s.recorder.Create(ctx, rec); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn().Err(delErr).Str("storage_path", storagePath).Msg("failed to clean up archived export")
		}
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// ListArchived returns the archived exports of a session, newest first
func (s *ExportService) ListArchived(ctx context.Context, sessionID uuid.UUID) ([]models.ExportRecord, error) {
	if !s.archive || s.recorder == nil {
		return nil, ErrArchiveDisabled
	}
	return s.recorder.ListBySession(ctx, sessionID)
}

// DownloadArchived reads back an archived export of the session
func (s *ExportService) DownloadArchived(ctx context.Context, sessionID, exportID uuid.UUID) (*models.ExportRecord, []byte, error) {
	if !s.archive || s.recorder == nil {
		return nil, nil, ErrArchiveDisabled
	}

	rec, err := s.recorder.GetByID(ctx, exportID)
	if errors.Is(err, repository.ErrExportNotFound) || (err == nil && rec.SessionID != sessionID) {
		return nil, nil, ErrExportNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Download(ctx, rec.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download %s: %w", rec.StoragePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, err
	}
	return rec, data, nil
}
