package repository

import (
	"context"
	"errors"

	"studiotributario-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrExportNotFound is returned when no archived export has the requested ID
var ErrExportNotFound = errors.New("export not found")

// ExportRepository handles database operations for archived exports
type ExportRepository struct {
	db *pgxpool.Pool
}

// NewExportRepository creates a new export repository
func NewExportRepository(db *pgxpool.Pool) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create records an archived export
func (r *ExportRepository) Create(ctx context.Context, rec *models.ExportRecord) error {
	query := `
		INSERT INTO exports (
			id, session_id, filename, format, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		rec.ID,
		rec.SessionID,
		rec.Filename,
		rec.Format,
		rec.MimeType,
		rec.Size,
		rec.StoragePath,
	).Scan(&rec.CreatedAt)
}

// GetByID retrieves an archived export by ID
func (r *ExportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExportRecord, error) {
	rec := &models.ExportRecord{}
	query := `
		SELECT id, session_id, filename, format, mime_type, size, storage_path, created_at
		FROM exports
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.Filename,
		&rec.Format,
		&rec.MimeType,
		&rec.Size,
		&rec.StoragePath,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ListBySession retrieves the exports of a session, newest first
func (r *ExportRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ExportRecord, error) {
	query := `
		SELECT id, session_id, filename, format, mime_type, size, storage_path, created_at
		FROM exports
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.ExportRecord, 0)
	for rows.Next() {
		var rec models.ExportRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Filename,
			&rec.Format,
			&rec.MimeType,
			&rec.Size,
			&rec.StoragePath,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
