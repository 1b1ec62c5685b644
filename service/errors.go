package service

import "errors"

var (
	// ErrMissingCredential is returned before any network call when a required API token is absent
	ErrMissingCredential = errors.New("missing API credential")
	// ErrDocumentUnreadable marks an uploaded document whose text could not be extracted
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrSearchUnavailable covers every failure talking to the conversational search endpoint
	ErrSearchUnavailable = errors.New("search service unavailable")
	// ErrGenerationUnavailable covers every failure talking to the generative endpoint
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	ErrDocumentMissing   = errors.New("no challenged document uploaded")
	ErrDefectsMissing    = errors.New("defect analysis required before drafting")
	ErrDraftMissing      = errors.New("no draft to export")
	ErrUnsupportedFile   = errors.New("file type not allowed")
	ErrFileTooLarge      = errors.New("file exceeds maximum size")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrArchiveDisabled   = errors.New("export archive not enabled")
	ErrExportNotFound    = errors.New("archived export not found")
)
