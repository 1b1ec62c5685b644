package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"studiotributario-backend/service"
	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
)

const (
	// multipartOverhead covers boundaries, part headers and form fields
	multipartOverhead = 64 << 10
	maxReferenceFiles = 20
)

// DocumentHandler handles document uploads into a session
type DocumentHandler struct {
	store     *session.Store
	documents *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(store *session.Store, documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{store: store, documents: documents}
}

// limitBody caps the request body before the multipart form is parsed
func (h *DocumentHandler) limitBody(c *gin.Context, files int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.documents.MaxFileSize()*files+multipartOverhead)
}

// respondFormError reports a multipart parse failure, distinguishing an oversized body
func respondFormError(c *gin.Context, err error, missing string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	respondError(c, http.StatusBadRequest, "MISSING_FILE", missing)
}

// readUpload reads at most one byte over the limit so the service can reject oversized files
func (h *DocumentHandler) readUpload(fh *multipart.FileHeader) (service.UploadFile, error) {
	file, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.documents.MaxFileSize()+1))
	if err != nil {
		return service.UploadFile{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return service.UploadFile{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

// UploadChallenged handles POST /api/sessions/:id/documents/challenged
func (h *DocumentHandler) UploadChallenged(c *gin.Context) {
	h.limitBody(c, 1)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondFormError(c, err, "File is required")
		return
	}
	upload, err := h.readUpload(fileHeader)
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_OPEN_ERROR", err.Error())
		return
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	status, err := h.documents.UploadChallenged(sess, upload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, status)
}

// UploadReferences handles POST /api/sessions/:id/documents/references.
// The uploaded set replaces the previous one.
func (h *DocumentHandler) UploadReferences(c *gin.Context) {
	h.limitBody(c, maxReferenceFiles)
	form, err := c.MultipartForm()
	if err != nil {
		respondFormError(c, err, "At least one file is required in field \"files\"")
		return
	}
	if len(form.File["files"]) == 0 {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "At least one file is required in field \"files\"")
		return
	}
	if len(form.File["files"]) > maxReferenceFiles {
		respondError(c, http.StatusBadRequest, "TOO_MANY_FILES",
			fmt.Sprintf("At most %d reference files can be uploaded", maxReferenceFiles))
		return
	}

	uploads := make([]service.UploadFile, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		upload, err := h.readUpload(fh)
		if err != nil {
			respondError(c, http.StatusBadRequest, "FILE_OPEN_ERROR", err.Error())
			return
		}
		uploads = append(uploads, upload)
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	statuses, err := h.documents.UploadReferences(sess, uploads)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"documents": statuses})
}
