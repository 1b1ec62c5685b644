package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"studiotributario-backend/models"
	"studiotributario-backend/service"
	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindOptionalJSON binds a JSON body that may be absent. An empty body, with or
// without a Content-Length, leaves req at its zero value.
func bindOptionalJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// errorCode maps an error kind to its HTTP status and error code
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, session.ErrSessionBusy):
		return http.StatusConflict, "SESSION_BUSY"
	case errors.Is(err, service.ErrMissingCredential):
		return http.StatusBadRequest, "MISSING_CREDENTIAL"
	case errors.Is(err, models.ErrInvalidVenue):
		return http.StatusBadRequest, "INVALID_VENUE"
	case errors.Is(err, service.ErrSearchUnavailable):
		return http.StatusBadGateway, "SEARCH_UNAVAILABLE"
	case errors.Is(err, service.ErrGenerationUnavailable):
		return http.StatusBadGateway, "GENERATION_UNAVAILABLE"
	case errors.Is(err, service.ErrDocumentMissing):
		return http.StatusBadRequest, "DOCUMENT_MISSING"
	case errors.Is(err, service.ErrDefectsMissing):
		return http.StatusBadRequest, "DEFECTS_MISSING"
	case errors.Is(err, service.ErrDraftMissing):
		return http.StatusBadRequest, "DRAFT_MISSING"
	case errors.Is(err, service.ErrDocumentUnreadable):
		return http.StatusUnprocessableEntity, "DOCUMENT_UNREADABLE"
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, service.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE"
	case errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT"
	case errors.Is(err, service.ErrArchiveDisabled):
		return http.StatusNotFound, "ARCHIVE_DISABLED"
	case errors.Is(err, service.ErrExportNotFound):
		return http.StatusNotFound, "EXPORT_NOT_FOUND"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "REQUEST_CANCELED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func respondServiceError(c *gin.Context, err error) {
	status, code := errorCode(err)
	_ = c.Error(err)
	respondError(c, status, code, err.Error())
}

// lookupSession resolves the :id path parameter, writing the error response on failure
func lookupSession(c *gin.Context, store *session.Store) (*session.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_SESSION_ID", "Invalid session id format")
		return nil, false
	}
	sess, err := store.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return sess, true
}

// acquireSession resolves the session and takes exclusive ownership of it.
// The caller must call release when ok is true.
func acquireSession(c *gin.Context, store *session.Store) (sess *session.Session, release func(), ok bool) {
	sess, ok = lookupSession(c, store)
	if !ok {
		return nil, nil, false
	}
	release, err := sess.Acquire()
	if err != nil {
		respondServiceError(c, err)
		return nil, nil, false
	}
	return sess, release, true
}
