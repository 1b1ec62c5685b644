package handlers

import (
	"fmt"
	"net/http"

	"studiotributario-backend/service"
	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DraftHandler handles HTTP requests for the appeal draft
type DraftHandler struct {
	store   *session.Store
	drafts  *service.DraftService
	exports *service.ExportService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(store *session.Store, drafts *service.DraftService, exports *service.ExportService) *DraftHandler {
	return &DraftHandler{store: store, drafts: drafts, exports: exports}
}

// GenerateDraftRequest represents the request body for POST /api/sessions/:id/draft
type GenerateDraftRequest struct {
	CourtHeading string `json:"court_heading"`
}

// GenerateDraft handles POST /api/sessions/:id/draft
func (h *DraftHandler) GenerateDraft(c *gin.Context) {
	var req GenerateDraftRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	draft, err := h.drafts.GenerateAppeal(c.Request.Context(), sess, service.GenerateAppealRequest{
		CourtHeading: req.CourtHeading,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, draft)
}

// GetDraft handles GET /api/sessions/:id/draft
func (h *DraftHandler) GetDraft(c *gin.Context) {
	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	if sess.Draft == nil {
		respondServiceError(c, service.ErrDraftMissing)
		return
	}
	respondOK(c, http.StatusOK, sess.Draft)
}

// UpdateDraftRequest represents the request body for PUT /api/sessions/:id/draft
type UpdateDraftRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateDraft handles PUT /api/sessions/:id/draft
func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	respondOK(c, http.StatusOK, h.drafts.UpdateDraft(sess, req.Text))
}

// ExportDraft handles GET /api/sessions/:id/draft/export?format=txt|docx
func (h *DraftHandler) ExportDraft(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	out, err := h.exports.Export(c.Request.Context(), sess, format)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.Format.MimeType(), out.Data)
}

// ListArchivedExports handles GET /api/sessions/:id/exports
func (h *DraftHandler) ListArchivedExports(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}

	records, err := h.exports.ListArchived(c.Request.Context(), sess.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"exports": records})
}

// DownloadArchivedExport handles GET /api/sessions/:id/exports/:exportId
func (h *DraftHandler) DownloadArchivedExport(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}
	exportID, err := uuid.Parse(c.Param("exportId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_EXPORT_ID", "Invalid export id format")
		return
	}

	rec, data, err := h.exports.DownloadArchived(c.Request.Context(), sess.ID, exportID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	c.Data(http.StatusOK, rec.MimeType, data)
}
