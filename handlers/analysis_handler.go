package handlers

import (
	"net/http"

	"studiotributario-backend/service"
	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles the defect analysis of the challenged act
type AnalysisHandler struct {
	store    *session.Store
	analysis *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(store *session.Store, analysis *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{store: store, analysis: analysis}
}

// AnalyzeDefects handles POST /api/sessions/:id/analysis
func (h *AnalysisHandler) AnalyzeDefects(c *gin.Context) {
	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	analysis, err := h.analysis.AnalyzeDefects(c.Request.Context(), sess)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, analysis)
}

// GetAnalysis handles GET /api/sessions/:id/analysis
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	if sess.Defects == nil {
		respondServiceError(c, service.ErrDefectsMissing)
		return
	}
	respondOK(c, http.StatusOK, sess.Defects)
}
