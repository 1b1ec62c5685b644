package handlers

import (
	"errors"
	"net/http"

	"studiotributario-backend/service"
	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles HTTP requests for the sequential jurisprudence search
type SearchHandler struct {
	store  *session.Store
	search *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(store *session.Store, search *service.SearchService) *SearchHandler {
	return &SearchHandler{store: store, search: search}
}

// RunSearchRequest represents the request body for POST /api/sessions/:id/search
type RunSearchRequest struct {
	ExtractMaxims bool `json:"extract_maxims"`
}

// RunSearch handles POST /api/sessions/:id/search. A failing step answers 502
// with the steps completed before it in data.
func (h *SearchHandler) RunSearch(c *gin.Context) {
	var req RunSearchRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	result, err := h.search.RunSequential(c.Request.Context(), sess, service.RunSearchRequest{
		ExtractMaxims: req.ExtractMaxims,
	})
	if err != nil {
		if result != nil && errors.Is(err, service.ErrSearchUnavailable) {
			status, code := errorCode(err)
			_ = c.Error(err)
			c.JSON(status, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": err.Error(),
				},
				"data": result,
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// GetResults handles GET /api/sessions/:id/search/results
func (h *SearchHandler) GetResults(c *gin.Context) {
	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	respondOK(c, http.StatusOK, gin.H{
		"results":            h.search.Results(sess),
		"conversation_turns": sess.Conversation.Len(),
	})
}
