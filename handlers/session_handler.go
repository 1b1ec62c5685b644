package handlers

import (
	"net/http"
	"strings"

	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionHandler handles HTTP requests for sessions and their credentials
type SessionHandler struct {
	store  *session.Store
	logger zerolog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store *session.Store, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess := h.store.Create()
	h.logger.Info().Str("session_id", sess.ID.String()).Msg("session created")
	respondOK(c, http.StatusCreated, sess.Summarize())
}

// GetSession handles GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	respondOK(c, http.StatusOK, sess.Summarize())
}

// DeleteSession handles DELETE /api/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	if err := h.store.Delete(sess.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	h.logger.Info().Str("session_id", sess.ID.String()).Msg("session deleted")
	respondOK(c, http.StatusOK, gin.H{"id": sess.ID, "deleted": true})
}

// SetCredentialsRequest represents the request body for PUT /api/sessions/:id/credentials.
// Omitted fields are left untouched, an empty string clears the key.
type SetCredentialsRequest struct {
	GeminiAPIKey *string `json:"gemini_api_key"`
	SearchAPIKey *string `json:"search_api_key"`
}

// SetCredentials handles PUT /api/sessions/:id/credentials
func (h *SessionHandler) SetCredentials(c *gin.Context) {
	var req SetCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	if req.GeminiAPIKey != nil {
		sess.Credentials.GeminiAPIKey = strings.TrimSpace(*req.GeminiAPIKey)
	}
	if req.SearchAPIKey != nil {
		sess.Credentials.SearchAPIKey = strings.TrimSpace(*req.SearchAPIKey)
	}

	summary := sess.Summarize()
	respondOK(c, http.StatusOK, gin.H{
		"has_gemini_key": summary.HasGeminiKey,
		"has_search_key": summary.HasSearchKey,
	})
}
