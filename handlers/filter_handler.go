package handlers

import (
	"errors"
	"net/http"

	"studiotributario-backend/models"
	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
)

// FilterHandler handles HTTP requests for the search filters of a session
type FilterHandler struct {
	store *session.Store
}

// NewFilterHandler creates a new filter handler
func NewFilterHandler(store *session.Store) *FilterHandler {
	return &FilterHandler{store: store}
}

// GetFilters handles GET /api/sessions/:id/filters
func (h *FilterHandler) GetFilters(c *gin.Context) {
	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	respondOK(c, http.StatusOK, sess.Filters)
}

// UpdateFilters handles PATCH /api/sessions/:id/filters
func (h *FilterHandler) UpdateFilters(c *gin.Context) {
	var patch models.SearchFiltersPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	sess, release, ok := acquireSession(c, h.store)
	if !ok {
		return
	}
	defer release()

	if err := sess.Filters.Apply(patch); err != nil {
		if errors.Is(err, models.ErrInvalidVenue) {
			respondServiceError(c, err)
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_FILTERS", err.Error())
		return
	}
	respondOK(c, http.StatusOK, sess.Filters)
}

// ListVenues handles GET /api/venues?court_level=
func (h *FilterHandler) ListVenues(c *gin.Context) {
	level := models.CourtLevel(c.DefaultQuery("court_level", string(models.CourtLevelAny)))
	if level.Label() == "" {
		respondError(c, http.StatusBadRequest, "INVALID_COURT_LEVEL", "Unknown court level: "+string(level))
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"court_level": level,
		"venues":      models.ValidVenues(level),
	})
}
