package handlers

import (
	"studiotributario-backend/service"
	"studiotributario-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Services groups what the handlers need
type Services struct {
	Store     *session.Store
	Search    *service.SearchService
	Documents *service.DocumentService
	Analysis  *service.AnalysisService
	Drafts    *service.DraftService
	Exports   *service.ExportService
	Logger    zerolog.Logger
}

// RegisterRoutes mounts the session API on the given group
func RegisterRoutes(api *gin.RouterGroup, s Services) {
	sessionHandler := NewSessionHandler(s.Store, s.Logger)
	filterHandler := NewFilterHandler(s.Store)
	searchHandler := NewSearchHandler(s.Store, s.Search)
	documentHandler := NewDocumentHandler(s.Store, s.Documents)
	analysisHandler := NewAnalysisHandler(s.Store, s.Analysis)
	draftHandler := NewDraftHandler(s.Store, s.Drafts, s.Exports)

	api.GET("/venues", filterHandler.ListVenues)

	// Session endpoints
	api.POST("/sessions", sessionHandler.CreateSession)
	api.GET("/sessions/:id", sessionHandler.GetSession)
	api.DELETE("/sessions/:id", sessionHandler.DeleteSession)
	api.PUT("/sessions/:id/credentials", sessionHandler.SetCredentials)

	// Filter endpoints
	api.GET("/sessions/:id/filters", filterHandler.GetFilters)
	api.PATCH("/sessions/:id/filters", filterHandler.UpdateFilters)

	// Search endpoints
	api.POST("/sessions/:id/search", searchHandler.RunSearch)
	api.GET("/sessions/:id/search/results", searchHandler.GetResults)

	// Document endpoints
	api.POST("/sessions/:id/documents/challenged", documentHandler.UploadChallenged)
	api.POST("/sessions/:id/documents/references", documentHandler.UploadReferences)

	// Analysis and draft endpoints
	api.POST("/sessions/:id/analysis", analysisHandler.AnalyzeDefects)
	api.GET("/sessions/:id/analysis", analysisHandler.GetAnalysis)
	api.POST("/sessions/:id/draft", draftHandler.GenerateDraft)
	api.GET("/sessions/:id/draft", draftHandler.GetDraft)
	api.PUT("/sessions/:id/draft", draftHandler.UpdateDraft)
	api.GET("/sessions/:id/draft/export", draftHandler.ExportDraft)
	api.GET("/sessions/:id/exports", draftHandler.ListArchivedExports)
	api.GET("/sessions/:id/exports/:exportId", draftHandler.DownloadArchivedExport)
}
