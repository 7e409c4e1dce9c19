package api

import (
	"net/http"

	"github.com/concave-dev/prefq/internal/api/handlers"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	store, files := s.config.Store, s.config.Media

	// A typed nil *auth.Verifier must not reach the handlers as a non-nil interface
	var verifier handlers.SecretVerifier
	if s.config.Verifier != nil {
		verifier = s.config.Verifier
	}

	// Producer endpoints
	router.POST("/videos", handlers.HandleSubmit(store, files, verifier))
	router.GET("/feedback", handlers.HandleDrain(store))

	// Rater endpoints
	router.GET("/", handlers.HandleRater(store, s.config.RaterReloadSeconds))
	router.GET("/videos/:filename", handlers.HandleServeVideo(files))
	router.POST("/feedback", handlers.HandleFeedback(store, files))
	router.StaticFileFS("/static/web_interface.js", "web/static/web_interface.js", http.FS(webFS))

	// API version prefix
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HandleHealth(s.config.Version, s.startTime, store, files))
		v1.GET("/stats", handlers.HandleStats(store, files))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
