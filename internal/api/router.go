package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spv-projection/internal/api/handlers"
	"spv-projection/internal/api/middleware"
	"spv-projection/internal/config"
	"spv-projection/internal/store"
)

// NewRouter wires middleware and routes. st may be nil, in which case the
// scenario routes are not registered.
func NewRouter(svc config.Service, log *zap.Logger, st *store.Store) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS(svc.CORSOrigins))
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler(log))

	projectionHandler := handlers.NewProjectionHandler(log)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/defaults", handlers.GetDefaults)
		api.GET("/stress-tests", handlers.ListStressTests)

		api.POST("/projection", projectionHandler.RunProjection)
		api.POST("/projection/compare", projectionHandler.CompareProjections)
		api.POST("/projection/report", projectionHandler.RenderReport)

		if st != nil {
			scenarioHandler := handlers.NewScenarioHandler(st, log)
			api.GET("/scenarios", scenarioHandler.ListScenarios)
			api.GET("/scenarios/:name", scenarioHandler.GetScenario)
			api.PUT("/scenarios/:name", scenarioHandler.SaveScenario)
			api.DELETE("/scenarios/:name", scenarioHandler.DeleteScenario)
		}
	}

	serveStatic(router, svc.StaticDir, log)
	return router
}

// serveStatic serves the single-page app from dir when it exists. Unknown
// non-API paths fall back to index.html for client-side routing.
func serveStatic(router *gin.Engine, dir string, log *zap.Logger) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Info("static directory not found, skipping static file serving", zap.String("dir", dir))
		return
	}
	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))

	index := filepath.Join(dir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		// Don't serve index.html for API routes
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(index)
	})
	log.Info("serving static files", zap.String("dir", dir))
}
