package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spv-projection/internal/config"
	"spv-projection/internal/scenario"
)

// GetDefaults handles GET /api/v1/defaults. The body is a complete config in
// request shape, so it can be edited and posted back.
func GetDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, config.FromSettings("default", config.Default()))
}

// ListStressTests handles GET /api/v1/stress-tests
func ListStressTests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stress_tests": scenario.Presets()})
}
