package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/renbkna/yt-dlp-ui/config"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthCheck reports service liveness.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      "yt-dlp-ui",
		"download_dir": config.GetDownloadDir(),
		"timestamp":    time.Now().Unix(),
	})
}
