package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/renbkna/yt-dlp-ui/services"
	"github.com/renbkna/yt-dlp-ui/types"
)

// FileHandler exposes the downloaded-file listing, streaming and
// cleanup endpoints.
type FileHandler struct {
	files *services.FileService
}

// NewFileHandler creates a new file handler.
func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// ListFiles returns every downloaded media file.
func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.files.ListDownloads()
	if err != nil {
		log.Printf("handlers: list files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to scan files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

// StreamFile serves a downloaded file with range support.
func (h *FileHandler) StreamFile(c *gin.Context) {
	requested := strings.TrimPrefix(c.Param("filepath"), "/")

	full, err := h.files.Resolve(requested)
	if err != nil {
		var validation *types.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusForbidden, gin.H{"detail": validation.Msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	c.Header("Content-Type", h.files.ContentType(full))
	c.File(full)
}

// cleanupRequest is the body of a cleanup call.
type cleanupRequest struct {
	Days int `json:"days" binding:"required"`
}

// Cleanup removes task output directories older than the given number
// of days.
func (h *FileHandler) Cleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	removed, err := h.files.CleanupOlderThan(req.Days)
	if err != nil {
		var validation *types.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": validation.Msg})
			return
		}
		log.Printf("handlers: cleanup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
