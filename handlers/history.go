package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renbkna/yt-dlp-ui/services"
)

// HistoryHandler serves the archive of finished tasks.
type HistoryHandler struct {
	history *services.History
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history *services.History) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListHistory returns recent archived tasks, newest first.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"tasks": []any{}, "total": 0})
		return
	}

	tasks, err := h.history.Recent(100)
	if err != nil {
		log.Printf("handlers: history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": len(tasks)})
}
