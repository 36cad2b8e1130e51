package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renbkna/yt-dlp-ui/services"
	"github.com/renbkna/yt-dlp-ui/types"
	"github.com/renbkna/yt-dlp-ui/websocket"
)

// DownloadHandler exposes download submission, status polling,
// cancellation and the WebSocket progress feed.
type DownloadHandler struct {
	orchestrator *services.Orchestrator
	registry     *services.Registry
	hub          websocket.Hub
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(orchestrator *services.Orchestrator, registry *services.Registry, hub websocket.Hub) *DownloadHandler {
	return &DownloadHandler{orchestrator: orchestrator, registry: registry, hub: hub}
}

// StartDownload accepts a download request and schedules it.
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req types.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "best"
	}

	taskID, err := h.orchestrator.Submit(req)
	if err != nil {
		log.Printf("handlers: submit download: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not schedule download"})
		return
	}

	c.JSON(http.StatusOK, types.DownloadResponse{
		TaskID:  taskID,
		Status:  "started",
		Message: "Download started",
	})
}

// GetStatus returns the current snapshot of a task.
func (h *DownloadHandler) GetStatus(c *gin.Context) {
	task, ok := h.registry.Get(c.Param("task_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// ListTasks returns snapshots of every known task.
func (h *DownloadHandler) ListTasks(c *gin.Context) {
	tasks := h.registry.List()
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": len(tasks)})
}

// CancelDownload requests best-effort cancellation of a task.
func (h *DownloadHandler) CancelDownload(c *gin.Context) {
	taskID := c.Param("task_id")
	if !h.orchestrator.Cancel(taskID) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "task not found or already finished"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}

// HandleWebSocket subscribes the caller to one task's progress feed,
// or to every task with the id "all".
func (h *DownloadHandler) HandleWebSocket(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID != "all" {
		if _, ok := h.registry.Get(taskID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
			return
		}
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("handlers: websocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, taskID)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
