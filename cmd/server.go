package cmd

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/renbkna/yt-dlp-ui/config"
	"github.com/renbkna/yt-dlp-ui/engine"
	"github.com/renbkna/yt-dlp-ui/handlers"
	"github.com/renbkna/yt-dlp-ui/middleware"
	"github.com/renbkna/yt-dlp-ui/services"
	"github.com/renbkna/yt-dlp-ui/websocket"
)

// StartWebServer wires the download pipeline and serves the API.
func StartWebServer(port int) {
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	downloadDir := config.GetDownloadDir()
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		log.Fatalf("Cannot create download directory %s: %v", downloadDir, err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	cookieStore, err := services.NewCookieStore(config.GetCookieDir(), config.GetCookieExpiry())
	if err != nil {
		log.Fatalf("Cannot initialize cookie store: %v", err)
	}
	cookieStore.StartSweeper(15 * time.Minute)

	history, err := services.OpenHistory(config.GetDataDir())
	if err != nil {
		// the archive is a convenience, not a dependency
		log.Printf("History store unavailable, continuing without it: %v", err)
		history = nil
	}

	library := engine.NewLibraryRunner()
	chain := engine.NewStrategyChain(engine.NewProcessRunner(config.GetYtdlpBin()), library)

	registry := services.NewRegistry()
	orchestrator := services.NewOrchestrator(registry, cookieStore, library, hub, history, downloadDir, config.GetBrowser())
	orchestrator.Start(config.GetWorkerCount())

	media := services.NewMediaService(chain, cookieStore, config.GetBrowser(), config.GetLookupTimeout())
	files := services.NewFileService(downloadDir)

	downloadHandler := handlers.NewDownloadHandler(orchestrator, registry, hub)
	mediaHandler := handlers.NewMediaHandler(media)
	cookieHandler := handlers.NewCookieHandler(cookieStore)
	fileHandler := handlers.NewFileHandler(files)
	historyHandler := handlers.NewHistoryHandler(history)
	healthHandler := handlers.NewHealthHandler()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())

	setupRoutes(r, downloadHandler, mediaHandler, cookieHandler, fileHandler, historyHandler, healthHandler)

	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("yt-dlp-ui server starting on port %s", portStr)
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(r *gin.Engine, downloads *handlers.DownloadHandler, media *handlers.MediaHandler, cookies *handlers.CookieHandler, files *handlers.FileHandler, history *handlers.HistoryHandler, health *handlers.HealthHandler) {
	r.GET("/health", health.HealthCheck)

	api := r.Group("/api")
	{
		api.POST("/download", downloads.StartDownload)
		api.GET("/status/:task_id", downloads.GetStatus)
		api.GET("/downloads", downloads.ListTasks)
		api.DELETE("/download/:task_id", downloads.CancelDownload)

		api.GET("/info", media.GetInfo)
		api.POST("/info", media.GetInfo)
		api.GET("/formats", media.GetFormats)
		api.POST("/formats", media.GetFormats)

		api.POST("/cookies", cookies.UploadCookies)

		api.GET("/files", files.ListFiles)
		api.GET("/files/stream/*filepath", files.StreamFile)
		api.POST("/cleanup", files.Cleanup)

		api.GET("/history", history.ListHistory)

		api.GET("/ws/:task_id", downloads.HandleWebSocket)
	}
}
