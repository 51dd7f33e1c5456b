package cmd

import (
	"context"
	"log"
	"os"
	"strconv"

	"audiodex/config"
	"audiodex/handlers"
	"audiodex/middleware"
	"audiodex/services"
	"audiodex/types"
	"audiodex/websocket"

	"github.com/gin-gonic/gin"
)

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	library := config.GetLibraryLocation()

	// Permission gate at the boundary: refuse to start over an unreadable library
	gate := services.FSGate{Root: library}
	if decision := <-gate.Request(context.Background()); decision != types.Granted {
		log.Fatalf("Media library %s is not readable; grant access or set AUDIODEX_LIBRARY", library)
	}

	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	index := services.NewFSIndex(library)
	scanner := services.NewScanner(index, config.GetMinDurationMS())

	scanQueue := services.NewScanQueue(scanner, library, hub)
	scanQueue.Start()

	// Populate the snapshot at startup; clients can re-trigger via the API
	scanQueue.Trigger()

	r := NewRouter(scanQueue, hub)

	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("Audiodex server starting on port %s", portStr)
	log.Printf("Media library: %s", library)
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// NewRouter builds the gin engine with all middleware and routes wired.
func NewRouter(scanQueue services.ScanQueue, hub websocket.Hub) *gin.Engine {
	scanHandler := handlers.NewScanHandler(scanQueue, hub)
	libraryHandler := handlers.NewLibraryHandler(scanQueue)
	healthHandler := handlers.NewHealthHandler()
	settingsHandler := handlers.NewSettingsHandler()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())

	setupRoutes(r, scanHandler, libraryHandler, healthHandler, settingsHandler)
	return r
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, scanHandler *handlers.ScanHandler, libraryHandler *handlers.LibraryHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Scan management endpoints
		scansGroup := apiGroup.Group("/scans")
		{
			scansGroup.POST("", scanHandler.TriggerScan)
			scansGroup.GET("", scanHandler.GetAllScans)
			scansGroup.GET("/:scanId", scanHandler.GetScan)
			scansGroup.DELETE("/:scanId", scanHandler.CancelScan)
		}

		// WebSocket endpoints for real-time scan progress
		wsGroup := apiGroup.Group("/ws")
		{
			wsGroup.GET("/scans/:scanId", scanHandler.HandleWebSocketConnection)
			wsGroup.GET("/scans", scanHandler.HandleWebSocketAllConnection)
		}

		// Library listing and byte-fetch endpoints
		apiGroup.GET("/library", libraryHandler.ListEntries)
		apiGroup.GET("/library/stream/*locator", libraryHandler.StreamEntry)

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
