package handlers

import (
	"log"
	"net/http"

	"audiodex/services"
	"audiodex/websocket"

	"github.com/gin-gonic/gin"
)

// ScanHandler handles scan management endpoints
type ScanHandler struct {
	scanQueue services.ScanQueue
	hub       websocket.Hub
}

// NewScanHandler creates a new scan handler
func NewScanHandler(sq services.ScanQueue, hub websocket.Hub) *ScanHandler {
	return &ScanHandler{
		scanQueue: sq,
		hub:       hub,
	}
}

// TriggerScan queues a fresh scan of the library
func (h *ScanHandler) TriggerScan(c *gin.Context) {
	job := h.scanQueue.Trigger()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Scan queued successfully",
		"scan":    job,
	})
}

// GetAllScans returns all scan jobs
func (h *ScanHandler) GetAllScans(c *gin.Context) {
	jobs := h.scanQueue.GetAllJobs()
	c.JSON(http.StatusOK, gin.H{
		"scans": jobs,
		"total": len(jobs),
	})
}

// GetScan returns a specific scan job by ID
func (h *ScanHandler) GetScan(c *gin.Context) {
	scanID := c.Param("scanId")
	job, exists := h.scanQueue.GetJob(scanID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "scan not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scan": job,
	})
}

// CancelScan cancels a queued scan job
func (h *ScanHandler) CancelScan(c *gin.Context) {
	scanID := c.Param("scanId")
	cancelled := h.scanQueue.CancelJob(scanID)
	if !cancelled {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "scan cannot be cancelled (not found or already running)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "scan cancelled successfully",
	})
}

// HandleWebSocketConnection handles WebSocket connections for specific scan progress
func (h *ScanHandler) HandleWebSocketConnection(c *gin.Context) {
	scanID := c.Param("scanId")
	if scanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scan ID is required"})
		return
	}

	// Verify scan exists
	if _, exists := h.scanQueue.GetJob(scanID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, scanID)
	h.hub.RegisterClient(client)
	client.StartPumps()
}

// HandleWebSocketAllConnection handles WebSocket connections for all scans
func (h *ScanHandler) HandleWebSocketAllConnection(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, "all")
	h.hub.RegisterClient(client)
	client.StartPumps()
}
