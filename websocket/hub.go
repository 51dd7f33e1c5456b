package websocket

import (
	"log"
	"sync"
	"time"

	"audiodex/types"
)

// Hub interface defines the methods for managing WebSocket connections
type Hub interface {
	Run()
	BroadcastProgress(scanID, msgType, status string, found int, message string)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// hub maintains the set of active clients and broadcasts messages to them
type hub struct {
	// Registered clients mapped by scan ID
	clients map[string]map[*Client]bool

	// Broadcast channel for sending messages to all clients of a scan
	broadcast chan types.ProgressMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.ProgressMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main event loop
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.scanID] == nil {
				h.clients[client.scanID] = make(map[*Client]bool)
			}
			h.clients[client.scanID][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected for scan %s", client.scanID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.scanID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.scanID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected for scan %s", client.scanID)

		case message := <-h.broadcast:
			h.mu.RLock()
			// Send to clients watching this specific scan
			if clients, ok := h.clients[message.ScanID]; ok {
				for client := range clients {
					select {
					case client.send <- message:
					default:
						close(client.send)
						delete(clients, client)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, message.ScanID)
				}
			}

			// Also send to "all" clients for any scan update
			if allClients, ok := h.clients["all"]; ok {
				for client := range allClients {
					select {
					case client.send <- message:
					default:
						close(client.send)
						delete(allClients, client)
					}
				}
				if len(allClients) == 0 {
					delete(h.clients, "all")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastProgress sends a progress message to all clients of a specific scan
func (h *hub) BroadcastProgress(scanID, msgType, status string, found int, message string) {
	progressMsg := types.ProgressMessage{
		ScanID:    scanID,
		Type:      msgType,
		Status:    status,
		Found:     found,
		Message:   message,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- progressMsg:
	default:
		log.Printf("WebSocket broadcast channel full, dropping message for scan %s", scanID)
	}
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
