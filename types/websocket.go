package types

import "time"

// ProgressMessage represents a WebSocket scan progress update message
type ProgressMessage struct {
	ScanID    string    `json:"scanId"`
	Type      string    `json:"type"`   // "progress", "status", "complete", "error"
	Status    string    `json:"status"` // current scan status
	Found     int       `json:"found"`  // qualifying entries so far
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
