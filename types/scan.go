package types

import "time"

// ScanStatus represents the current status of a scan job
type ScanStatus string

const (
	ScanStatusQueued    ScanStatus = "queued"
	ScanStatusScanning  ScanStatus = "scanning"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusEmpty     ScanStatus = "empty"
	ScanStatusFailed    ScanStatus = "failed"
	ScanStatusCancelled ScanStatus = "cancelled"
)

// ScanJob represents one complete query-and-filter pass over the media index
type ScanJob struct {
	ID          string     `json:"id"`
	Status      ScanStatus `json:"status"`
	Library     string     `json:"library"`
	Found       int        `json:"found"`    // entries that passed the filter
	Examined    int        `json:"examined"` // rows read from the index
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
