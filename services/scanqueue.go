package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"audiodex/types"
	"audiodex/websocket"

	"github.com/google/uuid"
)

// ScanQueue interface defines the methods for managing scan jobs. Scans are
// processed by a single worker, so two scans never overlap; the presented
// snapshot is replaced wholesale when a scan completes.
type ScanQueue interface {
	Start()
	Trigger() types.ScanJob
	GetJob(id string) (types.ScanJob, bool)
	GetAllJobs() []types.ScanJob
	CancelJob(id string) bool
	Snapshot() []types.AudioEntry
}

// scanQueue manages scan jobs
type scanQueue struct {
	scanner  *Scanner
	library  string
	jobs     map[string]*types.ScanJob
	queue    chan *types.ScanJob
	snapshot []types.AudioEntry
	mu       sync.RWMutex
	hub      websocket.Hub
}

// NewScanQueue creates a new scan queue over the given scanner.
func NewScanQueue(scanner *Scanner, library string, hub websocket.Hub) ScanQueue {
	return &scanQueue{
		scanner: scanner,
		library: library,
		jobs:    make(map[string]*types.ScanJob),
		queue:   make(chan *types.ScanJob, 16),
		hub:     hub,
	}
}

// Trigger queues a new scan of the library. The returned job is a copy;
// the queue owns the live record.
func (sq *scanQueue) Trigger() types.ScanJob {
	job := &types.ScanJob{
		ID:        uuid.New().String(),
		Status:    types.ScanStatusQueued,
		Library:   sq.library,
		CreatedAt: time.Now(),
	}

	sq.mu.Lock()
	sq.jobs[job.ID] = job
	queued := *job
	sq.mu.Unlock()

	// The send must happen outside the lock: when the buffer is full the
	// caller blocks here, and the worker needs the lock to drain the queue.
	sq.queue <- job

	return queued
}

// GetJob retrieves a copy of a scan job by ID
func (sq *scanQueue) GetJob(id string) (types.ScanJob, bool) {
	sq.mu.RLock()
	defer sq.mu.RUnlock()
	job, exists := sq.jobs[id]
	if !exists {
		return types.ScanJob{}, false
	}
	return *job, true
}

// GetAllJobs returns copies of all scan jobs
func (sq *scanQueue) GetAllJobs() []types.ScanJob {
	sq.mu.RLock()
	defer sq.mu.RUnlock()

	jobs := make([]types.ScanJob, 0, len(sq.jobs))
	for _, job := range sq.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// CancelJob cancels a queued scan. A scan that is already running is left to
// finish; its result simply replaces the snapshot as usual.
func (sq *scanQueue) CancelJob(id string) bool {
	sq.mu.Lock()
	defer sq.mu.Unlock()

	job, exists := sq.jobs[id]
	if !exists {
		return false
	}

	if job.Status == types.ScanStatusQueued {
		job.Status = types.ScanStatusCancelled
		now := time.Now()
		job.CompletedAt = &now
		return true
	}

	return false
}

// Snapshot returns the entries produced by the most recent completed scan.
func (sq *scanQueue) Snapshot() []types.AudioEntry {
	sq.mu.RLock()
	defer sq.mu.RUnlock()
	return sq.snapshot
}

// setStatus updates a job's status and broadcasts the transition.
func (sq *scanQueue) setStatus(id string, status types.ScanStatus, errorMsg string) {
	sq.mu.Lock()
	defer sq.mu.Unlock()

	job, exists := sq.jobs[id]
	if !exists {
		return
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	now := time.Now()
	switch status {
	case types.ScanStatusScanning:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case types.ScanStatusCompleted, types.ScanStatusEmpty, types.ScanStatusFailed, types.ScanStatusCancelled:
		job.CompletedAt = &now
	}

	if sq.hub != nil {
		msgType := "status"
		message := string(status)

		switch status {
		case types.ScanStatusCompleted:
			msgType = "complete"
			message = fmt.Sprintf("Scan found %d audio files", job.Found)
		case types.ScanStatusEmpty:
			msgType = "complete"
			message = "No audio files found. Ensure you have MP3s in your music folder."
		case types.ScanStatusFailed:
			msgType = "error"
			message = errorMsg
		case types.ScanStatusScanning:
			message = fmt.Sprintf("Scanning %s", job.Library)
		}

		sq.hub.BroadcastProgress(id, msgType, string(status), job.Found, message)
	}
}

// updateProgress records the running counters and broadcasts them.
func (sq *scanQueue) updateProgress(id string, examined, found int) {
	sq.mu.Lock()
	defer sq.mu.Unlock()

	job, exists := sq.jobs[id]
	if !exists {
		return
	}

	job.Examined = examined
	job.Found = found

	if sq.hub != nil {
		sq.hub.BroadcastProgress(id, "progress", string(job.Status), found,
			fmt.Sprintf("Examined %d files, %d qualify", examined, found))
	}
}

// Start begins processing scans. A single worker keeps scans serialized.
func (sq *scanQueue) Start() {
	go sq.worker()
}

// worker processes scans from the queue
func (sq *scanQueue) worker() {
	for job := range sq.queue {
		sq.mu.RLock()
		cancelled := job.Status == types.ScanStatusCancelled
		sq.mu.RUnlock()
		if cancelled {
			continue
		}

		sq.setStatus(job.ID, types.ScanStatusScanning, "")

		sq.scanner.OnRow = func(examined, found int) {
			sq.updateProgress(job.ID, examined, found)
		}
		entries, err := sq.scanner.Scan(context.Background())
		sq.scanner.OnRow = nil

		if err != nil {
			sq.setStatus(job.ID, types.ScanStatusFailed, err.Error())
			log.Printf("Scan %s failed: %v", job.ID, err)
			continue
		}

		sq.mu.Lock()
		sq.snapshot = entries
		job.Found = len(entries)
		sq.mu.Unlock()

		if len(entries) == 0 {
			sq.setStatus(job.ID, types.ScanStatusEmpty, "")
			log.Printf("Scan %s found no qualifying files", job.ID)
		} else {
			sq.setStatus(job.ID, types.ScanStatusCompleted, "")
			log.Printf("Scan %s completed with %d files", job.ID, len(entries))
		}
	}
}
