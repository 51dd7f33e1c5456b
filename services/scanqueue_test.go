package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"audiodex/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForTerminal polls until the job leaves the queued/scanning states.
func waitForTerminal(t *testing.T, sq ScanQueue, id string) types.ScanJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := sq.GetJob(id)
		require.True(t, ok)
		switch job.Status {
		case types.ScanStatusCompleted, types.ScanStatusEmpty, types.ScanStatusFailed, types.ScanStatusCancelled:
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scan job never reached a terminal state")
	return types.ScanJob{}
}

// TestScanQueueCompletedScan verifies a scan with qualifying rows reaches
// completed and publishes the snapshot.
func TestScanQueueCompletedScan(t *testing.T) {
	index := &stubIndex{rows: []Row{
		musicRow("a.mp3", "A", "X", 60000),
		musicRow("b.mp3", "B", "X", 45000),
	}}
	sq := NewScanQueue(NewScanner(index, 30000), "/music", nil)
	sq.Start()

	job := sq.Trigger()
	assert.Equal(t, "/music", job.Library)

	done := waitForTerminal(t, sq, job.ID)
	assert.Equal(t, types.ScanStatusCompleted, done.Status)
	assert.Equal(t, 2, done.Found)
	require.NotNil(t, done.StartedAt)
	require.NotNil(t, done.CompletedAt)

	snapshot := sq.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a.mp3", snapshot[0].Locator)
	assert.Equal(t, "b.mp3", snapshot[1].Locator)
}

// TestScanQueueEmptyScan verifies zero qualifying rows reach the empty state.
func TestScanQueueEmptyScan(t *testing.T) {
	index := &stubIndex{rows: []Row{
		musicRow("jingle.mp3", "Jingle", "X", 3000), // below cutoff
	}}
	sq := NewScanQueue(NewScanner(index, 30000), "/music", nil)
	sq.Start()

	job := sq.Trigger()
	done := waitForTerminal(t, sq, job.ID)

	assert.Equal(t, types.ScanStatusEmpty, done.Status)
	assert.Equal(t, 0, done.Found)
	assert.Empty(t, sq.Snapshot())
}

// TestScanQueueFailedScan verifies index errors surface as a failed job and
// leave the previous snapshot untouched.
func TestScanQueueFailedScan(t *testing.T) {
	index := &stubIndex{rows: []Row{musicRow("a.mp3", "A", "X", 60000)}}
	sq := NewScanQueue(NewScanner(index, 30000), "/music", nil)
	sq.Start()

	first := waitForTerminal(t, sq, sq.Trigger().ID)
	require.Equal(t, types.ScanStatusCompleted, first.Status)

	index.err = fmt.Errorf("index unreachable")
	second := waitForTerminal(t, sq, sq.Trigger().ID)

	assert.Equal(t, types.ScanStatusFailed, second.Status)
	assert.Contains(t, second.Error, "index unreachable")
	assert.Len(t, sq.Snapshot(), 1, "failed scan must not clobber the last snapshot")
}

// TestScanQueueSnapshotReplacement verifies a later scan replaces the
// snapshot wholesale.
func TestScanQueueSnapshotReplacement(t *testing.T) {
	index := &stubIndex{rows: []Row{musicRow("a.mp3", "A", "X", 60000)}}
	sq := NewScanQueue(NewScanner(index, 30000), "/music", nil)
	sq.Start()

	waitForTerminal(t, sq, sq.Trigger().ID)
	require.Len(t, sq.Snapshot(), 1)

	index.rows = []Row{
		musicRow("c.mp3", "C", "X", 60000),
		musicRow("d.mp3", "D", "X", 60000),
	}
	waitForTerminal(t, sq, sq.Trigger().ID)

	snapshot := sq.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "c.mp3", snapshot[0].Locator)
	assert.Equal(t, "d.mp3", snapshot[1].Locator)
}

// TestScanQueueCancelQueued verifies a queued scan can be cancelled before
// the worker starts.
func TestScanQueueCancelQueued(t *testing.T) {
	index := &stubIndex{}
	sq := NewScanQueue(NewScanner(index, 30000), "/music", nil)
	// Worker deliberately not started yet

	job := sq.Trigger()
	assert.True(t, sq.CancelJob(job.ID))

	cancelled, ok := sq.GetJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, types.ScanStatusCancelled, cancelled.Status)

	// A started worker must skip the cancelled job
	sq.Start()
	time.Sleep(50 * time.Millisecond)
	still, _ := sq.GetJob(job.ID)
	assert.Equal(t, types.ScanStatusCancelled, still.Status)
}

// TestScanQueueCancelUnknown verifies cancelling a missing job reports false.
func TestScanQueueCancelUnknown(t *testing.T) {
	sq := NewScanQueue(NewScanner(&stubIndex{}, 30000), "/music", nil)
	assert.False(t, sq.CancelJob("no-such-scan"))
}

// blockingIndex parks every query until release is closed.
type blockingIndex struct {
	release chan struct{}
}

func (b *blockingIndex) Query(ctx context.Context, yield func(Row) error) error {
	<-b.release
	return nil
}

// TestScanQueueTriggerBackpressure verifies that a Trigger waiting for queue
// space blocks only its own caller: other queue methods stay responsive and
// the queue drains once the running scan finishes.
func TestScanQueueTriggerBackpressure(t *testing.T) {
	index := &blockingIndex{release: make(chan struct{})}
	sq := NewScanQueue(NewScanner(index, 30000), "/music", nil)
	sq.Start()

	// One scan running, then fill the queue buffer behind it
	first := sq.Trigger()
	require.Eventually(t, func() bool {
		job, ok := sq.GetJob(first.ID)
		return ok && job.Status == types.ScanStatusScanning
	}, 5*time.Second, 10*time.Millisecond)

	for i := 0; i < 16; i++ {
		sq.Trigger()
	}

	// This one has no buffer slot left until the worker drains
	extra := make(chan types.ScanJob, 1)
	go func() {
		extra <- sq.Trigger()
	}()

	// Accessors must not be held hostage by the waiting Trigger
	jobCount := make(chan int, 1)
	go func() {
		jobCount <- len(sq.GetAllJobs())
	}()
	select {
	case n := <-jobCount:
		assert.GreaterOrEqual(t, n, 17)
	case <-time.After(2 * time.Second):
		t.Fatal("GetAllJobs blocked while a Trigger waited for queue space")
	}

	close(index.release)

	select {
	case job := <-extra:
		waitForTerminal(t, sq, job.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("Trigger never returned after the queue drained")
	}
}

// TestScanQueueCancelFinished verifies a finished scan cannot be cancelled.
func TestScanQueueCancelFinished(t *testing.T) {
	index := &stubIndex{rows: []Row{musicRow("a.mp3", "A", "X", 60000)}}
	sq := NewScanQueue(NewScanner(index, 30000), "/music", nil)
	sq.Start()

	job := sq.Trigger()
	waitForTerminal(t, sq, job.ID)

	assert.False(t, sq.CancelJob(job.ID))
}
