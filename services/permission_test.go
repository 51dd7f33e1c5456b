package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"audiodex/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func awaitDecision(t *testing.T, ch <-chan types.Decision) types.Decision {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no permission decision arrived")
		return types.Denied
	}
}

// TestFSGateGranted verifies a readable library root grants permission.
func TestFSGateGranted(t *testing.T) {
	gate := FSGate{Root: t.TempDir()}

	decision := awaitDecision(t, gate.Request(context.Background()))
	assert.Equal(t, types.Granted, decision)
}

// TestFSGateDeniedMissingRoot verifies a missing library root denies.
func TestFSGateDeniedMissingRoot(t *testing.T) {
	gate := FSGate{Root: filepath.Join(t.TempDir(), "nope")}

	decision := awaitDecision(t, gate.Request(context.Background()))
	assert.Equal(t, types.Denied, decision)
}

// TestFSGateDeniedCancelledContext verifies a cancelled request denies.
func TestFSGateDeniedCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gate := FSGate{Root: t.TempDir()}
	decision := awaitDecision(t, gate.Request(ctx))
	assert.Equal(t, types.Denied, decision)
}

// TestFSGateSingleDelivery verifies the decision channel delivers exactly
// once and then closes.
func TestFSGateSingleDelivery(t *testing.T) {
	gate := FSGate{Root: t.TempDir()}
	ch := gate.Request(context.Background())

	first := awaitDecision(t, ch)
	require.Equal(t, types.Granted, first)

	_, open := <-ch
	assert.False(t, open, "decision channel should be closed after delivery")
}
