package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ya-spark/netview-backendlog/internal/logging"
)

// TestIntegration_Follow_AcrossRotations tests that a follower sees every
// record in order while the writer rotates through several files.
func TestIntegration_Follow_AcrossRotations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a 1 KiB per-file logger with one existing record
	cfg := logging.DefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.MaxFileSizeMB = 1.0 / 1024
	rl, err := logging.New(cfg)
	require.NoError(t, err)
	require.NoError(t, rl.Info("seed"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	entries := make(chan logging.LogEntry, 16)
	done := make(chan error, 1)
	go func() {
		done <- logging.NewViewer(logging.ViewerConfig{}, nil).Follow(ctx, cfg.Directory, entries)
	}()

	// Wait for follower to initialize
	time.Sleep(200 * time.Millisecond)

	// When: writing enough records to rotate several times
	const n = 60
	for i := range n {
		require.NoError(t, rl.Source("poller").Info(fmt.Sprintf("sample %02d", i)))
	}
	stats, err := rl.Stats()
	require.NoError(t, err)
	require.Greater(t, stats.FileCount, 3)

	// Then: the follower delivers them all, in order
	var got []string
	for len(got) < n {
		select {
		case e := <-entries:
			got = append(got, e.Msg)
		case <-ctx.Done():
			t.Fatalf("received %d of %d records", len(got), n)
		}
	}
	for i, msg := range got {
		assert.Equal(t, fmt.Sprintf("sample %02d", i), msg)
	}

	cancel()
	assert.NoError(t, <-done)
}
