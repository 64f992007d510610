package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ya-spark/netview-backendlog/internal/logging"
)

// syncBuffer is a bytes.Buffer safe for a concurrent writer and reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// seedLogs writes records through a rotating logger and returns its directory.
func seedLogs(t *testing.T, records map[string][]string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LOG_DIRECTORY", dir)
	t.Setenv("LOG_FILE_PREFIX", "")

	cfg := logging.DefaultConfig()
	cfg.Directory = dir
	rl, err := logging.New(cfg)
	require.NoError(t, err)
	for _, level := range []string{"debug", "info", "warn", "error"} {
		lvl, err := logging.ParseLevel(level)
		require.NoError(t, err)
		for _, msg := range records[level] {
			source, text, _ := strings.Cut(msg, ":")
			require.NoError(t, rl.Log(lvl, text, source))
		}
	}
	return dir
}

func runViewer(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestLogs_TailDefault(t *testing.T) {
	// Given: records in the configured directory
	dir := seedLogs(t, map[string][]string{
		"info":  {"api:started", "db:connected"},
		"error": {"api:crashed"},
	})

	// When: running without flags
	out, errOut, err := runViewer(t, context.Background())

	// Then: every record is printed without color to a non-terminal
	require.NoError(t, err)
	assert.Contains(t, errOut, "Log directory: "+dir)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "INFO  [api] started")
	assert.Contains(t, lines[2], "ERROR [api] crashed")
	assert.NotContains(t, out, "\x1b[")
}

func TestLogs_Filters(t *testing.T) {
	seedLogs(t, map[string][]string{
		"debug": {"db:connect"},
		"info":  {"api:GET /health"},
		"warn":  {"db:slow query"},
		"error": {"api:panic"},
	})

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"lines", []string{"-n", "1"}, []string{"panic"}},
		{"level", []string{"--level", "warn"}, []string{"slow query", "panic"}},
		{"source", []string{"--source", "db"}, []string{"connect", "slow query"}},
		{"filter", []string{"--filter", "health|panic"}, []string{"GET /health", "panic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runViewer(t, context.Background(), tt.args...)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, len(tt.want))
			for i, msg := range tt.want {
				assert.True(t, strings.HasSuffix(lines[i], msg), lines[i])
			}
		})
	}
}

func TestLogs_InvalidFilter(t *testing.T) {
	seedLogs(t, nil)

	_, _, err := runViewer(t, context.Background(), "--filter", "[")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestLogs_InvalidLevel(t *testing.T) {
	seedLogs(t, nil)

	_, _, err := runViewer(t, context.Background(), "--level", "loud")

	assert.Error(t, err)
}

func TestLogs_MissingDirectory(t *testing.T) {
	seedLogs(t, nil)

	_, _, err := runViewer(t, context.Background(), "--dir", filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log directory not found")
}

func TestLogs_FollowPrintsNewRecords(t *testing.T) {
	// Given: an existing log file
	dir := seedLogs(t, map[string][]string{"info": {"api:before"}})
	files, _, err := logging.ListFiles(dir, logging.DefaultFilePrefix)
	require.NoError(t, err)
	require.Len(t, files, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := newRootCmd()
	var stdout syncBuffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-f"})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// When: records are appended while following
	appendRecord := func() error {
		f, err := os.OpenFile(files[0].Path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		_, err = f.WriteString(logging.FormatRecord(time.Now(), logging.LevelWarn, "api", "after"))
		return err
	}

	// Then: they are printed, and cancelling stops the viewer
	require.Eventually(t, func() bool {
		if appendRecord() != nil {
			return false
		}
		return strings.Contains(stdout.String(), "WARN  [api] after")
	}, 10*time.Second, 200*time.Millisecond)
	assert.Contains(t, stdout.String(), "INFO  [api] before")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop")
	}
}
