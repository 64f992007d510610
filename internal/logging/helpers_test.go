package logging

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for deterministic timestamps and file names.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 19, 8, 30, 0, 123_000_000, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// byteConfig expresses byte limits through the MB-based Config.
func byteConfig(dir string, totalBytes, fileBytes int64) Config {
	return Config{
		MaxTotalSizeMB: float64(totalBytes) / MiB,
		MaxFileSizeMB:  float64(fileBytes) / MiB,
		Directory:      dir,
	}
}

func newTestLogger(t *testing.T, totalBytes, fileBytes int64) (*RotatingLogger, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	l, err := New(byteConfig(t.TempDir(), totalBytes, fileBytes), WithClock(clock.Now))
	require.NoError(t, err)
	return l, clock
}

// messageForRecord returns a message whose formatted INFO record with the
// default source is exactly size bytes.
func messageForRecord(t *testing.T, size int) string {
	t.Helper()
	overhead := len(FormatRecord(newFakeClock().Now(), LevelInfo, DefaultSource, ""))
	require.GreaterOrEqual(t, size, overhead, "record size below fixed overhead")
	return strings.Repeat("x", size-overhead)
}

// readAllRecords returns every line in the log directory, oldest file first.
func readAllRecords(t *testing.T, l *RotatingLogger) []string {
	t.Helper()
	files, _, err := ListFiles(l.Directory(), l.Config().FilePrefix)
	require.NoError(t, err)

	var lines []string
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		for _, line := range strings.Split(string(data), "\n") {
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

func fileSizes(t *testing.T, l *RotatingLogger) []int64 {
	t.Helper()
	files, _, err := ListFiles(l.Directory(), l.Config().FilePrefix)
	require.NoError(t, err)
	sizes := make([]int64, len(files))
	for i, f := range files {
		sizes[i] = f.Size
	}
	return sizes
}
