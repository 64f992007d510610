package ui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/ya-spark/netview-backendlog/internal/logging"
)

// WriteStats prints a plain, line-oriented summary of stats.
func WriteStats(w io.Writer, stats logging.Stats) error {
	current := "(none)"
	if stats.CurrentFile != "" {
		current = filepath.Base(stats.CurrentFile)
	}

	_, err := fmt.Fprintf(w,
		"Directory:     %s\n"+
			"Files:         %d\n"+
			"Total size:    %s / %s (%.1f%%)\n"+
			"Current file:  %s\n"+
			"Current size:  %s / %s\n",
		stats.Directory,
		stats.FileCount,
		bytesString(stats.TotalSize), bytesString(stats.MaxTotalSize), ratio(stats.TotalSize, stats.MaxTotalSize)*100,
		current,
		bytesString(stats.CurrentSize), bytesString(stats.MaxFileSize),
	)
	return err
}

func bytesString(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// ratio returns n/total clamped to [0, 1].
func ratio(n, total int64) float64 {
	if total <= 0 || n <= 0 {
		return 0
	}
	return min(float64(n)/float64(total), 1)
}
