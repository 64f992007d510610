package mcp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ya-spark/netview-backendlog/internal/logging"
)

// FormatStats renders directory statistics as markdown.
func FormatStats(stats logging.Stats) string {
	var sb strings.Builder
	sb.WriteString("## Log Directory\n\n")
	fmt.Fprintf(&sb, "**Directory:** `%s`\n", stats.Directory)
	fmt.Fprintf(&sb, "**Files:** %d\n", stats.FileCount)
	fmt.Fprintf(&sb, "**Total size:** %s of %s (%.1f%%)\n",
		humanize.IBytes(uint64(stats.TotalSize)),
		humanize.IBytes(uint64(stats.MaxTotalSize)),
		percent(stats.TotalSize, stats.MaxTotalSize))
	fmt.Fprintf(&sb, "**Current file:** `%s` (%s of %s)\n",
		filepath.Base(stats.CurrentFile),
		humanize.IBytes(uint64(stats.CurrentSize)),
		humanize.IBytes(uint64(stats.MaxFileSize)))
	return sb.String()
}

// FormatFiles renders a newest-first file list as markdown.
func FormatFiles(files []string) string {
	if len(files) == 0 {
		return "No log files found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Log Files (%d)\n\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&sb, "%d. `%s`", i+1, filepath.Base(f))
		if i == 0 {
			sb.WriteString(" (current)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatTail renders entries as a fenced block of raw log lines.
func FormatTail(entries []TailEntry) string {
	if len(entries) == 0 {
		return "No matching log entries."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Last %d Log Entr", len(entries))
	if len(entries) == 1 {
		sb.WriteString("y\n\n")
	} else {
		sb.WriteString("ies\n\n")
	}
	sb.WriteString("```\n")
	for _, e := range entries {
		sb.WriteString(e.Line)
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	return sb.String()
}

func percent(n, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// clampLimit returns def for non-positive limits and otherwise clamps to [lo, hi].
func clampLimit(limit, def, lo, hi int) int {
	if limit <= 0 {
		return def
	}
	return max(lo, min(limit, hi))
}
