package preflight

import (
	"fmt"
	"syscall"

	"github.com/dustin/go-humanize"
)

// CheckDiskSpace checks that the filesystem holding dir has room for need
// bytes of logs.
func (c *Checker) CheckDiskSpace(dir string, need int64) CheckResult {
	result := CheckResult{
		Name:     "disk_space",
		Required: true,
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(nearestExisting(dir), &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	available := stat.Bavail * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free (log budget: %s)", humanize.IBytes(available), humanize.IBytes(uint64(max(need, 0))))
	if available < uint64(max(need, 0)) {
		result.Status = StatusFail
		result.Details = "Lower logging.max_total_size_mb or move logging.directory"
		return result
	}

	result.Status = StatusPass
	return result
}
