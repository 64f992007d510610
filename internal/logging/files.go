package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/trviph/collection"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
)

// FileInfo describes one log file on disk.
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ListFiles returns the log files in dir oldest first, together with their
// combined size. Files with equal modification times are ordered by name,
// which is chronological for generated names.
func ListFiles(dir, prefix string) ([]FileInfo, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, nverrors.FromFS("list log directory", dir, err)
	}

	minHeap, err := collection.NewHeap(func(current, other FileInfo) bool {
		if current.ModTime.Equal(other.ModTime) {
			return current.Name < other.Name
		}
		return current.ModTime.Before(other.ModTime)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create file heap: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsLogFile(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			// evicted by a concurrent writer
			continue
		}
		if err != nil {
			return nil, 0, nverrors.FromFS("stat", path, err)
		}
		minHeap.Push(FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		count++
	}

	files := make([]FileInfo, 0, count)
	var total int64
	for !minHeap.IsEmpty() {
		oldest, err := minHeap.Pop()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to order log files: %w", err)
		}
		files = append(files, oldest)
		total += oldest.Size
	}
	return files, total, nil
}

// ReadStats computes Stats for a directory written by another process. The
// most recently modified file is reported as the current one.
func ReadStats(cfg Config) (Stats, error) {
	cfg = cfg.withDefaults()
	files, total, err := ListFiles(cfg.Directory, cfg.FilePrefix)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalSize:    total,
		FileCount:    len(files),
		MaxTotalSize: cfg.MaxTotalBytes(),
		MaxFileSize:  cfg.MaxFileBytes(),
		Directory:    cfg.Directory,
	}
	if len(files) > 0 {
		newest := files[len(files)-1]
		stats.CurrentFile = newest.Path
		stats.CurrentSize = newest.Size
	}
	return stats, nil
}
