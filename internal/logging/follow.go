package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	followPollInterval = 100 * time.Millisecond
	// rescan even with fsnotify, in case an event was dropped
	followSafetyInterval = time.Second
)

// Follow streams entries appended to the log directory after the call,
// switching to each newly rotated file, until ctx is done. Directory changes
// are watched with fsnotify; when that is unavailable Follow polls.
func (v *Viewer) Follow(ctx context.Context, dir string, entries chan<- LogEntry) error {
	t := &tailer{viewer: v, dir: dir}
	if err := t.start(); err != nil {
		return err
	}
	defer t.close()
	return v.watch(ctx, t, entries)
}

// watch drives t from directory events, falling back to polling.
func (v *Viewer) watch(ctx context.Context, t *tailer, entries chan<- LogEntry) error {
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err = watcher.Add(t.dir); err != nil {
			_ = watcher.Close()
		}
	}
	if err != nil {
		slog.Debug("fsnotify unavailable, polling log directory",
			slog.String("dir", t.dir), slog.String("error", err.Error()))
		return v.followPolling(ctx, t, entries)
	}
	defer func() { _ = watcher.Close() }()

	ticker := time.NewTicker(followSafetyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return v.followPolling(ctx, t, entries)
			}
			if !IsLogFile(filepath.Base(event.Name), v.config.Prefix) {
				continue
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return v.followPolling(ctx, t, entries)
			}
			slog.Debug("log directory watch error", slog.String("error", werr.Error()))
		case <-ticker.C:
		}

		if err := t.poll(ctx, entries); err != nil {
			return err
		}
	}
}

func (v *Viewer) followPolling(ctx context.Context, t *tailer, entries chan<- LogEntry) error {
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := t.poll(ctx, entries); err != nil {
				return err
			}
		}
	}
}

// tailer tracks the read position in the newest log file.
type tailer struct {
	viewer  *Viewer
	dir     string
	path    string
	file    *os.File
	reader  *bufio.Reader
	partial string
}

// start opens the newest file at its end. With no files yet, the first file
// to appear is read from the beginning.
func (t *tailer) start() error {
	newest, err := t.newest()
	if err != nil || newest == "" {
		return err
	}
	return t.open(newest, io.SeekEnd)
}

func (t *tailer) newest() (string, error) {
	files, _, err := ListFiles(t.dir, t.viewer.config.Prefix)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}
	return files[len(files)-1].Path, nil
}

func (t *tailer) open(path string, whence int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if _, err := f.Seek(0, whence); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to seek in %s: %w", path, err)
	}
	t.path = path
	t.file = f
	t.reader = bufio.NewReader(f)
	t.partial = ""
	return nil
}

func (t *tailer) close() {
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
	}
}

// poll emits new lines of the current file, then reads every file rotated
// in since, oldest first.
func (t *tailer) poll(ctx context.Context, entries chan<- LogEntry) error {
	if t.file != nil {
		if err := t.drain(ctx, entries); err != nil {
			return err
		}
	}

	files, _, err := ListFiles(t.dir, t.viewer.config.Prefix)
	if err != nil {
		return err
	}
	for _, f := range t.newerFiles(files) {
		t.close()
		if err := t.open(f.Path, io.SeekStart); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		if err := t.drain(ctx, entries); err != nil {
			return err
		}
	}
	return nil
}

// newerFiles returns the files after the one being read. If that file was
// evicted, generated names still order chronologically.
func (t *tailer) newerFiles(files []FileInfo) []FileInfo {
	if t.path == "" {
		return files
	}
	for i, f := range files {
		if f.Path == t.path {
			return files[i+1:]
		}
	}
	current := filepath.Base(t.path)
	var newer []FileInfo
	for _, f := range files {
		if f.Name > current {
			newer = append(newer, f)
		}
	}
	return newer
}

func (t *tailer) drain(ctx context.Context, entries chan<- LogEntry) error {
	for {
		chunk, err := t.reader.ReadString('\n')
		if err != nil {
			t.partial += chunk
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read log file: %w", err)
		}

		line := strings.TrimRight(t.partial+chunk, "\r\n")
		t.partial = ""
		if line == "" {
			continue
		}

		entry := ParseLine(line)
		if !t.viewer.matchesFilter(entry) {
			continue
		}
		select {
		case entries <- entry:
		case <-ctx.Done():
			return nil
		}
	}
}
