package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
)

// RotatingLogger appends records to size-bounded, timestamp-named files and
// keeps the directory within a total size budget.
//
// All methods are safe for concurrent use. Each record is written with a
// fresh open/append/close, so no file handle outlives a call.
type RotatingLogger struct {
	cfg          Config
	maxTotalSize int64
	maxFileSize  int64
	now          func() time.Time
	resume       bool

	mu          sync.Mutex
	currentFile string
	currentSize int64
	lastStamp   time.Time
}

// Option configures a RotatingLogger.
type Option func(*RotatingLogger)

// WithClock replaces time.Now for record timestamps and file names.
func WithClock(now func() time.Time) Option {
	return func(l *RotatingLogger) {
		l.now = now
	}
}

// ResumeNewest makes New continue the most recent existing log file while it
// is below the per-file limit, instead of starting a new one.
func ResumeNewest() Option {
	return func(l *RotatingLogger) {
		l.resume = true
	}
}

// New creates the log directory if needed and picks the initial current file.
// If a file with that name already exists its size is carried over.
func New(cfg Config, opts ...Option) (*RotatingLogger, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &RotatingLogger{
		cfg:          cfg,
		maxTotalSize: cfg.MaxTotalBytes(),
		maxFileSize:  cfg.MaxFileBytes(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, nverrors.FromFS("create log directory", cfg.Directory, err)
	}

	l.lastStamp = l.now().UTC().Truncate(time.Millisecond)
	l.currentFile = filepath.Join(cfg.Directory, FileName(cfg.FilePrefix, l.lastStamp))

	info, err := os.Stat(l.currentFile)
	switch {
	case err == nil:
		l.currentSize = info.Size()
	case !errors.Is(err, fs.ErrNotExist):
		return nil, nverrors.FromFS("stat", l.currentFile, err)
	}

	if l.resume && l.currentSize == 0 {
		files, _, err := ListFiles(cfg.Directory, cfg.FilePrefix)
		if err != nil {
			return nil, err
		}
		if n := len(files); n > 0 && files[n-1].Size < l.maxFileSize {
			l.currentFile = files[n-1].Path
			l.currentSize = files[n-1].Size
		}
	}

	return l, nil
}

// Config returns the effective configuration, defaults applied.
func (l *RotatingLogger) Config() Config {
	return l.cfg
}

// Directory returns the log directory.
func (l *RotatingLogger) Directory() string {
	return l.cfg.Directory
}

// Log appends one record. An empty source means Config.DefaultSource.
//
// The size check, optional rotation, append and eviction run as one critical
// section. A record larger than the file limit is still written whole, into
// a file of its own.
func (l *RotatingLogger) Log(level Level, message, source string) error {
	if !level.Valid() {
		return nverrors.New(nverrors.ErrCodeInvalidLevel,
			fmt.Sprintf("invalid log level %d", int(level)), nil)
	}
	if source == "" {
		source = l.cfg.DefaultSource
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record := FormatRecord(l.now(), level, source, message)
	size := int64(len(record))

	if l.currentSize > 0 && l.currentSize+size > l.maxFileSize {
		if err := l.rotateLocked(); err != nil {
			return err
		}
	}

	n, err := appendRecord(l.currentFile, record)
	l.currentSize += int64(n)
	if err != nil {
		return nverrors.FromFS("append to", l.currentFile, err)
	}

	return l.evictLocked()
}

// Debug logs message at LevelDebug with the default source.
func (l *RotatingLogger) Debug(message string) error {
	return l.Log(LevelDebug, message, "")
}

// Info logs message at LevelInfo with the default source.
func (l *RotatingLogger) Info(message string) error {
	return l.Log(LevelInfo, message, "")
}

// Warn logs message at LevelWarn with the default source.
func (l *RotatingLogger) Warn(message string) error {
	return l.Log(LevelWarn, message, "")
}

// Error logs message at LevelError with the default source.
func (l *RotatingLogger) Error(message string) error {
	return l.Log(LevelError, message, "")
}

// Source returns a view of l that labels records with source.
func (l *RotatingLogger) Source(source string) *SourceLogger {
	return &SourceLogger{logger: l, source: source}
}

// Rotate starts a new current file. It does nothing while the current file
// is still empty.
func (l *RotatingLogger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentSize == 0 {
		return nil
	}
	return l.rotateLocked()
}

// CurrentFile returns the path records are currently appended to.
// The file may not exist until the first record is written.
func (l *RotatingLogger) CurrentFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentFile
}

// CurrentSize returns the byte size of the current file.
func (l *RotatingLogger) CurrentSize() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentSize
}

// Stats is a point-in-time summary of the log directory.
type Stats struct {
	TotalSize    int64  `json:"total_size"`
	FileCount    int    `json:"file_count"`
	CurrentFile  string `json:"current_file"`
	CurrentSize  int64  `json:"current_size"`
	MaxTotalSize int64  `json:"max_total_size"`
	MaxFileSize  int64  `json:"max_file_size"`
	Directory    string `json:"directory"`
}

// Stats recomputes totals from disk.
func (l *RotatingLogger) Stats() (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, total, err := ListFiles(l.cfg.Directory, l.cfg.FilePrefix)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalSize:    total,
		FileCount:    len(files),
		CurrentFile:  l.currentFile,
		CurrentSize:  l.currentSize,
		MaxTotalSize: l.maxTotalSize,
		MaxFileSize:  l.maxFileSize,
		Directory:    l.cfg.Directory,
	}, nil
}

// Files returns every log file path, most recently modified first.
func (l *RotatingLogger) Files() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, _, err := ListFiles(l.cfg.Directory, l.cfg.FilePrefix)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	slices.Reverse(paths)
	return paths, nil
}

// rotateLocked switches to a new current file. File names are strictly
// increasing even when the clock stalls or steps back. Only a name that
// does not exist yet is taken; on any other stat error the current file is
// kept and the error returned.
func (l *RotatingLogger) rotateLocked() error {
	ts := l.now().UTC().Truncate(time.Millisecond)
	if !ts.After(l.lastStamp) {
		ts = l.lastStamp.Add(time.Millisecond)
	}
	for {
		path := filepath.Join(l.cfg.Directory, FileName(l.cfg.FilePrefix, ts))
		_, err := os.Lstat(path)
		switch {
		case err == nil:
			ts = ts.Add(time.Millisecond)
		case errors.Is(err, fs.ErrNotExist):
			l.lastStamp = ts
			l.currentFile = path
			l.currentSize = 0
			return nil
		default:
			return nverrors.FromFS("stat", path, err)
		}
	}
}

// evictLocked deletes the oldest files until the directory fits
// maxTotalSize or a single file remains. The current file is never deleted.
func (l *RotatingLogger) evictLocked() error {
	files, total, err := ListFiles(l.cfg.Directory, l.cfg.FilePrefix)
	if err != nil {
		return err
	}

	remaining := len(files)
	for _, f := range files {
		if total <= l.maxTotalSize || remaining <= 1 {
			break
		}
		if f.Path == l.currentFile {
			continue
		}
		if err := os.Remove(f.Path); err != nil {
			return nverrors.FromFS("remove", f.Path, err)
		}
		total -= f.Size
		remaining--
	}
	return nil
}

func appendRecord(path, record string) (int, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.WriteString(record)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// SourceLogger logs through a RotatingLogger with a fixed source label.
type SourceLogger struct {
	logger *RotatingLogger
	source string
}

// Log appends a record at level with the bound source.
func (s *SourceLogger) Log(level Level, message string) error {
	return s.logger.Log(level, message, s.source)
}

// Debug logs message at LevelDebug.
func (s *SourceLogger) Debug(message string) error { return s.Log(LevelDebug, message) }

// Info logs message at LevelInfo.
func (s *SourceLogger) Info(message string) error { return s.Log(LevelInfo, message) }

// Warn logs message at LevelWarn.
func (s *SourceLogger) Warn(message string) error { return s.Log(LevelWarn, message) }

// Error logs message at LevelError.
func (s *SourceLogger) Error(message string) error { return s.Log(LevelError, message) }
