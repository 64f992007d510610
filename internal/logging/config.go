package logging

import (
	"math"
	"strconv"
	"strings"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
)

// MiB is the number of bytes in one of the configured megabytes.
const MiB = 1 << 20

const (
	DefaultMaxTotalSizeMB = 1.0
	DefaultMaxFileSizeMB  = 0.5
	DefaultFilePrefix     = "backend"
	DefaultSource         = "backend"
)

// Config contains rotating logger configuration.
type Config struct {
	// MaxTotalSizeMB bounds the combined size of all log files.
	MaxTotalSizeMB float64
	// MaxFileSizeMB bounds the current file before rotation.
	MaxFileSizeMB float64
	// Directory holds every log file. Empty means <cwd>/logs.
	Directory string
	// FilePrefix starts every log file name (default: backend).
	FilePrefix string
	// DefaultSource labels records logged without a source (default: backend).
	DefaultSource string
	// RotateSchedule is an optional cron spec for forced rotation.
	RotateSchedule string

	// Level is the minimum level accepted by the slog bridge.
	Level string
	// WriteToStderr tees slog output to stderr.
	WriteToStderr bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		MaxTotalSizeMB: DefaultMaxTotalSizeMB,
		MaxFileSizeMB:  DefaultMaxFileSizeMB,
		Directory:      DefaultLogDir(),
		FilePrefix:     DefaultFilePrefix,
		DefaultSource:  DefaultSource,
		Level:          "info",
	}
}

// DebugConfig returns configuration for debug mode.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.WriteToStderr = true
	return cfg
}

// withDefaults fills zero-valued fields. Negative sizes are left for Validate.
func (c Config) withDefaults() Config {
	if c.MaxTotalSizeMB == 0 {
		c.MaxTotalSizeMB = DefaultMaxTotalSizeMB
	}
	if c.MaxFileSizeMB == 0 {
		c.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if c.Directory == "" {
		c.Directory = DefaultLogDir()
	}
	if c.FilePrefix == "" {
		c.FilePrefix = DefaultFilePrefix
	}
	if c.DefaultSource == "" {
		c.DefaultSource = DefaultSource
	}
	if c.Level == "" {
		c.Level = "info"
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !(c.MaxTotalSizeMB > 0) {
		return nverrors.ConfigError("max total size must be positive", nil).
			WithDetail("max_total_size_mb", formatMB(c.MaxTotalSizeMB))
	}
	if !(c.MaxFileSizeMB > 0) {
		return nverrors.ConfigError("max file size must be positive", nil).
			WithDetail("max_file_size_mb", formatMB(c.MaxFileSizeMB))
	}
	if c.MaxTotalBytes() < 1 || c.MaxFileBytes() < 1 {
		return nverrors.ConfigError("size limits must be at least one byte", nil)
	}
	if strings.ContainsAny(c.FilePrefix, `/\`) {
		return nverrors.New(nverrors.ErrCodeInvalidPath, "file prefix must not contain path separators", nil).
			WithDetail("file_prefix", c.FilePrefix)
	}
	if c.Level != "" {
		if _, err := ParseLevel(c.Level); err != nil {
			return err
		}
	}
	return nil
}

// MaxTotalBytes returns MaxTotalSizeMB in bytes.
func (c Config) MaxTotalBytes() int64 {
	return mbToBytes(c.MaxTotalSizeMB)
}

// MaxFileBytes returns MaxFileSizeMB in bytes.
func (c Config) MaxFileBytes() int64 {
	return mbToBytes(c.MaxFileSizeMB)
}

func mbToBytes(mb float64) int64 {
	return int64(math.Round(mb * MiB))
}

func formatMB(mb float64) string {
	return strconv.FormatFloat(mb, 'g', -1, 64)
}
