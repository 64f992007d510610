package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ya-spark/netview-backendlog/internal/logging"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables printing of result details.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs all preflight checks for the log directory described by cfg.
func (c *Checker) RunAll(_ context.Context, cfg logging.Config) []CheckResult {
	return []CheckResult{
		c.CheckDirectory(cfg.Directory),
		c.CheckWritePermissions(cfg.Directory),
		c.CheckDiskSpace(cfg.Directory, cfg.MaxTotalBytes()),
		c.CheckFileDescriptors(),
		c.CheckRetention(cfg),
		c.CheckUsage(cfg),
	}
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "NetView Log Preflight")
	_, _ = fmt.Fprintln(c.output, "=====================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "       %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, failures []string
	for _, r := range results {
		if r.IsCritical() {
			failures = append(failures, r.Name+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}
	printList(c.output, "error(s)", failures)
	printList(c.output, "warning(s)", warnings)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d %s:\n", len(items), label)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

// CheckDirectory checks that dir is a directory or can be created.
func (c *Checker) CheckDirectory(dir string) CheckResult {
	result := CheckResult{
		Name:     "log_directory",
		Required: true,
		Details:  dir,
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		result.Status = StatusPass
		result.Message = "exists"
	case err == nil:
		result.Status = StatusFail
		result.Message = "path exists but is not a directory"
	case errors.Is(err, fs.ErrNotExist):
		result.Status = StatusPass
		result.Message = "will be created when the logger starts"
	default:
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot access: %v", err)
	}
	return result
}

// CheckWritePermissions checks that files can be created in dir, or in its
// nearest existing ancestor when dir does not exist yet.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{
		Name:     "write_permissions",
		Required: true,
	}

	target := nearestExisting(dir)
	f, err := os.CreateTemp(target, ".netview-preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		result.Details = target
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckRetention warns when the limits leave room for only the current file.
func (c *Checker) CheckRetention(cfg logging.Config) CheckResult {
	result := CheckResult{
		Name:     "retention",
		Required: false,
	}

	total, file := cfg.MaxTotalBytes(), cfg.MaxFileBytes()
	if file <= 0 || total <= 0 {
		result.Status = StatusFail
		result.Message = "size limits must be positive"
		return result
	}

	files := total / file
	if files < 2 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s per file of %s total keeps only the current file",
			humanize.IBytes(uint64(file)), humanize.IBytes(uint64(total)))
		result.Details = "Lower logging.max_file_size_mb to keep older files"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("about %d files of %s", files, humanize.IBytes(uint64(file)))
	return result
}

// CheckUsage reports current directory usage against the total limit.
func (c *Checker) CheckUsage(cfg logging.Config) CheckResult {
	result := CheckResult{
		Name:     "directory_usage",
		Required: false,
	}

	files, total, err := logging.ListFiles(cfg.Directory, cfg.FilePrefix)
	if err != nil {
		if _, statErr := os.Stat(cfg.Directory); errors.Is(statErr, fs.ErrNotExist) {
			result.Status = StatusPass
			result.Message = "no log files yet"
			return result
		}
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to list log files: %v", err)
		return result
	}

	limit := cfg.MaxTotalBytes()
	usage := fmt.Sprintf("%d files, %s of %s", len(files),
		humanize.IBytes(uint64(total)), humanize.IBytes(uint64(limit)))
	if total > limit {
		result.Status = StatusWarn
		result.Message = usage + " (over limit)"
		result.Details = "The oldest files are deleted on the next write"
		return result
	}

	result.Status = StatusPass
	result.Message = usage
	return result
}

// nearestExisting returns dir or its closest existing ancestor.
func nearestExisting(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
