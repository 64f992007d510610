package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// superseded files never change, so parsed entries are cached per file version
const fileCacheSize = 64

// recordPattern matches "[ts] [LEVEL] [source] message".
var recordPattern = regexp.MustCompile(`^\[([^\]]+)\] \[([A-Z]+)\] \[([^\]]*)\] ?(.*)$`)

// LogEntry represents a parsed log line.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Source  string    `json:"source"`
	Msg     string    `json:"msg"`
	Raw     string    `json:"-"`
	IsValid bool      `json:"-"`
}

// ParseLine parses a record line. Lines that do not match the record format
// are returned with IsValid false and only Raw set.
func ParseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	m := recordPattern.FindStringSubmatch(line)
	if m == nil {
		return entry
	}
	ts, err := time.Parse(time.RFC3339Nano, m[1])
	if err != nil {
		return entry
	}

	entry.Time = ts
	entry.Level = m[2]
	entry.Source = m[3]
	entry.Msg = m[4]
	entry.IsValid = true
	return entry
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // minimum level (debug, info, warn, error)
	Pattern *regexp.Regexp // match against the raw line
	Source  string         // exact source label
	NoColor bool
	Prefix  string // log file prefix (default: backend)
}

type viewerStyles struct {
	time   lipgloss.Style
	source lipgloss.Style
	levels map[string]lipgloss.Style
}

func newViewerStyles(noColor bool) viewerStyles {
	if noColor {
		plain := lipgloss.NewStyle()
		return viewerStyles{time: plain, source: plain, levels: map[string]lipgloss.Style{}}
	}
	return viewerStyles{
		time:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		source: lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE")),
		levels: map[string]lipgloss.Style{
			"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
			"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#84CC16")),
			"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FACC15")),
			"ERROR": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		},
	}
}

// Viewer reads, filters and formats rotated log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	cache  *lru.Cache[string, []LogEntry]
	styles viewerStyles
}

// NewViewer creates a new log viewer.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultFilePrefix
	}
	cache, _ := lru.New[string, []LogEntry](fileCacheSize)
	return &Viewer{
		config: cfg,
		out:    out,
		cache:  cache,
		styles: newViewerStyles(cfg.NoColor),
	}
}

// WithFilter returns a viewer with the given level and source filters that
// shares v's parsed-file cache.
func (v *Viewer) WithFilter(level, source string) *Viewer {
	c := *v
	c.config.Level = level
	c.config.Source = source
	return &c
}

// Tail returns the last n matching entries across every log file in dir,
// oldest first.
func (v *Viewer) Tail(ctx context.Context, dir string, n int) ([]LogEntry, error) {
	files, _, err := ListFiles(dir, v.config.Prefix)
	if err != nil {
		return nil, err
	}

	perFile := make([][]LogEntry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		newest := i == len(files)-1
		g.Go(func() error {
			entries, err := v.readFile(gctx, f, !newest)
			if err != nil {
				return err
			}
			perFile[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []LogEntry
	for _, entries := range perFile {
		for _, e := range entries {
			if v.matchesFilter(e) {
				result = append(result, e)
			}
		}
	}
	if n > 0 && len(result) > n {
		result = result[len(result)-n:]
	}
	return result, nil
}

// readFile parses every line of f. Superseded files are served from the
// cache when their size and mtime are unchanged.
func (v *Viewer) readFile(ctx context.Context, f FileInfo, cacheable bool) ([]LogEntry, error) {
	key := fmt.Sprintf("%s|%d|%d", f.Path, f.Size, f.ModTime.UnixNano())
	if cacheable {
		if entries, ok := v.cache.Get(key); ok {
			return entries, nil
		}
	}

	file, err := os.Open(f.Path)
	if err != nil {
		// evicted between listing and reading
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// records have no length limit, so lines are read whole
	var entries []LogEntry
	reader := bufio.NewReader(file)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := reader.ReadString('\n')
		if line := strings.TrimRight(chunk, "\r\n"); line != "" {
			entries = append(entries, ParseLine(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read log file %s: %w", f.Path, err)
		}
	}

	if cacheable {
		v.cache.Add(key, entries)
	}
	return entries, nil
}

// FormatEntry formats an entry as "15:04:05.000 LEVEL [source] message".
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	timestamp := v.styles.time.Render(entry.Time.Local().Format("15:04:05.000"))
	level := v.formatLevel(entry.Level)
	source := v.styles.source.Render("[" + entry.Source + "]")
	return fmt.Sprintf("%s %s %s %s", timestamp, level, source, entry.Msg)
}

// Print prints entries to the output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

func (v *Viewer) formatLevel(level string) string {
	padded := fmt.Sprintf("%-5s", strings.ToUpper(level))
	if style, ok := v.styles.levels[strings.ToUpper(level)]; ok {
		return style.Render(padded)
	}
	return padded
}

// matchesFilter checks if an entry matches the configured filters.
func (v *Viewer) matchesFilter(entry LogEntry) bool {
	if v.config.Level != "" {
		if !entry.IsValid || LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
			return false
		}
	}
	if v.config.Source != "" && entry.Source != v.config.Source {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}
