package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ya-spark/netview-backendlog/internal/logging"
)

// DefaultRefresh is the dashboard polling interval.
const DefaultRefresh = time.Second

// StatsSource provides the numbers shown by the dashboard.
type StatsSource interface {
	Stats() (logging.Stats, error)
}

// StatsFunc adapts a function to StatsSource.
type StatsFunc func() (logging.Stats, error)

// Stats implements StatsSource.
func (f StatsFunc) Stats() (logging.Stats, error) { return f() }

// DashboardConfig configures RunDashboard.
type DashboardConfig struct {
	Output  io.Writer
	Input   io.Reader // defaults to stdin
	Refresh time.Duration
	NoColor bool
}

// RunDashboard shows live statistics until the user quits or ctx is done.
func RunDashboard(ctx context.Context, src StatsSource, cfg DashboardConfig) error {
	m := newDashboardModel(src, GetStyles(cfg.NoColor || DetectNoColor()), cfg.Refresh)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type statsMsg struct {
	stats logging.Stats
	err   error
	at    time.Time
}

type refreshMsg time.Time

// dashboardModel is the bubbletea model for the live view.
type dashboardModel struct {
	src      StatsSource
	refresh  time.Duration
	styles   Styles
	totalBar progress.Model
	fileBar  progress.Model
	rate     *Sparkline
	width    int

	stats    logging.Stats
	err      error
	polled   bool
	polledAt time.Time
	quitting bool
}

func newDashboardModel(src StatsSource, styles Styles, refresh time.Duration) *dashboardModel {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	bar := func() progress.Model {
		return progress.New(
			progress.WithSolidFill(ColorLime),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		)
	}
	return &dashboardModel{
		src:      src,
		refresh:  refresh,
		styles:   styles,
		totalBar: bar(),
		fileBar:  bar(),
		rate:     NewSparkline(60),
		width:    80,
	}
}

// Init implements tea.Model.
func (m *dashboardModel) Init() tea.Cmd {
	return m.poll
}

func (m *dashboardModel) poll() tea.Msg {
	stats, err := m.src.Stats()
	return statsMsg{stats: stats, err: err, at: time.Now()}
}

func (m *dashboardModel) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// Update implements tea.Model.
func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := max(msg.Width-40, 10)
		m.totalBar.Width = barWidth
		m.fileBar.Width = barWidth

	case statsMsg:
		m.apply(msg)
		return m, m.scheduleRefresh()

	case refreshMsg:
		return m, m.poll
	}

	return m, nil
}

// apply records a poll result and derives the write rate from the growth of
// the current file since the previous poll.
func (m *dashboardModel) apply(msg statsMsg) {
	if msg.err != nil {
		m.err = msg.err
		return
	}
	m.err = nil

	if m.polled {
		written := msg.stats.CurrentSize - m.stats.CurrentSize
		if msg.stats.CurrentFile != m.stats.CurrentFile {
			written = msg.stats.CurrentSize
		}
		rate := 0.0
		if secs := msg.at.Sub(m.polledAt).Seconds(); secs > 0 && written > 0 {
			rate = float64(written) / secs
		}
		m.rate.Add(rate)
	}

	m.stats = msg.stats
	m.polled = true
	m.polledAt = msg.at
}

// View implements tea.Model.
func (m *dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var lines []string
	if !m.polled && m.err == nil {
		lines = append(lines, m.styles.Dim.Render("Reading log directory..."))
	} else {
		s := m.stats
		lines = append(lines,
			m.row("Directory", s.Directory),
			m.row("Files", fmt.Sprintf("%d", s.FileCount)),
			"",
			m.barRow("Total", m.totalBar, s.TotalSize, s.MaxTotalSize),
			m.barRow("Current", m.fileBar, s.CurrentSize, s.MaxFileSize),
			"",
			m.row("Current file", currentName(s.CurrentFile)),
			m.row("Write rate", fmt.Sprintf("%s/s", humanize.IBytes(uint64(m.rate.Last())))),
			m.styles.Sparkline.Render(m.rate.Render(max(m.width-8, 10))),
		)
	}
	if m.err != nil {
		lines = append(lines, "", m.styles.Error.Render("Error: "+m.err.Error()))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render("NetView Backend Logs"),
		"",
		strings.Join(lines, "\n"),
	)
	return m.styles.Panel.Render(body) + "\n" + m.styles.Dim.Render("q quit") + "\n"
}

func (m *dashboardModel) row(label, value string) string {
	return m.styles.Label.Render(fmt.Sprintf("%-13s", label)) + m.styles.Value.Render(value)
}

func (m *dashboardModel) barRow(label string, bar progress.Model, n, limit int64) string {
	pct := ratio(n, limit)
	style := m.styles.Value
	if pct >= 0.9 {
		style = m.styles.Warning
	}
	return m.styles.Label.Render(fmt.Sprintf("%-13s", label)) +
		bar.ViewAs(pct) + " " +
		style.Render(fmt.Sprintf("%s / %s", bytesString(n), bytesString(limit)))
}

func currentName(path string) string {
	if path == "" {
		return "(none)"
	}
	return filepath.Base(path)
}
