package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ya-spark/netview-backendlog/internal/logging"
)

type fakeSource struct {
	stats logging.Stats
	err   error
	calls int
}

func (f *fakeSource) Stats() (logging.Stats, error) {
	f.calls++
	return f.stats, f.err
}

func sampleStats() logging.Stats {
	return logging.Stats{
		Directory:    "/var/log/netview",
		FileCount:    2,
		TotalSize:    512 * 1024,
		MaxTotalSize: 1024 * 1024,
		CurrentFile:  "/var/log/netview/backend-b.log",
		CurrentSize:  1000,
		MaxFileSize:  512 * 1024,
	}
}

func newTestModel(src StatsSource) *dashboardModel {
	return newDashboardModel(src, NoColorStyles(), time.Second)
}

func TestDashboard_InitPollsSource(t *testing.T) {
	// Given: a model over a source
	src := &fakeSource{stats: sampleStats()}
	m := newTestModel(src)

	// When: running the init command
	msg := m.Init()()

	// Then: the source was queried and a stats message produced
	got, ok := msg.(statsMsg)
	require.True(t, ok)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 2, got.stats.FileCount)
}

func TestDashboard_ViewBeforeFirstPoll(t *testing.T) {
	m := newTestModel(&fakeSource{})

	assert.Contains(t, m.View(), "Reading log directory...")
}

func TestDashboard_ViewShowsStats(t *testing.T) {
	m := newTestModel(&fakeSource{})

	_, cmd := m.Update(statsMsg{stats: sampleStats(), at: time.Now()})
	view := m.View()

	assert.NotNil(t, cmd, "a refresh is scheduled after each poll")
	assert.Contains(t, view, "NetView Backend Logs")
	assert.Contains(t, view, "/var/log/netview")
	assert.Contains(t, view, "backend-b.log")
	assert.Contains(t, view, "512 KiB / 1.0 MiB")
	assert.Contains(t, view, "q quit")
}

func TestDashboard_WriteRateFromCurrentFileGrowth(t *testing.T) {
	m := newTestModel(&fakeSource{})
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	first := sampleStats()
	m.Update(statsMsg{stats: first, at: start})

	second := first
	second.CurrentSize += 2048
	m.Update(statsMsg{stats: second, at: start.Add(2 * time.Second)})

	assert.Equal(t, 1024.0, m.rate.Last())
	assert.Contains(t, m.View(), "1.0 KiB/s")
}

func TestDashboard_WriteRateAfterRotation(t *testing.T) {
	m := newTestModel(&fakeSource{})
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	first := sampleStats()
	m.Update(statsMsg{stats: first, at: start})

	rotated := first
	rotated.CurrentFile = "/var/log/netview/backend-c.log"
	rotated.CurrentSize = 300
	m.Update(statsMsg{stats: rotated, at: start.Add(time.Second)})

	assert.Equal(t, 300.0, m.rate.Last())
}

func TestDashboard_ErrorKeepsLastStats(t *testing.T) {
	m := newTestModel(&fakeSource{})
	m.Update(statsMsg{stats: sampleStats(), at: time.Now()})

	m.Update(statsMsg{err: errors.New("directory vanished"), at: time.Now()})
	view := m.View()

	assert.Contains(t, view, "Error: directory vanished")
	assert.Contains(t, view, "backend-b.log")
}

func TestDashboard_RefreshTriggersPoll(t *testing.T) {
	src := &fakeSource{stats: sampleStats()}
	m := newTestModel(src)

	_, cmd := m.Update(refreshMsg(time.Now()))
	require.NotNil(t, cmd)
	msg := cmd()

	assert.IsType(t, statsMsg{}, msg)
	assert.Equal(t, 1, src.calls)
}

func TestDashboard_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		m := newTestModel(&fakeSource{})

		_, cmd := m.Update(key)

		require.NotNil(t, cmd, key.String())
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, m.View())
	}
}

func TestDashboard_WindowResizeAdjustsBars(t *testing.T) {
	m := newTestModel(&fakeSource{})

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 80, m.totalBar.Width)
	assert.Equal(t, 80, m.fileBar.Width)

	m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Equal(t, 10, m.totalBar.Width)
}

func TestRunDashboard_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunDashboard(ctx, &fakeSource{stats: sampleStats()}, DashboardConfig{
		Output:  &discard{},
		Input:   strings.NewReader(""),
		NoColor: true,
	})

	assert.NoError(t, err)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
