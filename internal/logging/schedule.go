package logging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
)

// Scheduler forces rotation on a cron schedule, on top of size-based rotation.
type Scheduler struct {
	cron  *cron.Cron
	entry cron.EntryID
	spec  string
}

// NewScheduler validates spec (standard five-field cron or a descriptor
// such as "@daily") and registers logger.Rotate against it.
func NewScheduler(logger *RotatingLogger, spec string) (*Scheduler, error) {
	c := cron.New()
	id, err := c.AddFunc(spec, func() {
		if err := logger.Rotate(); err != nil {
			slog.Warn("scheduled log rotation failed", nverrors.FormatForLog(err)...)
		}
	})
	if err != nil {
		return nil, nverrors.New(nverrors.ErrCodeScheduleInvalid,
			fmt.Sprintf("invalid rotation schedule %q", spec), err).
			WithSuggestion(`Use a cron expression such as "0 0 * * *" or "@daily"`)
	}
	return &Scheduler{cron: c, entry: id, spec: spec}, nil
}

// Next returns the next rotation time after from.
func (s *Scheduler) Next(from time.Time) time.Time {
	return s.cron.Entry(s.entry).Schedule.Next(from)
}

// Run starts the schedule and blocks until ctx is done. A rotation in
// progress is allowed to finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	slog.Debug("log rotation schedule started", slog.String("spec", s.spec))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// StartSchedule runs Config.RotateSchedule in the background until ctx is
// done. It is a no-op when no schedule is configured.
func (l *RotatingLogger) StartSchedule(ctx context.Context) error {
	if l.cfg.RotateSchedule == "" {
		return nil
	}
	s, err := NewScheduler(l, l.cfg.RotateSchedule)
	if err != nil {
		return err
	}
	go func() { _ = s.Run(ctx) }()
	return nil
}
