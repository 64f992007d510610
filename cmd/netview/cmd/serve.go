package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP log server",
		Long: `Run the HTTP server that owns the log directory.

Endpoints:
  GET  /health              liveness and version
  GET  /api/logs/stats      directory size and limits
  GET  /api/logs/files      log files, newest first
  GET  /api/logs/tail?n=N   last N records
  POST /api/logs            append {"level","message","source"}
  POST /api/logs/rotate     start a new file

When logging.rotate_cron is set, files are also rotated on that schedule.
Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx, cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	return cmd
}

func (a *app) runServe(ctx context.Context, cmd *cobra.Command, addr string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	rl, err := a.openLogger()
	if err != nil {
		return err
	}

	var sched *logging.Scheduler
	if spec := cfg.Logging.RotateCron; spec != "" {
		if sched, err = logging.NewScheduler(rl, spec); err != nil {
			return err
		}
	}

	srv := server.New(rl, server.Options{Addr: addr, TailLimit: cfg.Server.TailLimit})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if sched != nil {
		g.Go(func() error { return sched.Run(gctx) })
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s on http://%s (Ctrl+C to stop)\n", rl.Directory(), addr)
	err = g.Wait()
	slog.Info("log server stopped", slog.Any("error", err))
	return err
}
