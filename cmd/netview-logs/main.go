// Package main provides the netview-logs command, a viewer for the rotating
// NetView backend log directory.
//
// Usage:
//
//	netview-logs [flags]
//
// Flags:
//
//	-f, --follow         Follow new records across rotations (like tail -f)
//	-n, --lines int      Number of records to show (default 50)
//	    --level string   Minimum level (debug|info|warn|error)
//	    --filter string  Filter by pattern (regex)
//	    --source string  Only records from this source label
//	    --no-color       Disable colored output
//	    --dir string     Log directory (default: logging.directory)
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ya-spark/netview-backendlog/internal/config"
	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/internal/ui"
	"github.com/ya-spark/netview-backendlog/pkg/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, nverrors.FormatForCLI(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "netview-logs",
		Short: "View NetView backend logs",
		Long: `View and tail the rotating NetView backend log directory.

Records from every log file are shown oldest first. With -f new records are
streamed as they are written, following the writer into each new file.

Examples:
  netview-logs                     # Show the last 50 records
  netview-logs -n 200              # Show the last 200 records
  netview-logs -f                  # Follow in real time
  netview-logs --level warn        # Only WARN and ERROR
  netview-logs --source snmp       # Only records labelled snmp
  netview-logs --filter "timeout"  # Filter by pattern`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if !cmd.Flags().Changed("no-color") {
				opts.noColor = ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout())
			}
			return runLogs(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow new records (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of records to show (0 for all)")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by keyword/pattern (regex)")
	cmd.Flags().StringVar(&opts.source, "source", "", "Only records from this source label")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Log directory (default: logging.directory)")

	return cmd
}

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	source  string
	noColor bool
	dir     string
}

func runLogs(ctx context.Context, stdout, stderr io.Writer, opts logsOptions) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	dir, err := logging.FindLogDir(opts.dir, cfg.Logging.Directory)
	if err != nil {
		return err
	}

	if opts.level != "" {
		if _, err := logging.ParseLevel(opts.level); err != nil {
			return err
		}
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return nverrors.ValidationError("invalid filter pattern", err).
				WithDetail("filter", opts.filter)
		}
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		Source:  opts.source,
		NoColor: opts.noColor,
		Prefix:  cfg.Logging.FilePrefix,
	}, stdout)

	fmt.Fprintf(stderr, "Log directory: %s\n", dir)
	if opts.follow {
		fmt.Fprintln(stderr, "Following... (Ctrl+C to stop)")
	}
	fmt.Fprintln(stderr, "---")

	entries, err := viewer.Tail(ctx, dir, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}
	return runFollow(ctx, viewer, dir, stdout, stderr)
}

func runFollow(ctx context.Context, viewer *logging.Viewer, dir string, stdout, stderr io.Writer) error {
	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)

	go func() {
		errCh <- viewer.Follow(ctx, dir, entries)
	}()

	for {
		select {
		case entry := <-entries:
			fmt.Fprintln(stdout, viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			fmt.Fprintln(stderr, "\n---")
			fmt.Fprintln(stderr, "Stopped.")
			return nil
		}
	}
}
