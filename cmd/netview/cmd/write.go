package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/internal/server"
)

// recordWriter appends one record, locally or through the log server.
type recordWriter func(ctx context.Context, level logging.Level, message, source string) error

func newWriteCmd(a *app) *cobra.Command {
	var (
		source    string
		fromStdin bool
		remote    bool
	)

	cmd := &cobra.Command{
		Use:   "write <level> [message...]",
		Short: "Append a record to the log directory",
		Long: `Append one record at the given level (debug, info, warn or error).

By default the record is written directly to the log directory, continuing
the newest file while it has room. With --remote it is sent to a running
'netview serve' instead, so a single process owns the directory.`,
		Example: `  netview write info "collector started"
  netview write error --source snmp "poll timeout on 10.0.0.7"
  tail -f probe.out | netview write warn --stdin --source probe`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(args[0])
			if err != nil {
				return err
			}
			message := strings.Join(args[1:], " ")
			if !fromStdin && message == "" {
				return nverrors.New(nverrors.ErrCodeEmptyMessage, "message is required", nil).
					WithSuggestion("Pass the message as arguments or use --stdin")
			}

			write, err := a.recordWriter(cmd.Context(), remote)
			if err != nil {
				return err
			}

			if fromStdin {
				return writeLines(cmd.Context(), cmd.InOrStdin(), write, level, source)
			}
			return write(cmd.Context(), level, message, source)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Source label (default: logging.default_source)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Write each line of stdin as a record")
	cmd.Flags().BoolVar(&remote, "remote", false, "Send through the running log server")

	return cmd
}

func (a *app) recordWriter(ctx context.Context, remote bool) (recordWriter, error) {
	if remote {
		cfg, err := a.config()
		if err != nil {
			return nil, err
		}
		return server.NewClient(cfg.Server.Addr, 0).Write, nil
	}

	rl, err := a.openLogger(logging.ResumeNewest())
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, level logging.Level, message, source string) error {
		return rl.Log(level, message, source)
	}, nil
}

// writeLines logs every non-empty line of r until EOF or ctx is done.
func writeLines(ctx context.Context, r io.Reader, write recordWriter, level logging.Level, source string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if err := write(ctx, level, line, source); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return nil
}
