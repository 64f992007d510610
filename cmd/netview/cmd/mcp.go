package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the tools
log_stats, log_files and log_tail.

stdout is reserved for JSON-RPC; diagnostics go to the log directory only.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lc, err := a.loggingConfig()
			if err != nil {
				return err
			}
			rl, err := logging.SetupMCPMode(lc)
			if err != nil {
				return err
			}
			if err := rl.StartSchedule(ctx); err != nil {
				return err
			}

			srv, err := mcp.NewServer(rl)
			if err != nil {
				return err
			}
			return srv.Serve(ctx)
		},
	}
}
