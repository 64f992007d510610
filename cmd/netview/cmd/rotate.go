package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ya-spark/netview-backendlog/internal/server"
)

func newRotateCmd(a *app) *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Make the running log server start a new file",
		Long: `Ask the running 'netview serve' process to close its current log file.
The next record starts a new file. Rotation is a no-op while the current
file is still empty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				cfg, err := a.config()
				if err != nil {
					return err
				}
				addr = cfg.Server.Addr
			}
			current, err := server.NewClient(addr, timeout).Rotate(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Current file: %s\n", filepath.Base(current))
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Log server address (default: server.addr)")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultClientTimeout, "Request timeout")
	return cmd
}
