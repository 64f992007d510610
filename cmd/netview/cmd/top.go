package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/internal/ui"
)

func newTopCmd(a *app) *cobra.Command {
	var (
		refresh time.Duration
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Live view of log directory usage",
		Long: `Show total and current-file usage against their limits, refreshed
periodically, with a write-rate sparkline. Press q to quit.

When stdout is not a terminal the statistics are printed once.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lc, err := a.loggingConfig()
			if err != nil {
				return err
			}
			src := ui.StatsFunc(func() (logging.Stats, error) { return logging.ReadStats(lc) })

			out := cmd.OutOrStdout()
			if !ui.Interactive(out) {
				stats, err := src.Stats()
				if err != nil {
					return err
				}
				return ui.WriteStats(out, stats)
			}
			return ui.RunDashboard(cmd.Context(), src, ui.DashboardConfig{
				Output:  out,
				Refresh: refresh,
				NoColor: noColor,
			})
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", ui.DefaultRefresh, "Refresh interval")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}
