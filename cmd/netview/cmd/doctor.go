package cmd

import (
	"github.com/spf13/cobra"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/preflight"
)

func newDoctorCmd(a *app) *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the log directory is usable",
		Long: `Run preflight checks against the configured log directory: that it exists
or can be created and is writable, that the disk has room for
logging.max_total_size_mb, and how the current usage compares to the limits.

Exits non-zero when a required check fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lc, err := a.loggingConfig()
			if err != nil {
				return err
			}

			checker := preflight.New(
				preflight.WithOutput(cmd.OutOrStdout()),
				preflight.WithVerbose(verbose),
			)
			results := checker.RunAll(cmd.Context(), lc)

			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), map[string]any{
					"status": checker.SummaryStatus(results),
					"checks": results,
				}); err != nil {
					return err
				}
			} else {
				checker.PrintResults(results)
			}

			if checker.HasCriticalFailures(results) {
				return nverrors.New(nverrors.ErrCodePreflight, "preflight checks failed", nil).
					WithDetail("directory", lc.Directory)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show check details")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
