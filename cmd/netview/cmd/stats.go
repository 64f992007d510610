package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/internal/ui"
)

func newStatsCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show size and file count of the log directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lc, err := a.loggingConfig()
			if err != nil {
				return err
			}
			stats, err := logging.ReadStats(lc)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			return ui.WriteStats(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newFilesCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List log files, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lc, err := a.loggingConfig()
			if err != nil {
				return err
			}
			files, _, err := logging.ListFiles(lc.Directory, lc.FilePrefix)
			if err != nil {
				return err
			}
			slices.Reverse(files)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), files)
			}
			return writeFileTable(cmd.OutOrStdout(), files)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func writeFileTable(w io.Writer, files []logging.FileInfo) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "No log files.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
	for _, f := range files {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, humanize.IBytes(uint64(f.Size)), humanize.Time(f.ModTime))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
