// Package cmd provides the CLI commands for netview.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ya-spark/netview-backendlog/internal/config"
	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/pkg/version"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	projectDir string
	debug      bool

	cfg *config.Config
}

// config loads the merged configuration once per invocation.
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.projectDir)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// loggingConfig returns the rotating logger settings, with --debug applied.
func (a *app) loggingConfig() (logging.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return logging.Config{}, err
	}
	lc := cfg.ToLogging()
	if a.debug {
		lc.Level = "debug"
		lc.WriteToStderr = true
	}
	return lc, nil
}

// openLogger builds the rotating logger and routes slog through it.
func (a *app) openLogger(opts ...logging.Option) (*logging.RotatingLogger, error) {
	lc, err := a.loggingConfig()
	if err != nil {
		return nil, err
	}
	return logging.SetupDefault(lc, opts...)
}

// NewRootCmd creates the root command for the netview CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "netview",
		Short: "NetView backend log writer and inspector",
		Long: `netview manages the size-bounded, rotating log directory of the NetView
backend.

Records are appended as "[timestamp] [LEVEL] [source] message" lines to
<prefix>-<timestamp>.log files. A file is rotated before it would exceed
logging.max_file_size_mb, and the oldest files are deleted once the
directory exceeds logging.max_total_size_mb.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if a.debug {
				slog.SetDefault(slog.New(logging.NewConsoleHandler(cmd.ErrOrStderr(), slog.LevelDebug)))
			}
		},
	}

	cmd.SetVersionTemplate("netview version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (also echoed to stderr)")
	cmd.PersistentFlags().StringVarP(&a.projectDir, "project", "C", ".", "Directory containing .netview.yaml")

	cmd.AddCommand(newWriteCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newFilesCmd(a))
	cmd.AddCommand(newRotateCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newMCPCmd(a))
	cmd.AddCommand(newTopCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, nverrors.FormatForCLI(err))
	}
	return err
}
