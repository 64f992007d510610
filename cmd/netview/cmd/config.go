package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ya-spark/netview-backendlog/internal/config"
	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/output"
	"github.com/ya-spark/netview-backendlog/internal/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create NetView configuration",
		Long: `Configuration is merged in order of increasing precedence:

  1. Built-in defaults
  2. User config   ($XDG_CONFIG_HOME/netview/config.yaml)
  3. Project config (.netview.yaml)
  4. Environment    (LOG_MAX_TOTAL_SIZE_MB, LOG_MAX_FILE_SIZE_MB, LOG_DIRECTORY, ...)`,
	}

	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigPathCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .netview.yaml to the project directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout(), ui.IsTTY(cmd.OutOrStdout()) && !ui.DetectNoColor())
			path := filepath.Join(a.projectDir, config.ProjectConfigName)

			if existing := config.ProjectConfigPath(a.projectDir); existing != "" {
				if !force {
					return nverrors.ConfigError(fmt.Sprintf("config already exists: %s", existing), nil).
						WithSuggestion("Use --force to overwrite (a backup is kept)")
				}
				backup, err := config.BackupFile(existing)
				if err != nil {
					return err
				}
				out.Statusf("Backup", "%s", backup)
				path = existing
			}

			cfg := config.NewConfig()
			// resolved against the project directory on load
			cfg.Logging.Directory = "logs"
			if err := cfg.WriteYAML(path); err != nil {
				return err
			}

			out.Success("Wrote " + path)
			out.Hint("Edit logging.max_total_size_mb and logging.max_file_size_mb to change the limits")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show where configuration is read from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout(), false)
			out.Status("User", config.GetUserConfigPath())
			project := config.ProjectConfigPath(a.projectDir)
			if project == "" {
				project = filepath.Join(a.projectDir, config.ProjectConfigName) + " (not found)"
			}
			out.Status("Project", project)
			return nil
		},
	}
}
