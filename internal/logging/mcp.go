package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for the MCP stdio server.
// stdout carries JSON-RPC exclusively, so the stderr tee is always disabled
// and everything goes to the rotating files at debug level.
func SetupMCPMode(cfg Config) (*RotatingLogger, error) {
	cfg.WriteToStderr = false
	cfg.Level = "debug"

	logger, rl, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	slog.Info("MCP mode logging initialized",
		slog.String("log_dir", rl.Directory()),
		slog.Bool("stderr_disabled", true))

	return rl, nil
}
