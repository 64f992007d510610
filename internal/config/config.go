// Package config loads NetView backend configuration from defaults, YAML
// files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/logging"
)

const (
	// ProjectConfigName is the project-level config file.
	ProjectConfigName = ".netview.yaml"
	projectConfigAlt  = ".netview.yml"

	DefaultHTTPAddr  = "127.0.0.1:8001"
	DefaultTailLimit = 1000
)

// Config represents the complete NetView backend configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// LoggingConfig configures the rotating log writer.
type LoggingConfig struct {
	MaxTotalSizeMB float64 `yaml:"max_total_size_mb" json:"max_total_size_mb"`
	MaxFileSizeMB  float64 `yaml:"max_file_size_mb" json:"max_file_size_mb"`
	Directory      string  `yaml:"directory" json:"directory"`
	FilePrefix     string  `yaml:"file_prefix" json:"file_prefix"`
	DefaultSource  string  `yaml:"default_source" json:"default_source"`
	Level          string  `yaml:"level" json:"level"`
	RotateCron     string  `yaml:"rotate_cron,omitempty" json:"rotate_cron,omitempty"`
	WriteToStderr  bool    `yaml:"write_to_stderr" json:"write_to_stderr"`
}

// ServerConfig configures the HTTP inspection server.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
	// TailLimit caps the n parameter of tail requests.
	TailLimit int `yaml:"tail_limit" json:"tail_limit"`
}

// NewConfig returns a configuration with all defaults applied.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Logging: LoggingConfig{
			MaxTotalSizeMB: logging.DefaultMaxTotalSizeMB,
			MaxFileSizeMB:  logging.DefaultMaxFileSizeMB,
			Directory:      logging.DefaultLogDir(),
			FilePrefix:     logging.DefaultFilePrefix,
			DefaultSource:  logging.DefaultSource,
			Level:          "info",
		},
		Server: ServerConfig{
			Addr:      DefaultHTTPAddr,
			TailLimit: DefaultTailLimit,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/netview/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/netview/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "netview", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "netview", "config.yaml")
	}
	return filepath.Join(home, ".config", "netview", "config.yaml")
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/netview/config.yaml)
//  3. Project config (.netview.yaml in dir)
//  4. Environment variables (LOG_*, NETVIEW_HTTP_ADDR)
//
// A relative logging directory is resolved against dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if d := cfg.Logging.Directory; d != "" && !filepath.IsAbs(d) {
		base, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project directory: %w", err)
		}
		cfg.Logging.Directory = filepath.Join(base, d)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, preferring
// .netview.yaml over .netview.yml. It returns "" when neither exists.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigName, projectConfigAlt} {
		if path := filepath.Join(dir, name); fileExists(path) {
			return path
		}
	}
	return ""
}

func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}
	return c.loadYAML(path)
}

// loadYAML merges the non-zero values of a YAML file into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nverrors.FromFS("read config file", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nverrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Logging.MaxTotalSizeMB != 0 {
		c.Logging.MaxTotalSizeMB = other.Logging.MaxTotalSizeMB
	}
	if other.Logging.MaxFileSizeMB != 0 {
		c.Logging.MaxFileSizeMB = other.Logging.MaxFileSizeMB
	}
	if other.Logging.Directory != "" {
		c.Logging.Directory = other.Logging.Directory
	}
	if other.Logging.FilePrefix != "" {
		c.Logging.FilePrefix = other.Logging.FilePrefix
	}
	if other.Logging.DefaultSource != "" {
		c.Logging.DefaultSource = other.Logging.DefaultSource
	}
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.RotateCron != "" {
		c.Logging.RotateCron = other.Logging.RotateCron
	}
	// bool: only an explicit true can be merged
	if other.Logging.WriteToStderr {
		c.Logging.WriteToStderr = true
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.TailLimit != 0 {
		c.Server.TailLimit = other.Server.TailLimit
	}
}

// applyEnvOverrides applies environment variables. Unparseable or
// non-positive sizes are ignored and the previous value kept.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LOG_MAX_TOTAL_SIZE_MB"); v != "" {
		if mb, err := parseFloat64(v); err == nil && mb > 0 {
			c.Logging.MaxTotalSizeMB = mb
		}
	}
	if v := os.Getenv("LOG_MAX_FILE_SIZE_MB"); v != "" {
		if mb, err := parseFloat64(v); err == nil && mb > 0 {
			c.Logging.MaxFileSizeMB = mb
		}
	}
	if v := os.Getenv("LOG_DIRECTORY"); v != "" {
		c.Logging.Directory = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FILE_PREFIX"); v != "" {
		c.Logging.FilePrefix = v
	}
	if v := os.Getenv("LOG_ROTATE_CRON"); v != "" {
		c.Logging.RotateCron = v
	}
	if v := os.Getenv("LOG_STDERR"); v != "" {
		c.Logging.WriteToStderr = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("NETVIEW_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("NETVIEW_TAIL_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.TailLimit = n
		}
	}
}

// parseFloat64 parses a string to float64, used for config parsing.
func parseFloat64(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	l := c.Logging
	if !(l.MaxTotalSizeMB > 0) {
		return nverrors.ConfigError(fmt.Sprintf("logging.max_total_size_mb must be positive, got %v", l.MaxTotalSizeMB), nil)
	}
	if !(l.MaxFileSizeMB > 0) {
		return nverrors.ConfigError(fmt.Sprintf("logging.max_file_size_mb must be positive, got %v", l.MaxFileSizeMB), nil)
	}
	if strings.TrimSpace(l.Directory) == "" {
		return nverrors.ConfigError("logging.directory must not be empty", nil)
	}
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return nverrors.ConfigError(fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", l.Level), err)
	}
	if c.Server.Addr == "" {
		return nverrors.ConfigError("server.addr must not be empty", nil)
	}
	if c.Server.TailLimit <= 0 {
		return nverrors.ConfigError(fmt.Sprintf("server.tail_limit must be positive, got %d", c.Server.TailLimit), nil)
	}
	return c.ToLogging().Validate()
}

// ToLogging converts the logging section into a logging.Config.
func (c *Config) ToLogging() logging.Config {
	return logging.Config{
		MaxTotalSizeMB: c.Logging.MaxTotalSizeMB,
		MaxFileSizeMB:  c.Logging.MaxFileSizeMB,
		Directory:      c.Logging.Directory,
		FilePrefix:     c.Logging.FilePrefix,
		DefaultSource:  c.Logging.DefaultSource,
		RotateSchedule: c.Logging.RotateCron,
		Level:          c.Logging.Level,
		WriteToStderr:  c.Logging.WriteToStderr,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nverrors.FromFS("write config file", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
