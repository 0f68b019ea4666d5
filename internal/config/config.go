// Package config loads CLI configuration from the environment and an
// optional config file. Command-line flags take precedence over everything
// loaded here.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the tunables of the gitsnip CLI that are not per-invocation
// arguments.
type Config struct {
	// SnippetsDir is the directory holding cached snippet records.
	SnippetsDir string `mapstructure:"snippets_dir"`

	// WorkspaceDir is the parent directory for ephemeral fetch workspaces.
	// Empty means the OS temporary directory.
	WorkspaceDir string `mapstructure:"workspace_dir"`

	// LogLevel is a logrus level name (trace, debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogJSON switches log output to JSON formatting.
	LogJSON bool `mapstructure:"log_json"`
}

// Load reads configuration with flag > environment > file > default
// precedence (flags are applied by the caller). Environment variables use
// the GITSNIP_ prefix (GITSNIP_SNIPPETS_DIR, GITSNIP_LOG_LEVEL, ...). An
// optional gitsnip.yaml in the working directory is honored when present.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("snippets_dir", ".snippets")
	v.SetDefault("workspace_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetEnvPrefix("GITSNIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gitsnip")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}
