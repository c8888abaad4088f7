// config.go resolves the notifier configuration from a YAML file, flag
// overrides, and environment fallbacks, in that order.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/driftsignal/airbrake-go/pkg/airbrake"
)

const (
	envProjectID  = "AIRBRAKE_PROJECT_ID"
	envProjectKey = "AIRBRAKE_PROJECT_KEY"
)

// loadConfigFile parses a YAML file straight into an airbrake.Config.
func loadConfigFile(path string) (airbrake.Config, error) {
	var cfg airbrake.Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConfig layers the configuration sources: the YAML file when
// --config is given, then explicitly set flags, then the AIRBRAKE_*
// environment variables for credentials still missing.
func resolveConfig(cmd *cobra.Command) (airbrake.Config, error) {
	var cfg airbrake.Config
	if cfgPath != "" {
		loaded, err := loadConfigFile(cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("project-id") {
		cfg.ProjectID = projectID
	}
	if flags.Changed("project-key") {
		cfg.ProjectKey = projectKey
	}
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("environment") {
		cfg.Environment = environment
	}
	if flags.Changed("app-version") {
		cfg.AppVersion = appVersion
	}

	if cfg.ProjectID == 0 {
		if raw := os.Getenv(envProjectID); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("parse %s: %w", envProjectID, err)
			}
			cfg.ProjectID = id
		}
	}
	if cfg.ProjectKey == "" {
		cfg.ProjectKey = os.Getenv(envProjectKey)
	}
	return cfg, nil
}
