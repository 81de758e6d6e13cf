// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the
// bootstrap.
//
// Configuration is loaded from a single file specified by either the
// IRIS_BOOTSTRAP_CONFIG environment variable (via [Load]) or a
// --config flag (via [LoadFile]). There are no fallbacks, no
// ~/.config discovery, and no automatic file search. When no file is
// given at all, [Default] supplies the fixed deployment values the
// application has always used: static/gallery and data working
// directories, a requirements.txt manifest installed with pip3, and
// python3 main.py as the entry point.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Discipline selects how the application process is started.
type Discipline string

const (
	// Supervise starts the application as a child, waits for it, and
	// relays its exit code. Termination signals delivered to the
	// bootstrap are forwarded to the application's process group.
	// This is the default: it is portable and keeps a diagnosable
	// parent around.
	Supervise Discipline = "supervise"

	// Replace execs the application over the bootstrap process. No
	// supervisor remains; the application inherits the bootstrap's
	// PID, file descriptors, and signal dispositions.
	Replace Discipline = "replace"
)

// Config is the bootstrap configuration.
type Config struct {
	// Environment identifies the deployment type (development,
	// staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures filesystem locations, all relative to the
	// invocation working directory unless absolute.
	Paths PathsConfig `yaml:"paths"`

	// Installer configures the dependency installation subprocess.
	Installer InstallerConfig `yaml:"installer"`

	// App configures the application launch.
	App AppConfig `yaml:"app"`

	// Per-environment overrides, applied after the base config loads.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths     *PathsConfig     `yaml:"paths,omitempty"`
	Installer *InstallerConfig `yaml:"installer,omitempty"`
	App       *AppConfig       `yaml:"app,omitempty"`
}

// PathsConfig configures filesystem locations.
type PathsConfig struct {
	// WorkingDirs are the directories that must exist before the
	// application runs, created in order. Creation is idempotent.
	WorkingDirs []string `yaml:"working_dirs"`

	// GalleryData is the gallery data file the application reads on
	// startup. Seeded with an empty JSON array when absent.
	GalleryData string `yaml:"gallery_data"`

	// State is where the bootstrap run record is stored.
	State string `yaml:"state"`

	// Logs is where installer output logs are written and archived.
	Logs string `yaml:"logs"`
}

// InstallerConfig configures the dependency installation subprocess.
type InstallerConfig struct {
	// Tool is the package tool executable, resolved via PATH.
	Tool string `yaml:"tool"`

	// Args are passed to the tool before the manifest path.
	Args []string `yaml:"args"`

	// Manifest is the dependency manifest path. Its format belongs to
	// the tool; the bootstrap only hands the path over.
	Manifest string `yaml:"manifest"`
}

// AppConfig configures the application launch.
type AppConfig struct {
	// Interpreter is the executable that runs the entry point,
	// resolved via PATH.
	Interpreter string `yaml:"interpreter"`

	// Entrypoint is the application's entry point file.
	Entrypoint string `yaml:"entrypoint"`

	// Discipline is "supervise" or "replace".
	Discipline Discipline `yaml:"discipline"`
}

// Default returns the default configuration: the fixed deployment
// values from the application's own repository layout.
func Default() *Config {
	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			WorkingDirs: []string{"static/gallery", "data"},
			GalleryData: "data/gallery_data.json",
			State:       "data/state",
			Logs:        "data/logs",
		},
		Installer: InstallerConfig{
			Tool:     "pip3",
			Args:     []string{"install", "-r"},
			Manifest: "requirements.txt",
		},
		App: AppConfig{
			Interpreter: "python3",
			Entrypoint:  "main.py",
			Discipline:  Supervise,
		},
	}
}

// Load loads configuration from the IRIS_BOOTSTRAP_CONFIG environment
// variable. Returns the defaults when the variable is not set — the
// bootstrap is designed to run with zero configuration in the common
// case.
func Load() (*Config, error) {
	configPath := os.Getenv("IRIS_BOOTSTRAP_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The file is
// merged over the defaults, environment overrides are applied, and
// ${VAR} patterns in path fields are expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if len(overrides.Paths.WorkingDirs) > 0 {
			c.Paths.WorkingDirs = overrides.Paths.WorkingDirs
		}
		if overrides.Paths.GalleryData != "" {
			c.Paths.GalleryData = overrides.Paths.GalleryData
		}
		if overrides.Paths.State != "" {
			c.Paths.State = overrides.Paths.State
		}
		if overrides.Paths.Logs != "" {
			c.Paths.Logs = overrides.Paths.Logs
		}
	}

	if overrides.Installer != nil {
		if overrides.Installer.Tool != "" {
			c.Installer.Tool = overrides.Installer.Tool
		}
		if len(overrides.Installer.Args) > 0 {
			c.Installer.Args = overrides.Installer.Args
		}
		if overrides.Installer.Manifest != "" {
			c.Installer.Manifest = overrides.Installer.Manifest
		}
	}

	if overrides.App != nil {
		if overrides.App.Interpreter != "" {
			c.App.Interpreter = overrides.App.Interpreter
		}
		if overrides.App.Entrypoint != "" {
			c.App.Entrypoint = overrides.App.Entrypoint
		}
		if overrides.App.Discipline != "" {
			c.App.Discipline = overrides.App.Discipline
		}
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields from the process environment.
func (c *Config) expandVariables() {
	for i, dir := range c.Paths.WorkingDirs {
		c.Paths.WorkingDirs[i] = expandVars(dir)
	}
	c.Paths.GalleryData = expandVars(c.Paths.GalleryData)
	c.Paths.State = expandVars(c.Paths.State)
	c.Paths.Logs = expandVars(c.Paths.Logs)
	c.Installer.Manifest = expandVars(c.Installer.Manifest)
	c.App.Entrypoint = expandVars(c.App.Entrypoint)
}

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if len(c.Paths.WorkingDirs) == 0 {
		errs = append(errs, fmt.Errorf("paths.working_dirs is required"))
	}
	for _, dir := range c.Paths.WorkingDirs {
		if dir == "" {
			errs = append(errs, fmt.Errorf("paths.working_dirs contains an empty path"))
			break
		}
	}
	if c.Paths.State == "" {
		errs = append(errs, fmt.Errorf("paths.state is required"))
	}
	if c.Paths.Logs == "" {
		errs = append(errs, fmt.Errorf("paths.logs is required"))
	}

	if c.Installer.Tool == "" {
		errs = append(errs, fmt.Errorf("installer.tool is required"))
	}
	if c.Installer.Manifest == "" {
		errs = append(errs, fmt.Errorf("installer.manifest is required"))
	}

	if c.App.Interpreter == "" {
		errs = append(errs, fmt.Errorf("app.interpreter is required"))
	}
	if c.App.Entrypoint == "" {
		errs = append(errs, fmt.Errorf("app.entrypoint is required"))
	}
	if c.App.Discipline != Supervise && c.App.Discipline != Replace {
		errs = append(errs, fmt.Errorf("app.discipline must be %q or %q", Supervise, Replace))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Dump returns the effective configuration as YAML, for --print-config.
func (c *Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(data), nil
}
