// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

// iris-bootstrap prepares the runtime environment for the IRIS
// gallery application and starts it: working directories are
// provisioned, the gallery data file is seeded, the declared Python
// dependencies are installed, and the application entry point is
// launched. The bootstrap's exit code is the application's — or the
// failing step's, when the sequence aborts early.
//
// Usage:
//
//	iris-bootstrap [--config bootstrap.yaml] [--print-config]
//	iris-bootstrap --version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/iris-gallery/bootstrap/lib/bootstrap"
	"github.com/iris-gallery/bootstrap/lib/config"
	"github.com/iris-gallery/bootstrap/lib/process"
	"github.com/iris-gallery/bootstrap/lib/version"
)

func main() {
	code, err := run()
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// Handle --version before flag parsing to match other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("iris-bootstrap")
		return 0, nil
	}

	var configPath string
	var printConfig bool

	flagSet := pflag.NewFlagSet("iris-bootstrap", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to bootstrap.yaml (default: $IRIS_BOOTSTRAP_CONFIG, else built-in defaults)")
	flagSet.BoolVar(&printConfig, "print-config", false, "print the effective configuration and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printUsage()
			return 0, nil
		}
		return 0, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage()
		return 0, nil
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return 0, err
	}
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid configuration: %w", err)
	}

	if printConfig {
		dump, dumpErr := cfg.Dump()
		if dumpErr != nil {
			return 0, dumpErr
		}
		fmt.Print(dump)
		return 0, nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	runner := bootstrap.NewRunner(cfg, logger)
	return runner.Run(context.Background())
}

func printUsage() {
	fmt.Print(`iris-bootstrap - prepare the IRIS runtime environment and start the app

USAGE
    iris-bootstrap [flags]

FLAGS
    --config PATH     bootstrap.yaml to load (default: $IRIS_BOOTSTRAP_CONFIG,
                      else built-in defaults)
    --print-config    print the effective configuration and exit
    --version         print version information

SEQUENCE
    1. Ensure working directories exist (static/gallery, data, ...)
    2. Seed data/gallery_data.json with an empty gallery when absent
    3. pip3 install -r requirements.txt (output teed to data/logs)
    4. Launch python3 main.py and relay its exit code

    Any step failure aborts the rest of the sequence; the process exit
    code is the failing step's code (installer exit code, 127 for a
    missing tool or interpreter, 1 for provisioning conflicts).
`)
}
