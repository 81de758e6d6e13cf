// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/iris-gallery/bootstrap/lib/config"
	"github.com/iris-gallery/bootstrap/lib/manifest"
)

// Installer runs the package tool against the dependency manifest.
// The manifest's format belongs to the tool; the installer only hands
// the path over and observes the exit code.
type Installer struct {
	// Tool is the package tool executable, resolved via PATH.
	Tool string

	// Args precede the manifest path on the tool's command line.
	Args []string

	// Manifest is the dependency manifest path.
	Manifest string

	// LogDir, when non-empty, receives a tee of the tool's combined
	// output in install.log. The previous log is archived first.
	LogDir string

	logger *slog.Logger
}

// NewInstaller builds an Installer from configuration.
func NewInstaller(cfg config.InstallerConfig, logDir string, logger *slog.Logger) *Installer {
	return &Installer{
		Tool:     cfg.Tool,
		Args:     cfg.Args,
		Manifest: cfg.Manifest,
		LogDir:   logDir,
		logger:   logger,
	}
}

// Install invokes the package tool once, synchronously, with stdout
// and stderr passed through to the operator. Exit code 0 is success.
// Everything else is an *InstallError: a non-zero exit carries the
// tool's code, a tool or manifest that cannot be used at all carries
// CodeCommandNotFound. There is exactly one attempt per bootstrap
// run, no retry, and no timeout — the tool may run as long as it
// needs.
//
// The installer runs in the bootstrap's own process group, so a
// Ctrl-C at the terminal reaches the tool directly without any
// forwarding.
func (i *Installer) Install(ctx context.Context) error {
	if err := manifest.Stat(i.Manifest); err != nil {
		return &InstallError{Tool: i.Tool, Code: CodeCommandNotFound, Err: err}
	}

	toolPath, err := exec.LookPath(i.Tool)
	if err != nil {
		return &InstallError{
			Tool: i.Tool,
			Code: CodeCommandNotFound,
			Err:  fmt.Errorf("package tool unavailable: %w", err),
		}
	}

	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)
	if i.LogDir != "" {
		logFile, logErr := i.openLogFile()
		if logErr != nil {
			// The log tee is observability, not a bootstrap step.
			i.logger.Warn("installer log unavailable, output not recorded", "error", logErr)
		} else {
			defer logFile.Close()
			stdout = io.MultiWriter(os.Stdout, logFile)
			stderr = io.MultiWriter(os.Stderr, logFile)
		}
	}

	args := append(append([]string{}, i.Args...), i.Manifest)
	cmd := exec.CommandContext(ctx, toolPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	i.logger.Info("installing dependencies", "tool", toolPath, "manifest", i.Manifest)

	err = cmd.Run()
	if err == nil {
		return nil
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return &InstallError{Tool: i.Tool, Code: exitError.ExitCode()}
	}

	// The process never started: fork/exec failure, context
	// cancellation before start.
	return &InstallError{Tool: i.Tool, Code: CodeCommandNotFound, Err: err}
}
