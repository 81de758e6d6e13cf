// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/iris-gallery/bootstrap/lib/config"
)

// LaunchSpec is the fixed command that starts the application: an
// interpreter invocation of the entry point file, no dynamic
// arguments. Constructed once per bootstrap run and consumed exactly
// once by the Launcher.
type LaunchSpec struct {
	Interpreter string
	Entrypoint  string
}

func (s LaunchSpec) String() string {
	return s.Interpreter + " " + s.Entrypoint
}

// forwardedSignals are relayed to the application's process group
// under the supervise discipline.
var forwardedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

// Launcher starts the application process and, depending on the
// configured discipline, either becomes it (replace) or waits for it
// and relays its exit code (supervise).
type Launcher struct {
	// Discipline selects replace or supervise behavior.
	Discipline config.Discipline

	logger *slog.Logger

	// execFunc is the process-replacement syscall. Overridable in
	// tests — a real exec would replace the test binary.
	execFunc func(argv0 string, argv []string, envv []string) error
}

// NewLauncher returns a Launcher for the given discipline.
func NewLauncher(discipline config.Discipline, logger *slog.Logger) *Launcher {
	return &Launcher{Discipline: discipline, logger: logger}
}

// Launch starts the application described by spec.
//
// Under the supervise discipline it blocks until the application
// exits and returns the code the bootstrap should exit with: the
// application's own exit code, or 128+signal when the application was
// killed by a signal. SIGINT, SIGTERM, and SIGHUP delivered to the
// bootstrap while the application runs are forwarded to the
// application's process group.
//
// Under the replace discipline a successful Launch never returns —
// the bootstrap's process identity becomes the application.
//
// A missing interpreter or entry point yields a *LaunchError before
// any process is started. Once the application has started, its
// failures are relayed as exit codes, never as errors.
func (l *Launcher) Launch(ctx context.Context, spec LaunchSpec) (int, error) {
	interpreterPath, err := exec.LookPath(spec.Interpreter)
	if err != nil {
		return 0, &LaunchError{
			Command: spec.String(),
			Err:     fmt.Errorf("interpreter unavailable: %w", err),
		}
	}
	if _, err := os.Stat(spec.Entrypoint); err != nil {
		return 0, &LaunchError{
			Command: spec.String(),
			Err:     fmt.Errorf("entry point missing: %w", err),
		}
	}

	if l.Discipline == config.Replace {
		return l.replace(interpreterPath, spec)
	}
	return l.supervise(ctx, interpreterPath, spec)
}

// replace hands the process over to the application via exec(). Only
// returns when the exec itself fails.
func (l *Launcher) replace(interpreterPath string, spec LaunchSpec) (int, error) {
	execFunction := l.execFunc
	if execFunction == nil {
		execFunction = syscall.Exec
	}

	l.logger.Info("replacing bootstrap process with application",
		"interpreter", interpreterPath,
		"entrypoint", spec.Entrypoint,
	)

	argv := []string{interpreterPath, spec.Entrypoint}
	err := execFunction(interpreterPath, argv, os.Environ())

	// exec() does not return on success; the process was not replaced.
	return 0, &LaunchError{
		Command: spec.String(),
		Err:     fmt.Errorf("exec failed: %w", err),
	}
}

// supervise starts the application as a child in its own process
// group, forwards termination signals to that group, and relays the
// child's exit code.
func (l *Launcher) supervise(ctx context.Context, interpreterPath string, spec LaunchSpec) (int, error) {
	cmd := exec.CommandContext(ctx, interpreterPath, spec.Entrypoint)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Own process group so that forwarded signals reach the
	// application and everything it spawns (negative PID = all
	// processes in the group).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, &LaunchError{
			Command: spec.String(),
			Err:     fmt.Errorf("starting application: %w", err),
		}
	}

	l.logger.Info("application started",
		"interpreter", interpreterPath,
		"entrypoint", spec.Entrypoint,
		"pid", cmd.Process.Pid,
	)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, forwardedSignals...)
	defer signal.Stop(signals)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-signals:
				unixSignal, ok := sig.(syscall.Signal)
				if !ok {
					continue
				}
				// Best-effort: ESRCH from a group that just exited is
				// harmless, Wait below reports the real outcome.
				_ = syscall.Kill(-cmd.Process.Pid, unixSignal)
			case <-done:
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	if waitErr == nil {
		return 0, nil
	}

	var exitError *exec.ExitError
	if errors.As(waitErr, &exitError) {
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal()), nil
		}
		return exitError.ExitCode(), nil
	}

	// Wait itself failed — the child's outcome is unknown.
	return 0, &LaunchError{Command: spec.String(), Err: waitErr}
}
