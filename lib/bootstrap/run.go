// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/iris-gallery/bootstrap/lib/config"
	"github.com/iris-gallery/bootstrap/lib/gallery"
	"github.com/iris-gallery/bootstrap/lib/manifest"
	"github.com/iris-gallery/bootstrap/lib/process"
	"github.com/iris-gallery/bootstrap/lib/runrecord"
)

// recordName is the run record file inside the configured state
// directory.
const recordName = "bootstrap-run.cbor"

// recordMaxAge bounds how old a previous run record may be and still
// be reported on startup. Older records belong to deployments nobody
// remembers; reporting them would only confuse.
const recordMaxAge = 30 * 24 * time.Hour

// Runner executes the bootstrap sequence. The step functions default
// to the real components; tests replace them to verify ordering and
// short-circuiting without touching subprocesses.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger

	provision func() error
	seed      func() error
	install   func(context.Context) error
	launch    func(context.Context) (int, error)
}

// NewRunner wires a Runner from configuration. The state and log
// directories are appended to the provisioned set so the run record
// and install log always have a home.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	provisioner := NewProvisioner(logger)
	installer := NewInstaller(cfg.Installer, cfg.Paths.Logs, logger)
	launcher := NewLauncher(cfg.App.Discipline, logger)
	spec := LaunchSpec{Interpreter: cfg.App.Interpreter, Entrypoint: cfg.App.Entrypoint}

	directories := append([]string{}, cfg.Paths.WorkingDirs...)
	directories = append(directories, cfg.Paths.State, cfg.Paths.Logs)

	return &Runner{
		cfg:    cfg,
		logger: logger,
		provision: func() error {
			return provisioner.Ensure(directories)
		},
		seed: func() error {
			if err := gallery.Seed(cfg.Paths.GalleryData); err != nil {
				return &ProvisionError{Path: cfg.Paths.GalleryData, Err: err}
			}
			return nil
		},
		install: installer.Install,
		launch: func(ctx context.Context) (int, error) {
			return launcher.Launch(ctx, spec)
		},
	}
}

// Run executes the bootstrap sequence and returns the exit code the
// bootstrap process should terminate with. A step error aborts the
// remaining sequence immediately; the error carries the failing
// step's exit code. When every step succeeds, the returned code is
// the application's own exit code (supervise) — or Run never returns
// because the process was replaced.
//
// Each run writes a run record at its terminal point. Under the
// replace discipline the record is written just before the handoff,
// since nothing can be recorded afterwards.
func (r *Runner) Run(ctx context.Context) (int, error) {
	startedAt := time.Now()
	recordPath := filepath.Join(r.cfg.Paths.State, recordName)

	// The digest is observational: a missing or unreadable manifest is
	// the installer's failure to report, not Run's.
	var manifestDigest string
	if digest, err := manifest.File(r.cfg.Installer.Manifest); err == nil {
		manifestDigest = digest.String()
	}

	r.reportPreviousRun(recordPath, manifestDigest)

	finish := func(step string, code int) {
		state := runrecord.State{
			Step:           step,
			ExitCode:       code,
			ManifestDigest: manifestDigest,
			StartedAt:      startedAt,
			FinishedAt:     time.Now(),
		}
		if err := runrecord.Write(recordPath, state); err != nil {
			r.logger.Warn("writing run record", "path", recordPath, "error", err)
		}
	}

	if err := r.provision(); err != nil {
		finish(runrecord.StepProvision, process.ExitCode(err))
		return 0, err
	}
	if err := r.seed(); err != nil {
		finish(runrecord.StepProvision, process.ExitCode(err))
		return 0, err
	}

	if err := r.install(ctx); err != nil {
		finish(runrecord.StepInstall, process.ExitCode(err))
		return 0, err
	}

	// Under the replace discipline a successful launch never returns;
	// record the handoff first.
	if r.cfg.App.Discipline == config.Replace {
		finish(runrecord.StepLaunch, 0)
	}

	code, err := r.launch(ctx)
	if err != nil {
		finish(runrecord.StepLaunch, process.ExitCode(err))
		return 0, err
	}

	finish(runrecord.StepComplete, code)
	return code, nil
}

// reportPreviousRun logs the outcome of the previous bootstrap run
// and whether the dependency manifest changed since. Purely
// observational — an unreadable record is a warning, never a failure.
func (r *Runner) reportPreviousRun(recordPath, manifestDigest string) {
	previous, found, err := runrecord.Check(recordPath, recordMaxAge)
	if err != nil {
		r.logger.Warn("previous run record unreadable", "path", recordPath, "error", err)
		return
	}
	if !found {
		return
	}

	r.logger.Info("previous bootstrap run",
		"step", previous.Step,
		"exit_code", previous.ExitCode,
		"finished_at", previous.FinishedAt,
	)
	if manifestDigest != "" && previous.ManifestDigest != "" && previous.ManifestDigest != manifestDigest {
		r.logger.Info("dependency manifest changed since previous run")
	}
}
