// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

// Package runrecord provides atomic state file operations for
// recording bootstrap run outcomes. The bootstrap writes a record
// when a run finishes (or hands off to the application); the next run
// reads the record on startup and logs what happened last time —
// whether the previous run failed, at which step, and whether the
// dependency manifest has changed since.
//
// The record is purely observational. It never changes control flow:
// the installer runs on every bootstrap run regardless of what the
// record says.
//
// The record file is written atomically (write to temporary file,
// fsync, rename into place, fsync parent directory) so readers never
// see a partial or corrupt state. [Check] includes staleness
// detection: records older than a configurable maximum age are
// ignored so ancient files from long-decommissioned deployments are
// not reported as "the previous run".
package runrecord

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iris-gallery/bootstrap/lib/codec"
)

// Step names recorded in State.Step. They identify how far a
// bootstrap run progressed before it terminated.
const (
	// StepProvision covers working directory creation and gallery
	// data seeding.
	StepProvision = "provision"

	// StepInstall is the dependency installation subprocess.
	StepInstall = "install"

	// StepLaunch is application startup. A record with this step and
	// exit code 0 under the replace discipline means the bootstrap
	// handed its process over to the application; nothing more can be
	// recorded after that point.
	StepLaunch = "launch"

	// StepComplete means the full sequence ran and, under the
	// supervise discipline, the application exited. ExitCode holds
	// the application's exit code.
	StepComplete = "complete"
)

// State records the outcome of one bootstrap run.
type State struct {
	// Step is how far the run progressed (see the Step constants).
	Step string `cbor:"step"`

	// ExitCode is the process exit code the run terminated with. For
	// StepComplete this is the application's relayed exit code; for a
	// failed step it is the code carried by the step error.
	ExitCode int `cbor:"exit_code"`

	// ManifestDigest is the hex BLAKE3 digest of the dependency
	// manifest at the time of the run. Empty when the manifest could
	// not be read.
	ManifestDigest string `cbor:"manifest_digest,omitempty"`

	// StartedAt and FinishedAt bound the run. FinishedAt is the write
	// time for replace-discipline handoffs.
	StartedAt  time.Time `cbor:"started_at"`
	FinishedAt time.Time `cbor:"finished_at"`
}

// Write atomically writes a run record file. The record is written to
// a temporary location in the same directory, fsynced for durability,
// and renamed into place. Readers never see a partial write.
//
// The file is created with mode 0600. The parent directory must
// already exist (the provisioner creates the state directory before
// any record is written).
func Write(path string, state State) error {
	data, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}

	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary run record: %w", err)
	}

	// Write, sync, close — in that order. If any step fails, remove
	// the temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary run record: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary run record: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary run record: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming run record into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss
	// between the rename and the OS flushing directory metadata.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Read reads and parses a run record file. When the file does not
// exist, the returned error wraps os.ErrNotExist (testable with
// errors.Is).
func Read(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}

	var state State
	if err := codec.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing run record %s: %w", path, err)
	}
	return state, nil
}

// Check reads a run record and verifies it was written recently
// enough to be relevant. Returns the state and true when the file
// exists and FinishedAt is within maxAge of now. Returns a zero State
// and false when the file does not exist or is older than maxAge.
//
// Any other error (permission denied, corrupt CBOR) is returned
// as-is so the caller can distinguish "no record" from "record exists
// but unreadable."
func Check(path string, maxAge time.Duration) (State, bool, error) {
	state, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, err
	}

	if time.Since(state.FinishedAt) > maxAge {
		return State{}, false, nil
	}

	return state, true, nil
}

// Clear removes a run record file. Idempotent: returns nil when the
// file does not exist.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing run record: %w", err)
	}
	return nil
}
