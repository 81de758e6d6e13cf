// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import "fmt"

// CodeCommandNotFound is the exit code for a step whose executable
// could not be run at all: the package tool is not installed, the
// interpreter is missing, or the manifest does not exist. 127 matches
// the shell convention for "command not found", so deployment tooling
// that already classifies shell failures keeps working.
const CodeCommandNotFound = 127

// ProvisionError reports a working directory or seed file that could
// not be put in place: a path occupied by a non-directory, a
// permission failure, or an unusable gallery data file.
type ProvisionError struct {
	Path string
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning %s: %v", e.Path, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// ExitCode implements process.ExitCoder. Provisioning failures have
// no external code to relay, so they map to the generic failure code.
func (e *ProvisionError) ExitCode() int { return 1 }

// InstallError reports a failed dependency installation. Code is the
// package tool's exit code when the tool ran and failed, or
// CodeCommandNotFound when it could not be started (tool not on PATH,
// manifest missing).
type InstallError struct {
	Tool string
	Code int
	Err  error
}

func (e *InstallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("installing dependencies with %s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("installing dependencies: %s exited with code %d", e.Tool, e.Code)
}

func (e *InstallError) Unwrap() error { return e.Err }

// ExitCode implements process.ExitCoder. The bootstrap relays the
// tool's exit code as its own.
func (e *InstallError) ExitCode() int { return e.Code }

// LaunchError reports an application that could not be started. Once
// the application is running, its failures are its own — the
// bootstrap relays the exit code without wrapping it in an error.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitCode implements process.ExitCoder.
func (e *LaunchError) ExitCode() int { return CodeCommandNotFound }
