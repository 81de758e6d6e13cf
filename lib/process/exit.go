// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These functions
// centralize the raw I/O that exists before the structured logger is
// initialized and the single process-exit path in main().
package process

import (
	"errors"
	"fmt"
	"os"
)

// ExitCoder is implemented by errors that carry a specific process
// exit code. Bootstrap step errors implement it so that the binary's
// exit code reflects the failing step (the installer's own exit code,
// 127 for missing executables, and so on).
type ExitCoder interface {
	ExitCode() int
}

// ExitCode returns the exit code carried by err, walking the wrap
// chain for an ExitCoder. Errors without one map to 1.
func ExitCode(err error) int {
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Fatal writes "error: err" to stderr and exits with the code carried
// by err (1 when err carries none). Use it in main() for errors from
// run() where the structured logger may not be initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(ExitCode(err))
}
