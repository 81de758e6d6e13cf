// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap implements the deployment bootstrap sequence for
// the IRIS gallery application: provision working directories, seed
// the gallery data file, install the declared dependencies, then
// start the application and relay its exit status.
//
// The sequence is an explicit fail-fast pipeline. Each step returns
// an error and the [Runner] short-circuits on the first one — the
// installer never runs after a provisioning failure, the application
// never starts after a failed install. Every step error carries the
// exit code the bootstrap process should terminate with (see
// [ProvisionError], [InstallError], [LaunchError]), so the operator's
// tooling observes the failing step's code directly.
//
// The run is strictly single-threaded: each step blocks to completion
// before the next begins, and no timeouts are imposed on the package
// tool or the application. The only concurrency is the signal
// forwarding goroutine the supervise-discipline [Launcher] keeps
// while the application runs.
package bootstrap
