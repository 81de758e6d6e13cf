// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
)

// Provisioner ensures the application's working directories exist.
type Provisioner struct {
	logger *slog.Logger
}

// NewProvisioner returns a Provisioner that logs directory creation
// to logger.
func NewProvisioner(logger *slog.Logger) *Provisioner {
	return &Provisioner{logger: logger}
}

// Ensure creates each path in order, including missing ancestors.
// Paths that already exist as directories are left untouched, so
// Ensure is idempotent. The first failure stops the walk: a path
// occupied by a non-directory or a permission error yields a
// *ProvisionError and the remaining paths are not attempted.
func (p *Provisioner) Ensure(paths []string) error {
	for _, path := range paths {
		// Stat first to produce a precise diagnostic when the path is
		// occupied: MkdirAll's ENOTDIR names the deepest ancestor, not
		// the conflicting entry. Stat follows symlinks, so a symlink to
		// a real directory counts as present.
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return &ProvisionError{
				Path: path,
				Err:  fmt.Errorf("exists as a %s, not a directory", fileKind(info)),
			}
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return &ProvisionError{Path: path, Err: err}
		}
		p.logger.Debug("working directory ensured", "path", path)
	}
	return nil
}

// fileKind names a non-directory entry for error messages.
func fileKind(info os.FileInfo) string {
	if info.Mode().IsRegular() {
		return "regular file"
	}
	return info.Mode().Type().String()
}
