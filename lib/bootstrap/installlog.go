// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// installLogName is the file that receives a tee of the package
// tool's output inside the configured log directory.
const installLogName = "install.log"

// zstdEncoder is shared across calls. zstd.Encoder is safe for
// concurrent EncodeAll use and expensive to initialize.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("bootstrap: zstd encoder initialization failed: " + err.Error())
	}
}

// openLogFile archives the previous install log and opens a fresh
// one. The log directory is created if the provisioner has not run
// yet (the installer is also usable standalone).
func (i *Installer) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(i.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(i.LogDir, installLogName)
	i.archivePreviousLog(logPath)

	file, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating install log: %w", err)
	}
	return file, nil
}

// archivePreviousLog compresses an existing install log to
// install.log.<timestamp>.zst and removes the original. Installer
// output is text, which zstd compresses well. Failures are logged at
// Warn and never abort the run — losing an old log is not a
// deployment failure.
func (i *Installer) archivePreviousLog(logPath string) {
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		i.logger.Warn("reading previous install log", "path", logPath, "error", err)
		return
	}
	if len(data) == 0 {
		os.Remove(logPath)
		return
	}

	archivePath := fmt.Sprintf("%s.%s.zst", logPath, time.Now().UTC().Format("20060102T150405Z"))
	compressed := zstdEncoder.EncodeAll(data, nil)
	if err := os.WriteFile(archivePath, compressed, 0644); err != nil {
		i.logger.Warn("archiving previous install log", "path", archivePath, "error", err)
		return
	}
	if err := os.Remove(logPath); err != nil {
		i.logger.Warn("removing archived install log", "path", logPath, "error", err)
	}
}
