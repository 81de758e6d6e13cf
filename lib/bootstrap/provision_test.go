// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// testLogger returns a logger that discards everything. Step progress
// is not what these tests assert.
func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestEnsureCreatesMissingDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	paths := []string{
		filepath.Join(root, "static", "gallery"),
		filepath.Join(root, "data"),
	}

	if err := NewProvisioner(testLogger()).Ensure(paths); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat %s: %v", path, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", path)
		}
	}
}

func TestEnsureIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	paths := []string{filepath.Join(root, "static", "gallery"), filepath.Join(root, "data")}
	provisioner := NewProvisioner(testLogger())

	if err := provisioner.Ensure(paths); err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if err := provisioner.Ensure(paths); err != nil {
		t.Fatalf("second Ensure on existing directories: %v", err)
	}
}

func TestEnsureAcceptsPreexistingDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	existing := filepath.Join(root, "static", "gallery")
	if err := os.MkdirAll(existing, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	err := NewProvisioner(testLogger()).Ensure([]string{existing, filepath.Join(root, "data")})
	if err != nil {
		t.Fatalf("Ensure with pre-existing directory: %v", err)
	}
}

func TestEnsureFailsOnFileConflict(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	conflict := filepath.Join(root, "data")
	if err := os.WriteFile(conflict, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	untouched := filepath.Join(root, "never-created")

	err := NewProvisioner(testLogger()).Ensure([]string{conflict, untouched})
	if err == nil {
		t.Fatal("expected error for path occupied by a regular file")
	}

	var provisionError *ProvisionError
	if !errors.As(err, &provisionError) {
		t.Fatalf("error type = %T, want *ProvisionError", err)
	}
	if provisionError.Path != conflict {
		t.Errorf("Path = %q, want %q", provisionError.Path, conflict)
	}
	if provisionError.ExitCode() != 1 {
		t.Errorf("ExitCode = %d, want 1", provisionError.ExitCode())
	}

	// Fail-fast: later paths are not attempted.
	if _, statErr := os.Stat(untouched); !os.IsNotExist(statErr) {
		t.Errorf("path after the failing one was created: %v", statErr)
	}
}

func TestEnsureFollowsSymlinkedDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "real-data")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	link := filepath.Join(root, "data")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	if err := NewProvisioner(testLogger()).Ensure([]string{link}); err != nil {
		t.Errorf("Ensure rejected symlink to directory: %v", err)
	}
}
