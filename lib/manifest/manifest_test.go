// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestFileDigestTracksContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte("fastapi==0.109.0\nuvicorn==0.27.0\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	first, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	again, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if first != again {
		t.Error("same content produced different digests")
	}

	if err := os.WriteFile(path, []byte("fastapi==0.110.0\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	changed, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if changed == first {
		t.Error("changed content produced the same digest")
	}
}

func TestFileMissingManifest(t *testing.T) {
	t.Parallel()

	_, err := File(filepath.Join(t.TempDir(), "requirements.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("File on missing manifest: err = %v, want ErrNotExist", err)
	}
}

func TestStat(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()

	if err := Stat(filepath.Join(directory, "requirements.txt")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat on missing manifest: err = %v, want ErrNotExist", err)
	}

	if err := Stat(directory); err == nil {
		t.Error("Stat on a directory: expected error")
	}

	path := filepath.Join(directory, "requirements.txt")
	if err := os.WriteFile(path, []byte("flask\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := Stat(path); err != nil {
		t.Errorf("Stat on regular file: %v", err)
	}
}
