// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/iris-gallery/bootstrap/lib/config"
	"github.com/iris-gallery/bootstrap/lib/testutil"
)

// writeApp writes a shell script acting as the application entry
// point and returns its path. Launched as sh <path>, so no exec bit
// is needed.
func writeApp(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.sh")
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLaunchRelaysExitCode(t *testing.T) {
	t.Parallel()

	launcher := NewLauncher(config.Supervise, testLogger())
	spec := LaunchSpec{Interpreter: "/bin/sh", Entrypoint: writeApp(t, "exit 9\n")}

	code, err := launcher.Launch(context.Background(), spec)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if code != 9 {
		t.Errorf("exit code = %d, want 9", code)
	}
}

func TestLaunchSuccessIsZero(t *testing.T) {
	t.Parallel()

	launcher := NewLauncher(config.Supervise, testLogger())
	spec := LaunchSpec{Interpreter: "/bin/sh", Entrypoint: writeApp(t, "exit 0\n")}

	code, err := launcher.Launch(context.Background(), spec)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestLaunchInterpreterUnavailable(t *testing.T) {
	t.Parallel()

	launcher := NewLauncher(config.Supervise, testLogger())
	spec := LaunchSpec{
		Interpreter: filepath.Join(t.TempDir(), "no-such-python"),
		Entrypoint:  writeApp(t, "exit 0\n"),
	}

	_, err := launcher.Launch(context.Background(), spec)
	var launchError *LaunchError
	if !errors.As(err, &launchError) {
		t.Fatalf("error = %v, want *LaunchError", err)
	}
	if launchError.ExitCode() != CodeCommandNotFound {
		t.Errorf("ExitCode = %d, want %d", launchError.ExitCode(), CodeCommandNotFound)
	}
}

func TestLaunchEntrypointMissing(t *testing.T) {
	t.Parallel()

	launcher := NewLauncher(config.Supervise, testLogger())
	spec := LaunchSpec{
		Interpreter: "/bin/sh",
		Entrypoint:  filepath.Join(t.TempDir(), "main.py"),
	}

	_, err := launcher.Launch(context.Background(), spec)
	var launchError *LaunchError
	if !errors.As(err, &launchError) {
		t.Fatalf("error = %v, want *LaunchError", err)
	}
}

// TestLaunchForwardsTermination sends SIGTERM to the test process
// while a supervised application runs and expects the application's
// process group to receive it. Not parallel: it manipulates
// process-wide signal handling.
func TestLaunchForwardsTermination(t *testing.T) {
	readyPath := filepath.Join(t.TempDir(), "ready")
	script := "touch " + readyPath + "\nsleep 30\n"

	launcher := NewLauncher(config.Supervise, testLogger())
	spec := LaunchSpec{Interpreter: "/bin/sh", Entrypoint: writeApp(t, script)}

	results := make(chan int, 1)
	go func() {
		code, err := launcher.Launch(context.Background(), spec)
		if err != nil {
			t.Errorf("Launch: %v", err)
			code = -1
		}
		results <- code
	}()

	// Wait for the application to signal readiness, then give the
	// launcher's forwarding goroutine a moment to be registered.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(readyPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("application never became ready")
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	code := testutil.RequireReceive(t, results, 10*time.Second, "waiting for relayed exit code")
	if code != 128+int(syscall.SIGTERM) {
		t.Errorf("exit code = %d, want %d", code, 128+int(syscall.SIGTERM))
	}
}

func TestLaunchKilledApplicationMapsToSignalCode(t *testing.T) {
	t.Parallel()

	// The application kills itself; the launcher must translate the
	// signal death to 128+signal.
	launcher := NewLauncher(config.Supervise, testLogger())
	spec := LaunchSpec{Interpreter: "/bin/sh", Entrypoint: writeApp(t, "kill -KILL $$\n")}

	code, err := launcher.Launch(context.Background(), spec)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if code != 128+int(syscall.SIGKILL) {
		t.Errorf("exit code = %d, want %d", code, 128+int(syscall.SIGKILL))
	}
}

func TestReplaceDisciplineExecsInterpreter(t *testing.T) {
	t.Parallel()

	entrypoint := writeApp(t, "exit 0\n")
	launcher := NewLauncher(config.Replace, testLogger())

	var gotArgv0 string
	var gotArgv []string
	launcher.execFunc = func(argv0 string, argv []string, envv []string) error {
		gotArgv0 = argv0
		gotArgv = argv
		// A returning exec means the replacement failed.
		return syscall.ENOEXEC
	}

	_, err := launcher.Launch(context.Background(), LaunchSpec{
		Interpreter: "/bin/sh",
		Entrypoint:  entrypoint,
	})

	var launchError *LaunchError
	if !errors.As(err, &launchError) {
		t.Fatalf("error = %v, want *LaunchError", err)
	}

	if gotArgv0 == "" {
		t.Fatal("execFunc never called")
	}
	if filepath.Base(gotArgv0) != "sh" {
		t.Errorf("argv0 = %q, want resolved sh path", gotArgv0)
	}
	if len(gotArgv) != 2 || gotArgv[1] != entrypoint {
		t.Errorf("argv = %v, want [sh %s]", gotArgv, entrypoint)
	}
}
