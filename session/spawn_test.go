// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/keyhook/lib/ptysession"
	"github.com/bureau-foundation/keyhook/lib/testutil"
)

// spawnOnPTY starts command on a fresh PTY and releases the test's
// subordinate descriptor, as the session controller does. The returned
// capture collects everything the worker writes.
func spawnOnPTY(t *testing.T, command string, args ...string) (Child, *testutil.Capture, string) {
	t.Helper()
	pair, err := ptysession.Allocate(ptysession.DefaultWindowSize)
	if err != nil {
		t.Skipf("PTY allocation unavailable: %v", err)
	}
	t.Cleanup(func() { pair.Close() })
	name := pair.SubordinateName()

	child, err := ExecSpawner{}.Spawn(command, args, pair.Subordinate)
	if err != nil {
		t.Fatalf("Spawn(%s) error: %v", command, err)
	}
	if err := pair.ReleaseSubordinate(); err != nil {
		t.Fatalf("ReleaseSubordinate() error: %v", err)
	}
	return child, testutil.StartCapture(pair.Master), name
}

func TestSpawnExitCode(t *testing.T) {
	t.Parallel()
	child, _, _ := spawnOnPTY(t, "sh", "-c", "exit 3")
	status, err := child.Wait()
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if status != (ExitStatus{Code: 3}) {
		t.Errorf("status = %v, want exit status 3", status)
	}
}

func TestSpawnKilledBySignal(t *testing.T) {
	t.Parallel()
	child, _, _ := spawnOnPTY(t, "sh", "-c", "kill -TERM $$")
	status, err := child.Wait()
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if status.Signal != syscall.SIGTERM {
		t.Errorf("status = %v, want killed by SIGTERM", status)
	}
	if status.ExitCode() != 143 {
		t.Errorf("ExitCode() = %d, want 143", status.ExitCode())
	}
}

func TestSpawnPollThenWait(t *testing.T) {
	t.Parallel()
	child, _, _ := spawnOnPTY(t, "sleep", "30")

	if _, exited, err := child.Poll(); err != nil || exited {
		t.Fatalf("Poll() = exited %v, error %v; want running", exited, err)
	}
	if err := unix.Kill(child.Pid(), unix.SIGKILL); err != nil {
		t.Fatalf("kill worker: %v", err)
	}
	status, err := child.Wait()
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if status.Signal != syscall.SIGKILL {
		t.Errorf("status = %v, want killed by SIGKILL", status)
	}

	// The reaped status is remembered; the pid is not waited for again.
	polled, exited, err := child.Poll()
	if err != nil || !exited || polled != status {
		t.Errorf("Poll() after Wait = (%v, %v, %v), want (%v, true, nil)", polled, exited, err, status)
	}
}

func TestSpawnControllingTerminal(t *testing.T) {
	t.Parallel()
	child, output, name := spawnOnPTY(t, "tty")
	status, err := child.Wait()
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if status.Code != 0 {
		t.Fatalf("tty exited with %v; standard input is not the PTY", status)
	}
	output.RequireContains(t, name, testTimeout)
}

func TestSpawnExecErrors(t *testing.T) {
	t.Parallel()
	directory := t.TempDir()
	notExecutable := filepath.Join(directory, "script")
	if err := os.WriteFile(notExecutable, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	tests := []struct {
		name    string
		command string
		code    int
		cause   error
	}{
		{"not on PATH", "keyhook-test-no-such-command", ExitNotFound, exec.ErrNotFound},
		{"missing path", filepath.Join(directory, "missing"), ExitNotFound, os.ErrNotExist},
		{"not executable", notExecutable, ExitNotExecutable, os.ErrPermission},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			pair, err := ptysession.Allocate(ptysession.DefaultWindowSize)
			if err != nil {
				t.Skipf("PTY allocation unavailable: %v", err)
			}
			defer pair.Close()

			_, err = ExecSpawner{}.Spawn(test.command, nil, pair.Subordinate)
			if !errors.Is(err, ErrExec) {
				t.Fatalf("Spawn() error = %v, want ErrExec", err)
			}
			if !errors.Is(err, test.cause) {
				t.Errorf("Spawn() error = %v, want cause %v", err, test.cause)
			}
			var execErr *ExecError
			if !errors.As(err, &execErr) {
				t.Fatalf("Spawn() error is %T, want *ExecError", err)
			}
			if execErr.Status.ExitCode() != test.code {
				t.Errorf("ExitCode() = %d, want %d", execErr.Status.ExitCode(), test.code)
			}
		})
	}
}
