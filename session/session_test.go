// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/bureau-foundation/keyhook/lib/keymap"
	"github.com/bureau-foundation/keyhook/lib/ptysession"
	"github.com/bureau-foundation/keyhook/lib/termmode"
	"github.com/bureau-foundation/keyhook/lib/testutil"
)

// userTerminal is a PTY standing in for the user's terminal: the
// session runs on terminal while the test types into master and
// collects what the session writes in output.
type userTerminal struct {
	master   *os.File
	terminal *os.File
	output   *testutil.Capture
}

func newUserTerminal(t *testing.T) *userTerminal {
	t.Helper()
	master, terminal := testutil.OpenTerminal(t)
	return &userTerminal{
		master:   master,
		terminal: terminal,
		output:   testutil.StartCapture(master),
	}
}

func (user *userTerminal) capture(t *testing.T) *termmode.Configuration {
	t.Helper()
	configuration, err := termmode.Capture(int(user.terminal.Fd()))
	if err != nil {
		t.Fatalf("capture terminal configuration: %v", err)
	}
	return configuration
}

// requireRaw waits until the session has switched the terminal to raw
// mode, which happens after the worker has been started.
func (user *userTerminal) requireRaw(t *testing.T) {
	t.Helper()
	fd := int(user.terminal.Fd())
	testutil.RequireEventually(t, func() bool {
		configuration, err := termmode.Capture(fd)
		return err == nil && configuration.IsRaw()
	}, testTimeout, "terminal in raw mode")
}

func (user *userTerminal) options(command string, args ...string) Options {
	return Options{
		Command: command,
		Args:    args,
		Input:   user.terminal,
		Output:  user.terminal,
	}
}

type sessionResult struct {
	outcome Outcome
	err     error
}

func startSession(options Options) <-chan sessionResult {
	done := make(chan sessionResult, 1)
	go func() {
		outcome, err := Run(options)
		done <- sessionResult{outcome, err}
	}()
	return done
}

func TestSessionRemapsKeystrokes(t *testing.T) {
	t.Parallel()
	user := newUserTerminal(t)
	keys, err := keymap.New([]keymap.Rule{{
		Input:  []byte{0x1b, 0x5b, 0x41},
		Output: []byte{0x1b, 0x4f, 0x41},
	}})
	if err != nil {
		t.Fatalf("keymap.New: %v", err)
	}

	options := user.options("sh", "-c", "head -c 6 | od -An -tx1")
	options.Keymap = keys
	done := startSession(options)

	user.requireRaw(t)
	if _, err := user.master.Write([]byte("a\x1b[Ab\n")); err != nil {
		t.Fatalf("type keystrokes: %v", err)
	}

	result := testutil.RequireReceive(t, done, testTimeout, "session to end")
	if result.err != nil {
		t.Fatalf("Run() error: %v", result.err)
	}
	if result.outcome.Status.ExitCode() != 0 {
		t.Errorf("worker %v, want exit status 0", result.outcome.Status)
	}
	user.output.RequireContains(t, "61 1b 4f 41 62 0a", testTimeout)
}

func TestSessionRestoresTerminal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"exit zero", []string{"-c", "exit 0"}, 0},
		{"exit non-zero", []string{"-c", "exit 7"}, 7},
		{"killed by signal", []string{"-c", "kill -KILL $$"}, 128 + int(syscall.SIGKILL)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			user := newUserTerminal(t)
			before := user.capture(t)

			result := testutil.RequireReceive(t, startSession(user.options("sh", test.args...)), testTimeout, "session to end")
			if result.err != nil {
				t.Fatalf("Run() error: %v", result.err)
			}
			if got := result.outcome.Status.ExitCode(); got != test.code {
				t.Errorf("ExitCode() = %d, want %d", got, test.code)
			}
			if after := user.capture(t); !after.Equal(before) {
				t.Error("terminal configuration after the session differs from before")
			}
		})
	}
}

func TestSessionInputClosed(t *testing.T) {
	t.Parallel()
	user := newUserTerminal(t)
	before := user.capture(t)

	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer reader.Close()

	options := user.options("sleep", "30")
	options.Input = reader
	options.Terminal = user.terminal
	done := startSession(options)

	user.requireRaw(t)
	writer.Close()

	result := testutil.RequireReceive(t, done, testTimeout, "session to end")
	if result.err != nil {
		t.Fatalf("Run() error: %v", result.err)
	}
	if result.outcome.Reason != InputClosed {
		t.Errorf("Reason = %v, want %v", result.outcome.Reason, InputClosed)
	}
	// Closing the master hangs up the worker.
	if result.outcome.Status.Signal != syscall.SIGHUP {
		t.Errorf("worker %v, want killed by SIGHUP", result.outcome.Status)
	}
	if after := user.capture(t); !after.Equal(before) {
		t.Error("terminal configuration after the session differs from before")
	}
}

func TestSessionWindowSize(t *testing.T) {
	t.Parallel()
	user := newUserTerminal(t)
	if err := ptysession.SetWindowSize(user.terminal, ptysession.WindowSize{Rows: 30, Columns: 100}); err != nil {
		t.Fatalf("SetWindowSize() error: %v", err)
	}

	result := testutil.RequireReceive(t, startSession(user.options("stty", "size")), testTimeout, "session to end")
	if result.err != nil {
		t.Fatalf("Run() error: %v", result.err)
	}
	user.output.RequireContains(t, "30 100", testTimeout)
}

func TestSessionExecError(t *testing.T) {
	t.Parallel()
	user := newUserTerminal(t)
	before := user.capture(t)

	outcome, err := Run(user.options("keyhook-test-no-such-command"))
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Run() error = %v, want *ExecError", err)
	}
	if outcome.Status.ExitCode() != ExitNotFound {
		t.Errorf("ExitCode() = %d, want %d", outcome.Status.ExitCode(), ExitNotFound)
	}
	if after := user.capture(t); !after.Equal(before) {
		t.Error("terminal was modified before the command was known to be executable")
	}
}

func TestSessionNotATerminal(t *testing.T) {
	t.Parallel()
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer reader.Close()
	defer writer.Close()

	_, err = Run(Options{Command: "true", Input: reader, Output: writer})
	if !errors.Is(err, termmode.ErrTerminalQuery) {
		t.Fatalf("Run() error = %v, want ErrTerminalQuery", err)
	}
}

// recordingSpawner hands back a fake worker instead of starting one.
type recordingSpawner struct {
	child *fakeChild
	err   error

	command     string
	args        []string
	subordinate string
}

func (spawner *recordingSpawner) Spawn(command string, args []string, subordinate *os.File) (Child, error) {
	spawner.command = command
	spawner.args = args
	spawner.subordinate = subordinate.Name()
	if spawner.err != nil {
		return nil, spawner.err
	}
	return spawner.child, nil
}

func TestSessionWithFakeWorker(t *testing.T) {
	t.Parallel()
	user := newUserTerminal(t)
	before := user.capture(t)

	child := newFakeChild(ExitStatus{Code: 5})
	child.exit()
	spawner := &recordingSpawner{child: child}
	options := user.options("editor", "--flag", "file")
	options.Spawner = spawner

	result := testutil.RequireReceive(t, startSession(options), testTimeout, "session to end")
	if result.err != nil {
		t.Fatalf("Run() error: %v", result.err)
	}
	if result.outcome.Reason != WorkerExited || result.outcome.Status.Code != 5 {
		t.Errorf("outcome = %+v, want worker-exited with status 5", result.outcome)
	}
	if spawner.command != "editor" || len(spawner.args) != 2 || spawner.args[1] != "file" {
		t.Errorf("spawned %q %q, want editor [--flag file]", spawner.command, spawner.args)
	}
	if spawner.subordinate == "" {
		t.Error("spawner did not receive the PTY subordinate")
	}
	if after := user.capture(t); !after.Equal(before) {
		t.Error("terminal configuration after the session differs from before")
	}
}

func TestSessionSpawnFailure(t *testing.T) {
	t.Parallel()
	user := newUserTerminal(t)
	before := user.capture(t)
	failure := errors.New("no process slots")

	options := user.options("editor")
	options.Spawner = &recordingSpawner{err: failure}
	_, err := Run(options)
	if !errors.Is(err, failure) {
		t.Fatalf("Run() error = %v, want %v", err, failure)
	}
	if after := user.capture(t); !after.Equal(before) {
		t.Error("terminal was modified although the worker never started")
	}
}
