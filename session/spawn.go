// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Child is the controller's handle on the worker process.
type Child interface {
	// Pid returns the worker's process ID.
	Pid() int

	// Poll reports, without blocking, whether the worker has
	// terminated and if so how.
	Poll() (status ExitStatus, exited bool, err error)

	// Wait blocks until the worker terminates.
	Wait() (ExitStatus, error)
}

// Spawner starts the worker. The worker's standard input, output and
// error must all refer to subordinate; the caller releases its own
// descriptor for subordinate once Spawn returns.
type Spawner interface {
	Spawn(command string, args []string, subordinate *os.File) (Child, error)
}

// ExecSpawner starts the worker with os/exec. The command is resolved
// through PATH like execvp(3), and args[0] seen by the worker is
// command as given.
type ExecSpawner struct {
	// Env is the worker's environment. Nil inherits the controller's.
	Env []string

	// Dir is the worker's working directory. Empty inherits the
	// controller's.
	Dir string
}

// Spawn starts command on subordinate. The subordinate becomes the
// worker's controlling terminal in a new session, so job control and
// terminal-generated signals reach the worker instead of keyhook.
// The duplication onto descriptors 0, 1 and 2 happens in the child
// before exec, and a failure there or in exec itself is reported here
// as an [*ExecError].
func (spawner ExecSpawner) Spawn(command string, args []string, subordinate *os.File) (Child, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, newExecError(command, err)
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   append([]string{command}, args...),
		Env:    spawner.Env,
		Dir:    spawner.Dir,
		Stdin:  subordinate,
		Stdout: subordinate,
		Stderr: subordinate,
		SysProcAttr: &syscall.SysProcAttr{
			Setsid:  true,
			Setctty: true,
			Ctty:    0, // fd 0 in child = subordinate
		},
	}
	if err := cmd.Start(); err != nil {
		return nil, newExecError(command, err)
	}
	return &processChild{pid: cmd.Process.Pid, process: cmd.Process}, nil
}

// processChild reaps the worker with wait4 directly rather than
// through exec.Cmd.Wait, which has no non-blocking form.
type processChild struct {
	pid     int
	process *os.Process

	reaped bool
	status ExitStatus
}

func (child *processChild) Pid() int {
	return child.pid
}

func (child *processChild) Poll() (ExitStatus, bool, error) {
	return child.wait(unix.WNOHANG)
}

func (child *processChild) Wait() (ExitStatus, error) {
	status, _, err := child.wait(0)
	return status, err
}

func (child *processChild) wait(options int) (ExitStatus, bool, error) {
	if child.reaped {
		return child.status, true, nil
	}

	var waitStatus unix.WaitStatus
	for {
		pid, err := unix.Wait4(child.pid, &waitStatus, options, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return ExitStatus{}, false, fmt.Errorf("wait for worker %d: %w", child.pid, err)
		}
		if pid == 0 {
			// WNOHANG and the worker is still running.
			return ExitStatus{}, false, nil
		}
		break
	}

	child.reaped = true
	child.status = statusFromWait(waitStatus)
	_ = child.process.Release()
	return child.status, true, nil
}
