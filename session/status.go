// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// ExitStatus describes how the worker terminated: with an exit code,
// or killed by a signal (Signal non-zero).
type ExitStatus struct {
	Code   int
	Signal syscall.Signal
}

// Signaled reports whether the worker was terminated by a signal.
func (status ExitStatus) Signaled() bool {
	return status.Signal != 0
}

// ExitCode returns the code the controller should exit with so that
// shells and scripts see the worker's outcome: the worker's own code,
// or 128+N for a worker killed by signal N.
func (status ExitStatus) ExitCode() int {
	if status.Signaled() {
		return 128 + int(status.Signal)
	}
	return status.Code
}

func (status ExitStatus) String() string {
	if status.Signaled() {
		return fmt.Sprintf("killed by signal %d (%v)", int(status.Signal), status.Signal)
	}
	return fmt.Sprintf("exit status %d", status.Code)
}

func statusFromWait(waitStatus unix.WaitStatus) ExitStatus {
	if waitStatus.Signaled() {
		return ExitStatus{Signal: waitStatus.Signal()}
	}
	return ExitStatus{Code: waitStatus.ExitStatus()}
}
