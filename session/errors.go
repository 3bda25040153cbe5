// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

var (
	// ErrExec is matched (via errors.Is) by every [*ExecError].
	ErrExec = errors.New("cannot execute command")

	// ErrRelayRead is returned (wrapped) when reading standard input
	// or the PTY master fails with a non-transient error.
	ErrRelayRead = errors.New("relay read failed")

	// ErrRelayWrite is returned (wrapped) when keystrokes cannot be
	// written to the PTY master or worker output cannot be written to
	// standard output.
	ErrRelayWrite = errors.New("relay write failed")
)

// Exit statuses reported for exec failures, following the POSIX shell
// convention.
const (
	ExitNotExecutable = 126
	ExitNotFound      = 127
)

// ExecError reports that the worker's image could not be replaced with
// the target command.
type ExecError struct {
	Command string
	Err     error

	// Status is the exit status the controller reports for this
	// failure.
	Status ExitStatus
}

func newExecError(command string, err error) *ExecError {
	code := ExitNotExecutable
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		code = ExitNotFound
	}
	return &ExecError{Command: command, Err: err, Status: ExitStatus{Code: code}}
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute %s: %v", e.Command, e.Err)
}

// Unwrap exposes both [ErrExec] and the underlying cause to errors.Is
// and errors.As.
func (e *ExecError) Unwrap() []error {
	return []error{ErrExec, e.Err}
}
