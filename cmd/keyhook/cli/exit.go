// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a specific process exit code. "keyhook run" returns
// one carrying the worker's exit status so that keyhook is transparent
// to the shell or script that started it.
//
// When Err is nil the entry point exits silently: the worker has
// already said whatever it had to say on the terminal. When Err is set
// it is printed first, for failures such as an unexecutable command
// that still map to a conventional status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the attached error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code. The entry point checks for this
// interface on returned errors to distinguish "handled non-zero exit"
// from "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}
