// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1.
func Fatal(err error) {
	Exit(1, err)
}

// Exit writes "error: err" to stderr when err is non-nil and exits
// with code.
func Exit(code int, err error) {
	report(os.Stderr, err)
	os.Exit(code)
}

func report(writer io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(writer, "error: %v\n", err)
	}
}
