// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// keyhook runs a command on a pseudo-terminal it owns, relays the real
// terminal to it, and rewrites selected keystroke sequences on the way
// in. See "keyhook --help".
package main

import (
	"errors"
	"os"

	"github.com/bureau-foundation/keyhook/cmd/keyhook/cli"
	"github.com/bureau-foundation/keyhook/cmd/keyhook/commands"
	"github.com/bureau-foundation/keyhook/lib/process"
)

func main() {
	if err := run(); err != nil {
		// "run" returns an ExitError carrying the worker's status. It
		// only has a message when the worker never started.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			process.Exit(exitErr.Code, exitErr.Err)
		}
		process.Fatal(err)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
