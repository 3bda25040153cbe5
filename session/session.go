// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/keyhook/lib/keymap"
	"github.com/bureau-foundation/keyhook/lib/ptysession"
	"github.com/bureau-foundation/keyhook/lib/termmode"
)

// Options configures a session.
type Options struct {
	// Command is the program to run on the PTY, resolved through
	// PATH. Args are its arguments, not including the program name.
	Command string
	Args    []string

	// Keymap rewrites keystrokes before the worker sees them. Nil
	// passes them through.
	Keymap *keymap.Map

	// Input and Output are the user-facing streams, normally
	// os.Stdin and os.Stdout.
	Input  *os.File
	Output *os.File

	// Terminal is the real terminal whose configuration is switched
	// to raw mode and whose size is mirrored onto the PTY. Defaults
	// to Input.
	Terminal *os.File

	// Spawner starts the worker. Defaults to ExecSpawner{}.
	Spawner Spawner

	PollInterval time.Duration
	BufferSize   int

	// Logger receives session lifecycle events. It must not write to
	// Output or to the terminal, which belong to the worker for the
	// duration of the session. Nil discards.
	Logger *slog.Logger
}

// Run executes one session and returns once the worker has terminated
// and the terminal has been restored.
//
// Errors that occur before the terminal is touched (the terminal
// cannot be queried, no PTY is available, the command cannot be
// executed) are returned without any terminal mutation. An
// [*ExecError] comes with an Outcome whose Status holds the 126/127
// convention code. Once raw mode is entered, the original terminal
// configuration is restored on every return path, and a failure to
// restore it is joined after every other error.
func Run(options Options) (outcome Outcome, err error) {
	if options.Command == "" {
		return Outcome{}, errors.New("session: no command")
	}
	if options.Input == nil || options.Output == nil {
		return Outcome{}, errors.New("session: input and output are required")
	}
	terminal := options.Terminal
	if terminal == nil {
		terminal = options.Input
	}
	spawner := options.Spawner
	if spawner == nil {
		spawner = ExecSpawner{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	terminalFd := int(terminal.Fd())

	saved, err := termmode.Capture(terminalFd)
	if err != nil {
		return Outcome{}, err
	}

	size := ptysession.GetWindowSizeOrDefault(terminal)
	pair, err := ptysession.Allocate(size)
	if err != nil {
		return Outcome{}, err
	}

	child, err := spawner.Spawn(options.Command, options.Args, pair.Subordinate)
	if err != nil {
		pair.Close()
		var execErr *ExecError
		if errors.As(err, &execErr) {
			return Outcome{Status: execErr.Status}, err
		}
		return Outcome{}, fmt.Errorf("start %s: %w", options.Command, err)
	}
	if err := pair.ReleaseSubordinate(); err != nil {
		logger.Warn("releasing PTY subordinate", "error", err)
	}

	logger.Info("session started",
		"command", options.Command,
		"args", options.Args,
		"pid", child.Pid(),
		"size", size.String(),
		"rules", options.Keymap.Len(),
		"keymap", options.Keymap.Fingerprint(),
	)

	guard, err := termmode.Acquire(terminalFd, saved)
	if err != nil {
		// Nothing to restore. Hang up the worker so the wait below
		// cannot block forever.
		pair.Close()
		status, waitErr := child.Wait()
		return Outcome{Reason: RelayFailed, Status: status}, errors.Join(err, waitErr)
	}
	defer func() {
		if closeErr := pair.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		if restoreErr := guard.Restore(); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restore terminal: %w", restoreErr))
		}
	}()

	StartResizeForwarder(terminal, pair.Master, logger)

	relay := &Relay{
		Input:        int(options.Input.Fd()),
		Output:       int(options.Output.Fd()),
		Master:       int(pair.Master.Fd()),
		Keymap:       options.Keymap,
		Child:        child,
		PollInterval: options.PollInterval,
		BufferSize:   options.BufferSize,
		Logger:       logger,
		Hangup: func() {
			if err := pair.Close(); err != nil {
				logger.Debug("hanging up PTY", "error", err)
			}
		},
	}
	outcome, err = relay.Run()
	logger.Info("session ended", "reason", outcome.Reason.String(), "status", outcome.Status.String())
	return outcome, err
}
