// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/keyhook/cmd/keyhook/cli"
	"github.com/bureau-foundation/keyhook/lib/ptysession"
	"github.com/bureau-foundation/keyhook/lib/termmode"
	"github.com/bureau-foundation/keyhook/session"
)

// RunCommand returns the "run" command, which is also what a bare
// "keyhook <command>" invokes.
func RunCommand() *cli.Command {
	var (
		sources  ruleSources
		logFile  string
		logLevel string
	)

	return &cli.Command{
		Name:    "run",
		Summary: "Run a command with remapped keystrokes",
		Description: `Run a command on a new pseudo-terminal, relaying the real terminal to
it and rewriting keystrokes that match a remap rule.

The real terminal is switched to raw mode for the duration and restored
afterwards, however the command ends. keyhook exits with the command's
exit status; a command killed by signal N yields 128+N, a command that
cannot be found 127, and one that cannot be executed 126.

Flags are read up to the first non-flag argument; everything from the
command name on is passed to the command untouched.`,
		Usage: "keyhook [run] [flags] [--] <command> [args...]",
		Examples: []cli.Example{
			{
				Description: "Translate normal-mode cursor keys to application mode",
				Command:     "keyhook -k 1b5b41:1b4f41 -k 1b5b42:1b4f42 vim",
			},
			{
				Description: "Use a rule file and record the session lifecycle",
				Command:     "keyhook run -f arrows.yaml --log-file /tmp/keyhook.log -- less -R log.txt",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.SetInterspersed(false)
			sources.register(flagSet)
			flagSet.StringVar(&logFile, "log-file", "", "append session events to this file (overrides log.file)")
			flagSet.StringVar(&logLevel, "log-level", "", "session log level: debug, info, warn, error (overrides log.level)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("no command given").
					WithHint("Usage: keyhook [flags] <command> [args...]")
			}

			cfg, keys, err := sources.load()
			if err != nil {
				return err
			}
			if !termmode.IsTerminal(int(os.Stdin.Fd())) {
				return cli.Validation("standard input is not a terminal").
					WithHint("keyhook relays an interactive terminal; run it from a shell, not a pipe.")
			}
			if keys.Len() == 0 {
				cli.NewCommandLogger().Warn("no remap rules configured, keystrokes pass through unchanged",
					"hint", "add rules with -k INPUT_HEX:OUTPUT_HEX or --keymap-file")
			}

			logOptions := cli.SessionLogOptions{
				File:   cfg.Log.File,
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
			}
			if logFile != "" {
				logOptions.File = logFile
			}
			if logLevel != "" {
				logOptions.Level = logLevel
			}
			logger, closeLog, err := cli.NewSessionLogger(logOptions)
			if err != nil {
				return cli.Validation("%w", err)
			}
			defer closeLog()

			outcome, err := session.Run(session.Options{
				Command:      args[0],
				Args:         args[1:],
				Keymap:       keys,
				Input:        os.Stdin,
				Output:       os.Stdout,
				PollInterval: cfg.Session.PollInterval,
				BufferSize:   cfg.Session.BufferSize,
				Logger:       logger,
			})
			return sessionExit(outcome, err)
		},
	}
}

// sessionExit turns the result of a session into the error that gives
// keyhook the worker's exit status.
func sessionExit(outcome session.Outcome, err error) error {
	var execErr *session.ExecError
	switch {
	case errors.As(err, &execErr):
		return &cli.ExitError{Code: execErr.Status.ExitCode(), Err: err}
	case errors.Is(err, termmode.ErrTerminalQuery):
		return cli.Validation("%w", err)
	case errors.Is(err, ptysession.ErrAllocation):
		return cli.Transient("%w", err)
	case err != nil:
		return cli.Internal("%w", err)
	}

	if code := outcome.Status.ExitCode(); code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}
