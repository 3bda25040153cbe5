// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the keyhook command tree.
package commands

import (
	"fmt"

	"github.com/bureau-foundation/keyhook/cmd/keyhook/cli"
	"github.com/bureau-foundation/keyhook/lib/version"
)

// Root builds and returns the complete keyhook command tree. Arguments
// that do not name a subcommand are handed to "run", so the common
// invocation is simply "keyhook [flags] <command> [args...]".
func Root() *cli.Command {
	run := RunCommand()
	return &cli.Command{
		Name: "keyhook",
		Description: `keyhook: run a program on a pseudo-terminal and remap its keystrokes.

Every byte typed is relayed to the program, except that byte sequences
matching a remap rule are replaced on the way. The program's output is
relayed back untouched, and keyhook exits with the program's status.`,
		Usage: "keyhook [flags] <command> [args...]\n  keyhook <subcommand> [flags]",
		Subcommands: []*cli.Command{
			run,
			KeysCommand(),
			RulesCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("keyhook %s\n", version.Full())
					return nil
				},
			},
		},
		Fallback: run,
		Version: func() string {
			return "keyhook " + version.Info()
		},
		Examples: []cli.Example{
			{
				Description: "Find out which bytes a key sends",
				Command:     "keyhook keys",
			},
			{
				Description: "Make the up arrow send the application-mode sequence",
				Command:     "keyhook -k 1b5b41:1b4f41 vim notes.txt",
			},
			{
				Description: "Swallow F1 entirely (empty output)",
				Command:     "keyhook -k 1b4f50: htop",
			},
			{
				Description: "Load rules from a file and check the result",
				Command:     "keyhook rules --keymap-file ~/.config/keyhook/arrows.yaml",
			},
		},
	}
}
