// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for keyhook.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in the commands
// package and dispatched via [Command.Execute], which handles flag
// parsing, subcommand routing, --version, and structured help output
// with examples. A [Command.Fallback] receives arguments that do not
// name a subcommand, which is how a bare "keyhook vim" reaches
// "keyhook run".
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Errors returned by commands are categorized with [ToolError]
// ([Validation], [NotFound], [Transient], [Internal]). [ExitError]
// carries an explicit process exit code, used to pass the worker's
// exit status through.
//
// [NewCommandLogger] builds the logger for ordinary command output;
// [NewSessionLogger] builds the file-backed logger used while the
// terminal is owned by a session.
package cli
