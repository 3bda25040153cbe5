// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session runs a command on a pseudo-terminal owned by keyhook,
// relaying the real terminal to it and rewriting keystrokes on the way.
//
// [Run] is the session controller. It snapshots the real terminal's
// configuration, allocates a PTY sized to the real terminal, starts
// the worker on the PTY subordinate through a [Spawner], switches the
// real terminal to raw mode, starts the [ResizeForwarder] and runs the
// [Relay] until the session ends. The terminal snapshot is restored on
// every exit path, and a restore failure is reported after any other
// error.
//
// The worker process is represented in the controller by a [Child]
// handle returned from [Spawner.Spawn]. [ExecSpawner] is the production
// implementation: it binds the subordinate to the worker's standard
// streams, makes it the worker's controlling terminal, and replaces
// the worker's image with the target command. An exec failure is
// returned as an [*ExecError] that carries the shell-convention exit
// status (127 not found, 126 not executable). Tests substitute fake
// spawners and children so the controller's state machine can be
// exercised without starting processes.
//
// The [Relay] multiplexes the real standard input and the PTY master
// with poll(2). Keystrokes are passed through a keymap.Map before they
// are written to the master; worker output is copied to standard
// output verbatim. Every poll wakes up at least once per
// [DefaultPollInterval] so worker termination is noticed without I/O.
// The relay ends in one of the states described by [EndReason]; for
// every state except [WorkerExited] it finishes with a blocking wait
// so no zombie is left behind and the worker's [ExitStatus] is always
// available.
//
// The [ResizeForwarder] reacts to SIGWINCH by copying the real
// terminal's window size onto the PTY master. It runs on a detached
// goroutine for the life of the process.
package session
