// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ptysession allocates pseudo-terminal pairs and manages the
// ownership of their two ends.
//
// [Allocate] opens a master/subordinate pair sized to a [WindowSize].
// The process that starts the worker hands the subordinate to the
// child and must then call [Pair.ReleaseSubordinate]: while any
// descriptor for the subordinate stays open in the controller, the
// master never observes end-of-file after the worker exits. The master
// is opened close-on-exec, so it never leaks into the worker.
//
// [GetWindowSize] and [SetWindowSize] read and write terminal
// dimensions (TIOCGWINSZ / TIOCSWINSZ). Setting the size on a master
// delivers SIGWINCH to the foreground process group on the subordinate
// side.
package ptysession
