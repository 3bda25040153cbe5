// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for keyhook packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls. [RequireEventually] polls
// a condition that has no channel to wait on, such as a terminal's
// line discipline being switched by another goroutine. [Capture] is a
// goroutine-safe byte sink for reading a PTY in the background, and
// [OpenTerminal] allocates a PTY pair that stands in for the user's
// terminal.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
