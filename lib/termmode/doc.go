// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package termmode captures, switches and restores a terminal's
// line-discipline configuration.
//
// [Capture] snapshots the termios settings of a terminal file
// descriptor into an opaque [Configuration]. [ApplyRaw] derives raw
// mode from a snapshot: canonical input, echo, signal-generating
// control characters, CR-to-NL translation, XON/XOFF flow control and
// output post-processing are disabled, and reads return as soon as a
// single byte is available. [Restore] reapplies a snapshot
// immediately, without waiting for pending output to drain.
//
// Raw mode is process-wide state with a strict acquire/release
// pairing, so callers should hold it through a [Guard]: [Enter] (or
// [Acquire] with an earlier snapshot) switches the terminal to raw mode
// and returns a Guard whose Restore method reapplies the snapshot
// exactly once no matter how many exit paths call it.
//
// Unlike golang.org/x/term.MakeRaw, which applies cfmakeraw(3) in full,
// ApplyRaw changes only the flags listed above: character size, parity
// and the remaining input flags keep their captured values.
package termmode
