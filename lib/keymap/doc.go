// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keymap rewrites byte sequences in a keystroke stream.
//
// A [Map] is built once from a list of [Rule] values and is immutable
// afterwards, so a single Map can be shared by any number of readers
// without synchronization. [Map.Transform] scans its input left to
// right and, at every position, replaces the longest rule pattern that
// is a prefix of the remaining input with that rule's output. Bytes
// that start no pattern pass through unchanged. Matching walks a byte
// trie, so the result never depends on the order in which rules are
// iterated; when two rules share an identical pattern, the one
// registered later wins.
//
// Rules are written as hex pairs, "INPUT:OUTPUT" on the command line
// ([ParseRule]) or as {input, output} entries in YAML and JSONC rule
// files ([LoadFile]). An empty output deletes the matched sequence.
//
// [Map.Fingerprint] returns a blake3 digest of the effective rule set,
// used to correlate session logs with the configuration that produced
// them.
//
// This package depends on no other keyhook packages.
package keymap
