// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entry point helpers for the keyhook binary.
// They centralize the raw stderr writes that happen after every
// command has returned and the terminal is back in its original mode:
//
//   - [Fatal] reports an unexpected error and exits 1.
//   - [Exit] exits with a chosen status, optionally reporting the error
//     that led to it first.
package process
