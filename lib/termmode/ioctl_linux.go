// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termmode

import "golang.org/x/sys/unix"

// TCSETS applies immediately (the TCSANOW form of tcsetattr).
const (
	ioctlReadTermios  = unix.TCGETS
	ioctlWriteTermios = unix.TCSETS
)
