// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

// OpenTerminal allocates a PTY pair standing in for a user's terminal:
// the test types into and reads from master, and the code under test
// uses terminal. Skips the test when the host cannot allocate PTYs.
// Both ends are closed when the test completes.
func OpenTerminal(t *testing.T) (master, terminal *os.File) {
	t.Helper()
	master, terminal, err := pty.Open()
	if err != nil {
		t.Skipf("PTY allocation unavailable: %v", err)
	}
	t.Cleanup(func() {
		terminal.Close()
		master.Close()
	})
	return master, terminal
}

// Capture accumulates everything read from a stream on a background
// goroutine.
type Capture struct {
	mu   sync.Mutex
	data bytes.Buffer
	done chan struct{}
}

// StartCapture copies reader into a new Capture until reader returns
// an error (including io.EOF, or EIO from a hung-up PTY master).
func StartCapture(reader io.Reader) *Capture {
	capture := &Capture{done: make(chan struct{})}
	go func() {
		defer close(capture.done)
		buffer := make([]byte, 4096)
		for {
			count, err := reader.Read(buffer)
			if count > 0 {
				capture.mu.Lock()
				capture.data.Write(buffer[:count])
				capture.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
	return capture
}

// Bytes returns a copy of everything captured so far.
func (capture *Capture) Bytes() []byte {
	capture.mu.Lock()
	defer capture.mu.Unlock()
	return bytes.Clone(capture.data.Bytes())
}

// Done is closed when the reader has returned an error.
func (capture *Capture) Done() <-chan struct{} {
	return capture.done
}

// RequireContains waits until the captured data contains want.
func (capture *Capture) RequireContains(t TB, want string, timeout time.Duration) {
	t.Helper()
	RequireEventually(t, func() bool {
		return strings.Contains(string(capture.Bytes()), want)
	}, timeout, "output containing %q", want)
}
