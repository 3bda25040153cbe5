// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/keyhook/lib/ptysession"
)

// ResizeForwarder copies the real terminal's window size onto the PTY
// master whenever it is notified of a change.
type ResizeForwarder struct {
	// Source is the real terminal whose size is read.
	Source *os.File

	// Master is the PTY master the size is applied to.
	Master *os.File

	Logger *slog.Logger
}

// StartResizeForwarder subscribes to SIGWINCH and forwards every
// notification on a detached goroutine. There is no way to stop it:
// the goroutine ends with the process.
func StartResizeForwarder(source, master *os.File, logger *slog.Logger) *ResizeForwarder {
	forwarder := &ResizeForwarder{Source: source, Master: master, Logger: logger}
	notifications := make(chan os.Signal, 1)
	signal.Notify(notifications, syscall.SIGWINCH)
	go forwarder.Forward(notifications)
	return forwarder
}

// Forward applies the current size once per notification until
// notifications is closed. Errors are logged and otherwise ignored.
func (forwarder *ResizeForwarder) Forward(notifications <-chan os.Signal) {
	for range notifications {
		size, err := forwarder.Apply()
		if err != nil {
			forwarder.logger().Debug("window size not forwarded", "error", err)
			continue
		}
		forwarder.logger().Debug("window size forwarded", "size", size.String())
	}
}

// Apply reads the source terminal's size and sets it on the master.
func (forwarder *ResizeForwarder) Apply() (ptysession.WindowSize, error) {
	size, err := ptysession.GetWindowSize(forwarder.Source)
	if err != nil {
		return ptysession.WindowSize{}, err
	}
	if err := ptysession.SetWindowSize(forwarder.Master, size); err != nil {
		return ptysession.WindowSize{}, err
	}
	return size, nil
}

func (forwarder *ResizeForwarder) logger() *slog.Logger {
	if forwarder.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return forwarder.Logger
}
