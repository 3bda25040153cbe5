// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termmode

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrTerminalQuery is returned (wrapped) when a file descriptor's
// terminal configuration cannot be read, usually because it is not a
// terminal.
var ErrTerminalQuery = errors.New("cannot query terminal configuration")

// Configuration is a snapshot of a terminal's line-discipline settings.
type Configuration struct {
	termios unix.Termios
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Capture reads the current configuration of the terminal open on fd.
func Capture(fd int) (*Configuration, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("%w: fd %d: %w", ErrTerminalQuery, fd, err)
	}
	return &Configuration{termios: *termios}, nil
}

// Equal reports whether two snapshots hold identical settings.
func (configuration *Configuration) Equal(other *Configuration) bool {
	if configuration == nil || other == nil {
		return configuration == other
	}
	return configuration.termios == other.termios
}

// Raw returns a copy of configuration with raw mode applied.
func (configuration *Configuration) Raw() *Configuration {
	raw := *configuration
	raw.termios.Iflag &^= unix.ICRNL | unix.IXON
	raw.termios.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	raw.termios.Oflag &^= unix.OPOST
	raw.termios.Cc[unix.VMIN] = 1
	raw.termios.Cc[unix.VTIME] = 0
	return &raw
}

// IsRaw reports whether canonical input, echo and signal generation
// are all disabled.
func (configuration *Configuration) IsRaw() bool {
	return configuration.termios.Lflag&(unix.ICANON|unix.ECHO|unix.ISIG) == 0
}

// ApplyRaw switches the terminal on fd to the raw form of base.
func ApplyRaw(fd int, base *Configuration) error {
	return apply(fd, base.Raw())
}

// Restore reapplies configuration to the terminal on fd immediately.
func Restore(fd int, configuration *Configuration) error {
	return apply(fd, configuration)
}

func apply(fd int, configuration *Configuration) error {
	termios := configuration.termios
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &termios); err != nil {
		return fmt.Errorf("set terminal configuration on fd %d: %w", fd, err)
	}
	return nil
}

// Guard holds a terminal in raw mode until Restore is called.
type Guard struct {
	fd    int
	saved *Configuration

	once       sync.Once
	restoreErr error
}

// Enter captures the terminal on fd and switches it to raw mode.
func Enter(fd int) (*Guard, error) {
	saved, err := Capture(fd)
	if err != nil {
		return nil, err
	}
	return Acquire(fd, saved)
}

// Acquire switches the terminal on fd to raw mode, restoring saved
// when the returned Guard is released. saved must be a snapshot taken
// before any mutation of the terminal.
func Acquire(fd int, saved *Configuration) (*Guard, error) {
	if err := ApplyRaw(fd, saved); err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return &Guard{fd: fd, saved: saved}, nil
}

// Saved returns the configuration the guard restores.
func (guard *Guard) Saved() *Configuration {
	return guard.saved
}

// Restore reapplies the saved configuration. Only the first call
// touches the terminal; later calls return the first call's result.
func (guard *Guard) Restore() error {
	guard.once.Do(func() {
		guard.restoreErr = Restore(guard.fd, guard.saved)
	})
	return guard.restoreErr
}
