// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ptysession

import (
	"errors"
	"fmt"
	"os"

	"github.com/creack/pty"
)

// ErrAllocation is returned (wrapped) when the operating system cannot
// provide a pseudo-terminal pair.
var ErrAllocation = errors.New("cannot allocate pseudo-terminal")

// WindowSize holds terminal dimensions. The pixel extents are zero
// when the terminal does not report them.
type WindowSize struct {
	Rows        uint16
	Columns     uint16
	PixelWidth  uint16
	PixelHeight uint16
}

// DefaultWindowSize is used when the real terminal cannot report its
// dimensions.
var DefaultWindowSize = WindowSize{Rows: 24, Columns: 80}

// String formats the size as "ROWSxCOLUMNS".
func (size WindowSize) String() string {
	return fmt.Sprintf("%dx%d", size.Rows, size.Columns)
}

func (size WindowSize) winsize() *pty.Winsize {
	return &pty.Winsize{
		Rows: size.Rows,
		Cols: size.Columns,
		X:    size.PixelWidth,
		Y:    size.PixelHeight,
	}
}

// GetWindowSize reads the dimensions of the terminal open on file.
func GetWindowSize(file *os.File) (WindowSize, error) {
	winsize, err := pty.GetsizeFull(file)
	if err != nil {
		return WindowSize{}, fmt.Errorf("get window size of %s: %w", file.Name(), err)
	}
	return WindowSize{
		Rows:        winsize.Rows,
		Columns:     winsize.Cols,
		PixelWidth:  winsize.X,
		PixelHeight: winsize.Y,
	}, nil
}

// GetWindowSizeOrDefault reads the dimensions of the terminal open on
// file, falling back to [DefaultWindowSize] when file is not a
// terminal or reports zero rows or columns.
func GetWindowSizeOrDefault(file *os.File) WindowSize {
	size, err := GetWindowSize(file)
	if err != nil || size.Rows == 0 || size.Columns == 0 {
		return DefaultWindowSize
	}
	return size
}

// SetWindowSize applies size to the terminal open on file.
func SetWindowSize(file *os.File, size WindowSize) error {
	if err := pty.Setsize(file, size.winsize()); err != nil {
		return fmt.Errorf("set window size of %s to %s: %w", file.Name(), size, err)
	}
	return nil
}

// Pair is an allocated pseudo-terminal. The controller keeps Master;
// Subordinate belongs to the worker once it has been started.
type Pair struct {
	Master      *os.File
	Subordinate *os.File
}

// Allocate opens a new pseudo-terminal pair whose subordinate side
// reports size.
func Allocate(size WindowSize) (*Pair, error) {
	master, subordinate, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	pair := &Pair{Master: master, Subordinate: subordinate}

	if err := SetWindowSize(subordinate, size); err != nil {
		pair.Close()
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	return pair, nil
}

// SubordinateName returns the device path of the subordinate side
// (for example "/dev/pts/3").
func (pair *Pair) SubordinateName() string {
	if pair.Subordinate == nil {
		return ""
	}
	return pair.Subordinate.Name()
}

// ReleaseSubordinate closes the controller's descriptor for the
// subordinate side. Calling it more than once is harmless.
func (pair *Pair) ReleaseSubordinate() error {
	if pair.Subordinate == nil {
		return nil
	}
	err := pair.Subordinate.Close()
	pair.Subordinate = nil
	if err != nil {
		return fmt.Errorf("release PTY subordinate: %w", err)
	}
	return nil
}

// Close releases both ends of the pair that are still held.
func (pair *Pair) Close() error {
	var errs []error
	if err := pair.ReleaseSubordinate(); err != nil {
		errs = append(errs, err)
	}
	if pair.Master != nil {
		if err := pair.Master.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close PTY master: %w", err))
		}
		pair.Master = nil
	}
	return errors.Join(errs...)
}
