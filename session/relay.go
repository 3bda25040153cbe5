// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/keyhook/lib/keymap"
)

const (
	// DefaultPollInterval bounds each readiness wait so worker
	// termination is noticed even when no I/O happens.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultBufferSize is the largest chunk read from either side
	// in one iteration.
	DefaultBufferSize = 16 * 1024

	// maxDrainReads bounds the output drained after the worker exits,
	// in case a surviving grandchild keeps writing to the terminal.
	maxDrainReads = 64
)

// EndReason is the terminal state of a [Relay].
type EndReason int

const (
	// WorkerExited: the worker terminated while the relay was running.
	WorkerExited EndReason = iota + 1

	// InputClosed: standard input reached end-of-file or was hung up.
	InputClosed

	// PtyClosed: the PTY master reported end-of-file, meaning every
	// descriptor for the subordinate side has been closed.
	PtyClosed

	// RelayFailed: a non-transient read, write or poll error.
	RelayFailed
)

func (reason EndReason) String() string {
	switch reason {
	case WorkerExited:
		return "worker-exited"
	case InputClosed:
		return "input-closed"
	case PtyClosed:
		return "pty-closed"
	case RelayFailed:
		return "relay-failed"
	default:
		return fmt.Sprintf("EndReason(%d)", int(reason))
	}
}

// Outcome is the result of a session: why the relay stopped and how
// the worker terminated.
type Outcome struct {
	Reason EndReason
	Status ExitStatus
}

// Relay moves bytes between the real terminal and the PTY master
// until the session ends. The descriptors are raw file descriptors
// owned by the caller; the relay never closes them.
type Relay struct {
	// Input is the real standard input. Bytes read from it are
	// transformed by Keymap and written to Master.
	Input int

	// Output is the real standard output. Bytes read from Master are
	// written to it unchanged.
	Output int

	// Master is the PTY master.
	Master int

	// Keymap rewrites keystrokes. Nil passes them through.
	Keymap *keymap.Map

	// Child is the worker. It is polled every iteration and waited
	// for when the relay stops for any reason other than its exit.
	Child Child

	// Hangup, if set, is called before the final blocking wait. The
	// session controller closes the PTY master here, which delivers
	// SIGHUP to a worker that would otherwise outlive its input.
	Hangup func()

	// PollInterval defaults to [DefaultPollInterval].
	PollInterval time.Duration

	// BufferSize defaults to [DefaultBufferSize].
	BufferSize int

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	buffer []byte

	// Byte counters for the end-of-session log line.
	inputBytes  int
	outputBytes int
}

// Run relays until the worker exits, standard input closes, the PTY
// closes, or a fatal error occurs. The returned Outcome always carries
// the worker's exit status unless waiting for the worker itself failed.
func (relay *Relay) Run() (Outcome, error) {
	if relay.PollInterval <= 0 {
		relay.PollInterval = DefaultPollInterval
	}
	if relay.BufferSize <= 0 {
		relay.BufferSize = DefaultBufferSize
	}
	if relay.Logger == nil {
		relay.Logger = slog.New(slog.DiscardHandler)
	}
	relay.buffer = make([]byte, relay.BufferSize)

	outcome, err := relay.loop()
	if outcome.Reason == WorkerExited {
		relay.drain()
		relay.logEnd(outcome, err)
		return outcome, err
	}

	if relay.Hangup != nil {
		relay.Hangup()
	}
	status, waitErr := relay.Child.Wait()
	outcome.Status = status
	if waitErr != nil {
		err = errors.Join(err, waitErr)
	}
	relay.logEnd(outcome, err)
	return outcome, err
}

func (relay *Relay) logEnd(outcome Outcome, err error) {
	attributes := []any{
		"reason", outcome.Reason.String(),
		"status", outcome.Status.String(),
		"input_bytes", relay.inputBytes,
		"output_bytes", relay.outputBytes,
	}
	if err != nil {
		relay.Logger.Error("relay stopped", append(attributes, "error", err)...)
		return
	}
	relay.Logger.Debug("relay stopped", attributes...)
}

func (relay *Relay) loop() (Outcome, error) {
	descriptors := []unix.PollFd{
		{Fd: int32(relay.Input), Events: unix.POLLIN},
		{Fd: int32(relay.Master), Events: unix.POLLIN},
	}
	timeout := int(relay.PollInterval / time.Millisecond)
	if timeout == 0 {
		timeout = 1
	}

	for {
		descriptors[0].Revents = 0
		descriptors[1].Revents = 0
		ready, err := unix.Poll(descriptors, timeout)
		if err != nil {
			if !isTransient(err) {
				return Outcome{Reason: RelayFailed}, fmt.Errorf("%w: poll: %w", ErrRelayRead, err)
			}
			ready = 0
		}

		status, exited, err := relay.Child.Poll()
		if err != nil {
			return Outcome{Reason: RelayFailed}, err
		}
		if exited {
			return Outcome{Reason: WorkerExited, Status: status}, nil
		}

		if ready == 0 {
			continue
		}

		for index, name := range []string{"standard input", "PTY master"} {
			if descriptors[index].Revents&unix.POLLNVAL != 0 {
				return Outcome{Reason: RelayFailed}, fmt.Errorf("%w: %s: invalid descriptor %d", ErrRelayRead, name, descriptors[index].Fd)
			}
		}

		if readable(descriptors[0].Revents) {
			if reason, err := relay.forwardInput(); reason != 0 {
				return Outcome{Reason: reason}, err
			}
		}
		if readable(descriptors[1].Revents) {
			if reason, err := relay.forwardOutput(); reason != 0 {
				return Outcome{Reason: reason}, err
			}
		}
	}
}

// forwardInput moves one chunk of keystrokes to the master. A zero
// EndReason means the relay continues.
func (relay *Relay) forwardInput() (EndReason, error) {
	count, err := unix.Read(relay.Input, relay.buffer)
	switch {
	case err != nil && isTransient(err):
		return 0, nil
	case errors.Is(err, unix.EIO):
		// The real terminal was hung up.
		return InputClosed, nil
	case err != nil:
		return RelayFailed, fmt.Errorf("%w: standard input: %w", ErrRelayRead, err)
	case count == 0:
		return InputClosed, nil
	}

	transformed := relay.Keymap.Transform(relay.buffer[:count])
	if err := writeFull(relay.Master, transformed); err != nil {
		return RelayFailed, fmt.Errorf("%w: PTY master: %w", ErrRelayWrite, err)
	}
	relay.inputBytes += count
	return 0, nil
}

// forwardOutput moves one chunk of worker output to standard output.
func (relay *Relay) forwardOutput() (EndReason, error) {
	count, err := unix.Read(relay.Master, relay.buffer)
	switch {
	case err != nil && isTransient(err):
		return 0, nil
	case errors.Is(err, unix.EIO):
		// Linux reports a master whose subordinate has no open
		// descriptors as EIO rather than end-of-file.
		return PtyClosed, nil
	case err != nil:
		return RelayFailed, fmt.Errorf("%w: PTY master: %w", ErrRelayRead, err)
	case count == 0:
		return PtyClosed, nil
	}

	if err := writeFull(relay.Output, relay.buffer[:count]); err != nil {
		return RelayFailed, fmt.Errorf("%w: standard output: %w", ErrRelayWrite, err)
	}
	relay.outputBytes += count
	return 0, nil
}

// drain copies output the worker produced before exiting but the relay
// had not read yet. It never blocks on the master.
func (relay *Relay) drain() {
	descriptors := []unix.PollFd{{Fd: int32(relay.Master), Events: unix.POLLIN}}
	for range maxDrainReads {
		descriptors[0].Revents = 0
		ready, err := unix.Poll(descriptors, 0)
		if err != nil && isTransient(err) {
			continue
		}
		if err != nil || ready == 0 || descriptors[0].Revents&unix.POLLIN == 0 {
			return
		}
		count, err := unix.Read(relay.Master, relay.buffer)
		if err != nil || count <= 0 {
			return
		}
		if err := writeFull(relay.Output, relay.buffer[:count]); err != nil {
			relay.Logger.Debug("drain after worker exit", "error", err)
			return
		}
		relay.outputBytes += count
	}
}

// writeFull writes all of data to fd, continuing after short writes
// and retrying interrupted ones.
func writeFull(fd int, data []byte) error {
	for len(data) > 0 {
		count, err := unix.Write(fd, data)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				if err := waitWritable(fd); err != nil {
					return err
				}
				continue
			}
			return err
		}
		if count == 0 {
			return io.ErrShortWrite
		}
		data = data[count:]
	}
	return nil
}

// waitWritable blocks until fd (left non-blocking by another owner)
// accepts more data.
func waitWritable(fd int) error {
	descriptors := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		_, err := unix.Poll(descriptors, -1)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

func readable(revents int16) bool {
	return revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0
}

func isTransient(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN)
}
