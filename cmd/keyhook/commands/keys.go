// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/keyhook/cmd/keyhook/cli"
	"github.com/bureau-foundation/keyhook/lib/termmode"
)

// hexColumnWidth fits the hex of a typical function-key sequence
// ("1b5b31353b327e" and friends) with room to spare.
const hexColumnWidth = 18

// KeysCommand returns the "keys" command, which shows the bytes each
// keystroke produces so that remap rules can be written for it.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:    "keys",
		Summary: "Show the bytes each key sends",
		Description: `Switch the terminal to raw mode and print the bytes every keystroke
produces, in the hex form used by remap rules. Press Ctrl-C or Ctrl-D
on its own to quit.`,
		Usage: "keyhook keys",
		Run: func(args []string) (err error) {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			fd := int(os.Stdin.Fd())
			if !termmode.IsTerminal(fd) {
				return cli.Validation("standard input is not a terminal")
			}

			guard, err := termmode.Enter(fd)
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer func() {
				if restoreErr := guard.Restore(); restoreErr != nil {
					err = errors.Join(err, cli.Internal("restore terminal: %w", restoreErr))
				}
			}()
			return showKeys(os.Stdin, os.Stdout)
		},
	}
}

// showKeys prints one line per read from input until a lone Ctrl-C or
// Ctrl-D is read or input ends. The terminal is in raw mode, so lines
// end in CR LF.
func showKeys(input io.Reader, output io.Writer) error {
	fmt.Fprintf(output, "%s\r\n", faintStyle.Render("Press keys to see their bytes; Ctrl-C or Ctrl-D quits."))
	fmt.Fprintf(output, "%s%s%s\r\n",
		padRight(headerStyle.Render("HEX"), hexColumnWidth),
		padRight(headerStyle.Render("KEYS"), hexColumnWidth),
		headerStyle.Render("RULE"))

	buffer := make([]byte, 64)
	for {
		count, err := input.Read(buffer)
		if count > 0 {
			chunk := buffer[:count]
			if count == 1 && (chunk[0] == 0x03 || chunk[0] == 0x04) {
				return nil
			}
			if _, writeErr := io.WriteString(output, formatKey(chunk)+"\r\n"); writeErr != nil {
				return cli.Internal("writing output: %w", writeErr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return cli.Internal("reading keys: %w", err)
		}
	}
}

// formatKey renders one keystroke as hex, its spelled-out form, and the
// start of a -k rule for it.
func formatKey(chunk []byte) string {
	encoded := hex.EncodeToString(chunk)
	return padRight(hexStyle.Render(encoded), hexColumnWidth) +
		padRight(nameStyle.Render(keyName(chunk)), hexColumnWidth) +
		faintStyle.Render("-k "+encoded+":")
}
