// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	hexStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// padRight pads a possibly styled cell with spaces to width display
// columns.
func padRight(cell string, width int) string {
	if gap := width - ansi.StringWidth(cell); gap > 0 {
		return cell + strings.Repeat(" ", gap)
	}
	return cell
}

// keyName spells out a byte sequence the way it would be typed: control
// characters in caret notation, ESC and DEL by name, printable text as
// itself, and anything else as 0xNN.
//
//	keyName([]byte("\x1b[A")) == "ESC [ A"
func keyName(data []byte) string {
	if len(data) == 0 {
		return "(nothing)"
	}
	var tokens []string
	for len(data) > 0 {
		value := data[0]
		switch {
		case value == 0x1b:
			tokens = append(tokens, "ESC")
		case value == 0x7f:
			tokens = append(tokens, "DEL")
		case value == ' ':
			tokens = append(tokens, "SPACE")
		case value < 0x20:
			tokens = append(tokens, "^"+string(rune(value+'@')))
		case value < utf8.RuneSelf:
			tokens = append(tokens, string(rune(value)))
		default:
			character, size := utf8.DecodeRune(data)
			if character != utf8.RuneError && unicode.IsPrint(character) {
				tokens = append(tokens, string(character))
				data = data[size:]
				continue
			}
			tokens = append(tokens, fmt.Sprintf("0x%02X", value))
		}
		data = data[1:]
	}
	return strings.Join(tokens, " ")
}
