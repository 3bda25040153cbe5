// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		input  []byte
		output []byte
	}{
		{"1b5b41:1b4f41", []byte{0x1b, 0x5b, 0x41}, []byte{0x1b, 0x4f, 0x41}},
		{"1B5B42:", []byte{0x1b, 0x5b, 0x42}, []byte{}},
		{"61:6263", []byte("a"), []byte("bc")},
	}
	for _, test := range tests {
		got, err := ParseRule(test.text)
		if err != nil {
			t.Errorf("ParseRule(%q) error: %v", test.text, err)
			continue
		}
		if !bytes.Equal(got.Input, test.input) || !bytes.Equal(got.Output, test.output) {
			t.Errorf("ParseRule(%q) = %x:%x, want %x:%x", test.text, got.Input, got.Output, test.input, test.output)
		}
	}
}

func TestParseRuleErrors(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"",
		"1b5b41",
		"1b:2b:3b",
		":1b",
		"1b5:41",
		"zz:41",
		"41:4",
		"41:gg",
	} {
		_, err := ParseRule(text)
		if !errors.Is(err, ErrInvalidRule) {
			t.Errorf("ParseRule(%q) error = %v, want ErrInvalidRule", text, err)
		}
	}
}

func TestParseRules(t *testing.T) {
	t.Parallel()

	rules, err := ParseRules([]string{"61:62", "63:"})
	if err != nil {
		t.Fatalf("ParseRules() error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("ParseRules() returned %d rules, want 2", len(rules))
	}

	if _, err := ParseRules([]string{"61:62", "bad"}); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("ParseRules() with a bad entry error = %v, want ErrInvalidRule", err)
	}
}

func TestDecodeHexEmpty(t *testing.T) {
	t.Parallel()
	decoded, err := DecodeHex("")
	if err != nil {
		t.Fatalf("DecodeHex(\"\") error: %v", err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Errorf("DecodeHex(\"\") = %#v, want empty non-nil slice", decoded)
	}
}
