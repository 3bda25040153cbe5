// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseRule parses a rule written as "INPUT_HEX:OUTPUT_HEX". The input
// must be a non-empty, even-length hex string; the output may be empty
// to delete the input sequence.
//
//	keymap.ParseRule("1b5b41:1b4f41") // ESC [ A -> ESC O A
//	keymap.ParseRule("1b5b42:")       // drop ESC [ B
func ParseRule(text string) (Rule, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q, expected format 'input_hex:output_hex'", ErrInvalidRule, text)
	}

	input, err := DecodeHex(parts[0])
	if err != nil {
		return Rule{}, fmt.Errorf("%w: input %q: %w", ErrInvalidRule, parts[0], err)
	}
	if len(input) == 0 {
		return Rule{}, fmt.Errorf("%w: input in %q is empty", ErrInvalidRule, text)
	}

	output, err := DecodeHex(parts[1])
	if err != nil {
		return Rule{}, fmt.Errorf("%w: output %q: %w", ErrInvalidRule, parts[1], err)
	}

	return Rule{Input: input, Output: output}, nil
}

// ParseRules parses every element of texts with [ParseRule], stopping
// at the first invalid rule.
func ParseRules(texts []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(texts))
	for _, text := range texts {
		rule, err := ParseRule(text)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DecodeHex decodes an even-length hex string. Upper- and lower-case
// digits are both accepted. The empty string decodes to an empty,
// non-nil slice.
func DecodeHex(text string) ([]byte, error) {
	if len(text)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length, got %d characters", len(text))
	}
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if decoded == nil {
		decoded = []byte{}
	}
	return decoded, nil
}
