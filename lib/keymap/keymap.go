// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/zeebo/blake3"
)

// ErrInvalidRule is returned (wrapped) for any rule that cannot be
// used: an empty input pattern, malformed hex, or a malformed
// "INPUT:OUTPUT" pair.
var ErrInvalidRule = errors.New("invalid keymap rule")

// Rule maps an input byte pattern to its replacement. Input must be
// non-empty; an empty Output deletes the matched bytes.
type Rule struct {
	Input  []byte
	Output []byte
}

// String returns the rule in the "INPUT:OUTPUT" hex form accepted by
// [ParseRule].
func (rule Rule) String() string {
	return hex.EncodeToString(rule.Input) + ":" + hex.EncodeToString(rule.Output)
}

// Map is an immutable set of rules compiled into a byte trie.
type Map struct {
	root  *node
	rules []Rule
}

type node struct {
	children map[byte]*node

	// terminal is set when a rule's pattern ends at this node. index
	// locates that rule in Map.rules.
	terminal bool
	index    int
}

// New compiles rules into a Map. The input and output slices are
// copied, so callers may reuse their buffers. A later rule with the
// same input pattern as an earlier one replaces the earlier rule's
// output while keeping its position in [Map.Rules].
func New(rules []Rule) (*Map, error) {
	keymap := &Map{root: &node{}}
	for position, rule := range rules {
		if len(rule.Input) == 0 {
			return nil, fmt.Errorf("%w: rule %d has an empty input pattern", ErrInvalidRule, position)
		}
		keymap.insert(Rule{
			Input:  bytes.Clone(rule.Input),
			Output: append([]byte{}, rule.Output...),
		})
	}
	return keymap, nil
}

func (keymap *Map) insert(rule Rule) {
	current := keymap.root
	for _, value := range rule.Input {
		if current.children == nil {
			current.children = make(map[byte]*node)
		}
		next, ok := current.children[value]
		if !ok {
			next = &node{}
			current.children[value] = next
		}
		current = next
	}
	if current.terminal {
		keymap.rules[current.index].Output = rule.Output
		return
	}
	current.terminal = true
	current.index = len(keymap.rules)
	keymap.rules = append(keymap.rules, rule)
}

// Len returns the number of effective rules.
func (keymap *Map) Len() int {
	if keymap == nil {
		return 0
	}
	return len(keymap.rules)
}

// Rules returns a copy of the effective rules in registration order.
func (keymap *Map) Rules() []Rule {
	if keymap == nil {
		return nil
	}
	result := make([]Rule, len(keymap.rules))
	for index, rule := range keymap.rules {
		result[index] = Rule{
			Input:  bytes.Clone(rule.Input),
			Output: append([]byte{}, rule.Output...),
		}
	}
	return result
}

// Transform returns input with every rule applied. At each position
// the longest matching pattern wins; unmatched bytes are copied
// unchanged. Transform holds no state between calls, so a pattern
// split across two calls is not recognised. A nil Map passes input
// through.
func (keymap *Map) Transform(input []byte) []byte {
	result := make([]byte, 0, len(input))
	if keymap == nil || len(keymap.rules) == 0 {
		return append(result, input...)
	}

	for position := 0; position < len(input); {
		length, output := keymap.longestMatch(input[position:])
		if length == 0 {
			result = append(result, input[position])
			position++
			continue
		}
		result = append(result, output...)
		position += length
	}
	return result
}

// longestMatch returns the length and output of the longest pattern
// that prefixes input, or zero if none does.
func (keymap *Map) longestMatch(input []byte) (int, []byte) {
	current := keymap.root
	matched := 0
	var output []byte
	for offset, value := range input {
		next, ok := current.children[value]
		if !ok {
			break
		}
		current = next
		if current.terminal {
			matched = offset + 1
			output = keymap.rules[current.index].Output
		}
	}
	return matched, output
}

// Fingerprint returns the hex-encoded blake3 digest of the effective
// rule set. Two maps that transform every input identically have the
// same fingerprint regardless of registration order.
func (keymap *Map) Fingerprint() string {
	rules := keymap.Rules()
	slices.SortFunc(rules, func(a, b Rule) int {
		return bytes.Compare(a.Input, b.Input)
	})

	var encoded []byte
	for _, rule := range rules {
		encoded = binary.AppendUvarint(encoded, uint64(len(rule.Input)))
		encoded = append(encoded, rule.Input...)
		encoded = binary.AppendUvarint(encoded, uint64(len(rule.Output)))
		encoded = append(encoded, rule.Output...)
	}
	digest := blake3.Sum256(encoded)
	return hex.EncodeToString(digest[:])
}
