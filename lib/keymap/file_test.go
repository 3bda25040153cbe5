// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRuleFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadFileYAML(t *testing.T) {
	t.Parallel()
	path := writeRuleFile(t, "arrows.yaml", `
rules:
  - input: 1b5b41
    output: 1b4f41
    comment: up arrow
  - input: 1b5b42
    output: ""
`)

	rules, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("LoadFile() returned %d rules, want 2", len(rules))
	}
	if !bytes.Equal(rules[0].Output, []byte("\x1bOA")) {
		t.Errorf("rules[0].Output = %q, want %q", rules[0].Output, "\x1bOA")
	}
	if len(rules[1].Output) != 0 {
		t.Errorf("rules[1].Output = %q, want empty", rules[1].Output)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	t.Parallel()
	path := writeRuleFile(t, "arrows.jsonc", `{
  // Cursor keys in application mode.
  "rules": [
    {"input": "1b5b41", "output": "1b4f41"},
    /* drop down-arrow */
    {"input": "1b5b42", "output": ""},
  ],
}`)

	rules, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	keymap, err := New(rules)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	got := keymap.Transform([]byte("\x1b[A\x1b[B"))
	if string(got) != "\x1bOA" {
		t.Errorf("Transform() = %q, want %q", got, "\x1bOA")
	}
}

func TestLoadFileInvalidRuleNamesEntry(t *testing.T) {
	t.Parallel()
	path := writeRuleFile(t, "bad.yml", `
rules:
  - input: "61"
    output: "62"
  - input: "6"
    output: "62"
`)

	_, err := LoadFile(path)
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("LoadFile() error = %v, want ErrInvalidRule", err)
	}
	if !strings.Contains(err.Error(), "rule 1") {
		t.Errorf("error %q does not name the offending rule", err)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	t.Parallel()
	path := writeRuleFile(t, "rules.toml", "")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile() succeeded for .toml, want error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want os.ErrNotExist", err)
	}
}
