// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/keyhook/cmd/keyhook/cli"
	"github.com/bureau-foundation/keyhook/lib/keymap"
)

func mustKeymap(t *testing.T, texts ...string) *keymap.Map {
	t.Helper()
	rules, err := keymap.ParseRules(texts)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	keys, err := keymap.New(rules)
	if err != nil {
		t.Fatalf("keymap.New: %v", err)
	}
	return keys
}

func TestPrintRules(t *testing.T) {
	keys := mustKeymap(t, "1b5b41:1b4f41", "1b4f50:")

	var output bytes.Buffer
	if err := printRules(&output, keys); err != nil {
		t.Fatalf("printRules() error: %v", err)
	}
	text := ansi.Strip(output.String())

	for _, want := range []string{
		"INPUT", "OUTPUT", "KEYS",
		"1b5b41", "1b4f41", "ESC [ A -> ESC O A",
		"ESC O P -> (dropped)",
		"fingerprint " + keys.Fingerprint(),
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPrintRulesEmpty(t *testing.T) {
	var output bytes.Buffer
	if err := printRules(&output, mustKeymap(t)); err != nil {
		t.Fatalf("printRules() error: %v", err)
	}
	if !strings.Contains(output.String(), "no remap rules") {
		t.Errorf("output = %q", output.String())
	}
}

func TestDescribeRulesJSON(t *testing.T) {
	keys := mustKeymap(t, "7f:08")

	var output bytes.Buffer
	if err := cli.WriteJSON(&output, describeRules(keys)); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	var decoded struct {
		Fingerprint string `json:"fingerprint"`
		Rules       []struct {
			Input      string `json:"input"`
			Output     string `json:"output"`
			InputKeys  string `json:"input_keys"`
			OutputKeys string `json:"output_keys"`
		} `json:"rules"`
	}
	if err := json.Unmarshal(output.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output.String())
	}
	if decoded.Fingerprint != keys.Fingerprint() {
		t.Errorf("fingerprint = %q, want %q", decoded.Fingerprint, keys.Fingerprint())
	}
	if len(decoded.Rules) != 1 || decoded.Rules[0].Input != "7f" || decoded.Rules[0].OutputKeys != "^H" {
		t.Errorf("rules = %+v", decoded.Rules)
	}
}

func TestRuleSourcesOrder(t *testing.T) {
	directory := t.TempDir()
	ruleFile := filepath.Join(directory, "arrows.yaml")
	if err := os.WriteFile(ruleFile, []byte("rules:\n  - input: 1b5b41\n    output: 1b4f41\n  - input: 7f\n    output: \"08\"\n"), 0o644); err != nil {
		t.Fatalf("write rule file: %v", err)
	}
	configFile := filepath.Join(directory, "keyhook.yaml")
	if err := os.WriteFile(configFile, []byte("keymap:\n  rules:\n    - input: 1b5b41\n      output: \"00\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	sources := ruleSources{
		configPath: configFile,
		files:      []string{ruleFile},
		rules:      []string{"7f:"},
	}
	_, keys, err := sources.load()
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}

	// The rule file overrides the config, and -k overrides the file.
	if got := string(keys.Transform([]byte("\x1b[A\x7f"))); got != "\x1bOA" {
		t.Errorf("Transform() = %q, want %q", got, "\x1bOA")
	}
}

func TestRuleSourcesMissingFile(t *testing.T) {
	t.Setenv("KEYHOOK_CONFIG", "")
	sources := ruleSources{files: []string{filepath.Join(t.TempDir(), "missing.yaml")}}
	_, _, err := sources.load()

	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != cli.CategoryNotFound {
		t.Fatalf("load() = %v, want not-found error", err)
	}
}
