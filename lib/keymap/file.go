// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// RuleSpec is the serialized form of a rule in configuration and rule
// files. Input and Output are hex strings.
type RuleSpec struct {
	Input   string `yaml:"input" json:"input"`
	Output  string `yaml:"output" json:"output"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// Rule decodes the spec.
func (spec RuleSpec) Rule() (Rule, error) {
	return ParseRule(spec.Input + ":" + spec.Output)
}

// File is the top-level structure of a rule file.
//
//	# arrows.yaml
//	rules:
//	  - input: 1b5b41
//	    output: 1b4f41
//	    comment: up arrow, cursor-key application mode
type File struct {
	Rules []RuleSpec `yaml:"rules" json:"rules"`
}

// DecodeSpecs converts specs to rules, naming the offending entry on
// failure.
func DecodeSpecs(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for index, spec := range specs {
		rule, err := spec.Rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", index, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadFile reads a rule file. The format is chosen by extension:
// ".yaml" and ".yml" are YAML; ".json" and ".jsonc" are JSON with
// comments and trailing commas allowed.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file File
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		// Strip comments and trailing commas before parsing as standard JSON.
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported rule file extension %q (want .yaml, .yml, .json or .jsonc)", path, extension)
	}

	rules, err := DecodeSpecs(file.Rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
