// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io/fs"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/keyhook/cmd/keyhook/cli"
	"github.com/bureau-foundation/keyhook/lib/config"
	"github.com/bureau-foundation/keyhook/lib/keymap"
)

// ruleSources collects the flags shared by every command that builds a
// key map.
type ruleSources struct {
	configPath string
	files      []string
	rules      []string
}

func (sources *ruleSources) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&sources.configPath, "config", "",
		"configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringArrayVarP(&sources.files, "keymap-file", "f", nil,
		"rule file in YAML or JSONC (repeatable)")
	flagSet.StringArrayVarP(&sources.rules, "keymap", "k", nil,
		"remap rule INPUT_HEX:OUTPUT_HEX; empty OUTPUT drops the input (repeatable)")
}

// load resolves the configuration and builds the key map. Rules are
// applied in this order, later ones overriding earlier ones with the
// same input: config inline rules, config rule files, --keymap-file,
// then -k.
func (sources *ruleSources) load() (*config.Config, *keymap.Map, error) {
	cfg, err := config.Resolve(sources.configPath)
	if err != nil {
		return nil, nil, classify(err)
	}

	rules, err := cfg.LoadRules()
	if err != nil {
		return nil, nil, classify(err)
	}
	for _, path := range sources.files {
		fileRules, err := keymap.LoadFile(path)
		if err != nil {
			return nil, nil, classify(err)
		}
		rules = append(rules, fileRules...)
	}
	flagRules, err := keymap.ParseRules(sources.rules)
	if err != nil {
		return nil, nil, cli.Validation("%w", err).
			WithHint("Rules are INPUT_HEX:OUTPUT_HEX, for example -k 1b5b41:1b4f41. Run 'keyhook keys' to see what a key sends.")
	}
	rules = append(rules, flagRules...)

	keys, err := keymap.New(rules)
	if err != nil {
		return nil, nil, cli.Validation("%w", err)
	}
	return cfg, keys, nil
}

func classify(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return cli.NotFound("%w", err)
	}
	return cli.Validation("%w", err)
}
