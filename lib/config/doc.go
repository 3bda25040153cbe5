// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for keyhook.
//
// Configuration is loaded from a single file named by either the
// --config flag or the KEYHOOK_CONFIG environment variable (via
// [Resolve]). There is no ~/.config discovery and no automatic file
// search; with neither set, [Default] is used. Environment variables
// never override individual config values.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with Session, Log and Keymap sections
//   - [Default] -- returns a Config with built-in defaults
//   - [Resolve] and [LoadFile] -- the entry points for loading
//   - [Config.LoadRules] -- the configured remap rules, inline rules
//     first and then each rule file in order
package config
