// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/keyhook/cmd/keyhook/cli"
	"github.com/bureau-foundation/keyhook/lib/keymap"
)

// RulesCommand returns the "rules" command, which prints the key map
// "run" would use with the same flags and configuration.
func RulesCommand() *cli.Command {
	var (
		sources    ruleSources
		outputJSON bool
	)

	return &cli.Command{
		Name:    "rules",
		Summary: "Show the effective remap rules",
		Description: `Merge the remap rules from the configuration file, rule files and -k
flags exactly as "keyhook run" does, and print the result together with
its fingerprint. Later rules for the same input replace earlier ones.`,
		Usage: "keyhook rules [flags]",
		Examples: []cli.Example{
			{
				Description: "Check what a rule file contributes",
				Command:     "keyhook rules -f arrows.yaml",
			},
			{
				Description: "Machine-readable output",
				Command:     "keyhook rules --json -k 7f:08",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("rules", pflag.ContinueOnError)
			sources.register(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			_, keys, err := sources.load()
			if err != nil {
				return err
			}
			if outputJSON {
				return cli.WriteJSON(os.Stdout, describeRules(keys))
			}
			return printRules(os.Stdout, keys)
		},
	}
}

type ruleEntry struct {
	Input      string `json:"input"`
	Output     string `json:"output"`
	InputKeys  string `json:"input_keys"`
	OutputKeys string `json:"output_keys"`
}

type rulesReport struct {
	Fingerprint string      `json:"fingerprint"`
	Rules       []ruleEntry `json:"rules"`
}

func describeRules(keys *keymap.Map) rulesReport {
	report := rulesReport{Fingerprint: keys.Fingerprint()}
	for _, rule := range keys.Rules() {
		report.Rules = append(report.Rules, ruleEntry{
			Input:      hex.EncodeToString(rule.Input),
			Output:     hex.EncodeToString(rule.Output),
			InputKeys:  keyName(rule.Input),
			OutputKeys: outputName(rule.Output),
		})
	}
	return report
}

func outputName(output []byte) string {
	if len(output) == 0 {
		return "(dropped)"
	}
	return keyName(output)
}

func printRules(writer io.Writer, keys *keymap.Map) error {
	report := describeRules(keys)
	if len(report.Rules) == 0 {
		_, err := fmt.Fprintln(writer, faintStyle.Render("no remap rules; keystrokes pass through unchanged"))
		return err
	}

	headers := []string{"INPUT", "OUTPUT", "KEYS"}
	inputWidth, outputWidth := len(headers[0]), len(headers[1])
	for _, entry := range report.Rules {
		inputWidth = max(inputWidth, ansi.StringWidth(entry.Input))
		outputWidth = max(outputWidth, ansi.StringWidth(entry.Output))
	}
	inputWidth += 2
	outputWidth += 2

	fmt.Fprintf(writer, "%s%s%s\n",
		padRight(headerStyle.Render(headers[0]), inputWidth),
		padRight(headerStyle.Render(headers[1]), outputWidth),
		headerStyle.Render(headers[2]))
	for _, entry := range report.Rules {
		fmt.Fprintf(writer, "%s%s%s\n",
			padRight(hexStyle.Render(entry.Input), inputWidth),
			padRight(hexStyle.Render(entry.Output), outputWidth),
			nameStyle.Render(entry.InputKeys+" -> "+entry.OutputKeys))
	}
	_, err := fmt.Fprintf(writer, "\n%s %s\n", faintStyle.Render("fingerprint"), report.Fingerprint)
	return err
}
