// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument parsing for the qbot binary.
//
// qbot deliberately has a tiny command surface:
//
//	qbot                     Interactive REPL (default)
//	qbot ask "question"      One question, one answer, exit
//	qbot tui                 Full-screen terminal UI
//	qbot version             Print version
//	qbot help                Print usage
//
// Flags:
//
//	-m, --model NAME   Override the configured model
//	--db PATH          Override the configured database file
//	--config PATH      Load configuration from an explicit file
//	--readonly         Block all dangerous SQL for this session
//	--preview          Confirm every statement before it runs
//	--dangerous        Allow dangerous SQL without confirmation
//	--no-color         Disable colored output
//	-q, --quiet        Suppress the banner and per-turn notices

package cli

import (
	"fmt"
	"strings"
)

// Args holds the parsed command line.
type Args struct {
	// Command is the subcommand: "", "ask", "tui", "version", "help".
	Command string

	// Prompt is the question text for the ask command.
	Prompt string

	// Model overrides the configured model when non-empty.
	Model string

	// DBPath overrides the configured database file when non-empty.
	DBPath string

	// ConfigPath loads configuration from an explicit file when non-empty.
	ConfigPath string

	// ReadOnly blocks dangerous SQL for the session.
	ReadOnly bool

	// Preview requires confirmation before any statement runs.
	Preview bool

	// Dangerous allows dangerous SQL without confirmation.
	Dangerous bool

	// NoColor disables colored output.
	NoColor bool

	// Quiet suppresses the banner and per-turn notices.
	Quiet bool
}

// ParseArgs parses the raw command line (without the program name).
func ParseArgs(raw []string) (Args, error) {
	var args Args
	var positional []string

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			i++
			continue
		}

		// Accept --flag=value alongside --flag value.
		name := strings.TrimLeft(arg, "-")
		value := ""
		hasValue := false
		if idx := strings.Index(name, "="); idx >= 0 {
			value = name[idx+1:]
			name = name[:idx]
			hasValue = true
		}

		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(raw) {
				return "", NewValidationError("--"+name, "", "flag requires a value")
			}
			i++
			return raw[i], nil
		}

		switch name {
		case "m", "model":
			v, err := takeValue()
			if err != nil {
				return args, err
			}
			args.Model = v
		case "db", "database":
			v, err := takeValue()
			if err != nil {
				return args, err
			}
			args.DBPath = v
		case "config":
			v, err := takeValue()
			if err != nil {
				return args, err
			}
			args.ConfigPath = v
		case "readonly", "read-only":
			args.ReadOnly = true
		case "preview", "confirm":
			args.Preview = true
		case "dangerous":
			args.Dangerous = true
		case "no-color":
			args.NoColor = true
		case "q", "quiet":
			args.Quiet = true
		case "h", "help":
			args.Command = "help"
		case "v", "version":
			args.Command = "version"
		default:
			return args, NewValidationError("flag", arg, "unknown flag")
		}
		i++
	}

	if args.Command != "" {
		return args, nil
	}
	if len(positional) == 0 {
		return args, nil
	}

	switch positional[0] {
	case "ask":
		args.Command = "ask"
		if len(positional) < 2 {
			return args, NewValidationError("ask", "", "ask requires a question")
		}
		args.Prompt = strings.Join(positional[1:], " ")
	case "tui", "version", "help":
		args.Command = positional[0]
		if len(positional) > 1 {
			return args, NewValidationError("arguments", strings.Join(positional[1:], " "),
				fmt.Sprintf("%s takes no arguments", positional[0]))
		}
	default:
		return args, NewValidationError("command", positional[0],
			"unknown command (try: qbot help)")
	}
	return args, nil
}
