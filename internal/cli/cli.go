// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Top-level command dispatch for the qbot binary.

package cli

import (
	"fmt"
	"os"
)

// Version is the qbot release version.
const Version = "0.3.0"

// Run parses the command line and dispatches. Returns the process exit
// code.
func Run(argv []string) int {
	args, err := ParseArgs(argv)
	if err != nil {
		DisplayError(err)
		fmt.Fprintln(os.Stderr, DimStyle.Render("Run 'qbot help' for usage."))
		return ExitUsageError
	}

	switch args.Command {
	case "version":
		fmt.Println("qbot " + Version)
		return ExitSuccess

	case "help":
		PrintUsage()
		return ExitSuccess

	case "ask":
		if err := HandleAskCommand(args); err != nil {
			// The session already rendered the failure; the exit code is
			// the only thing left to communicate.
			return GetExitCode(err)
		}
		return ExitSuccess

	case "tui":
		if err := RunTUI(args); err != nil {
			DisplayError(err)
			return GetExitCode(err)
		}
		return ExitSuccess

	default:
		if err := HandleREPL(args); err != nil {
			DisplayError(err)
			return GetExitCode(err)
		}
		return ExitSuccess
	}
}

// RunTUI launches the full-screen terminal UI. Wired in by the main
// package to avoid an import cycle between cli and the TUI, which shares
// this package's env wiring.
var RunTUI = func(args Args) error {
	return fmt.Errorf("tui support not linked into this build")
}

// PrintUsage prints the top-level usage text.
func PrintUsage() {
	fmt.Println()
	fmt.Println(TitleStyle.Render("qbot - conversational SQL for your terminal"))
	fmt.Println()
	fmt.Println(ValueStyle.Render("Usage:"))
	fmt.Println("  qbot                     Interactive REPL")
	fmt.Println("  qbot ask \"question\"      One question, one answer")
	fmt.Println("  qbot tui                 Full-screen terminal UI")
	fmt.Println("  qbot version             Print version")
	fmt.Println("  qbot help                This help")
	fmt.Println()
	fmt.Println(ValueStyle.Render("Flags:"))
	fmt.Println("  -m, --model NAME   Override the configured model")
	fmt.Println("  --db PATH          Override the configured database file")
	fmt.Println("  --config PATH      Load configuration from an explicit file")
	fmt.Println("  --readonly         Block all dangerous SQL for this session")
	fmt.Println("  --preview          Confirm every statement before it runs")
	fmt.Println("  --dangerous        Allow dangerous SQL without confirmation")
	fmt.Println("  --no-color         Disable colored output")
	fmt.Println("  -q, --quiet        Suppress banner and notices")
	fmt.Println()
	fmt.Println(DimStyle.Render("Configuration lives in " + configHint()))
	fmt.Println()
}
