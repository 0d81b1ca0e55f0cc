// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// route.go - Input routing for the interactive surfaces.
//
// One routing rule shared by the REPL and the TUI:
//
//	/command args      slash command
//	//text             escape hatch: send "/text" to the agent verbatim
//	SELECT ... ;       trailing semicolon runs SQL directly
//	exit | quit        leave the session
//	anything else      a question for the agent

package cli

import "strings"

// InputKind classifies one line of interactive input.
type InputKind int

const (
	// InputEmpty is blank input, skipped.
	InputEmpty InputKind = iota
	// InputCommand is a slash command.
	InputCommand
	// InputSQL is a statement to run directly.
	InputSQL
	// InputAgent is natural-language input for the agent.
	InputAgent
	// InputExit is a bare exit/quit.
	InputExit
)

// ClassifyInput routes one trimmed input line. The returned payload is
// the text the handler should consume: the command line for commands, the
// statement for SQL, and the prompt for the agent (with the escape slash
// already stripped).
func ClassifyInput(line string) (InputKind, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return InputEmpty, ""
	}

	// "//" escapes command parsing: the rest goes to the agent with one
	// slash kept, so "//help" asks the model about "/help".
	if strings.HasPrefix(line, "//") {
		return InputAgent, line[1:]
	}
	if strings.HasPrefix(line, "/") {
		return InputCommand, line
	}
	if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
		return InputExit, ""
	}
	if strings.HasSuffix(line, ";") {
		return InputSQL, line
	}
	return InputAgent, line
}
