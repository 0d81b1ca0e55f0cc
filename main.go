// qbot - A conversational SQL assistant for your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/AnthusAI/sqlbot-tui/internal/cli"
	"github.com/AnthusAI/sqlbot-tui/internal/ui/chat"
)

func main() {
	// The cli package cannot import ui/chat (chat depends on cli for
	// argument parsing and rendering), so the TUI entry is linked here.
	cli.RunTUI = chat.Run

	os.Exit(cli.Run(os.Args[1:]))
}
