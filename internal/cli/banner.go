// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// banner.go - Startup banner for the interactive REPL.

package cli

import (
	"fmt"

	"github.com/AnthusAI/sqlbot-tui/internal/safety"
)

// PrintBanner prints the session banner: what model answers, what
// database it queries, and which safety modes are active.
func PrintBanner(model, dbPath string, policy safety.Policy) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("qbot - conversational SQL"))
	fmt.Println(RenderSeparator(30))
	fmt.Printf("%s %s\n", LabelStyle.Render("Model:"), CommandStyle.Render(model))
	fmt.Printf("%s %s\n", LabelStyle.Render("Database:"), ValueStyle.Render(dbPath))
	fmt.Printf("%s %s\n", LabelStyle.Render("Mode:"), describePolicy(policy))
	fmt.Println()
	fmt.Println(InfoStyle.Render("Ask questions in plain language, end a line with ';' to run SQL directly."))
	fmt.Println(InfoStyle.Render("Commands: /help, /tables, /quit"))
	fmt.Println()
}

// describePolicy renders the active safety gates as one line.
func describePolicy(p safety.Policy) string {
	switch {
	case p.ReadOnly && p.ConfirmBeforeRun:
		return WarningStyle.Render("read-only, confirm each statement")
	case p.ReadOnly:
		return WarningStyle.Render("read-only")
	case p.AllowDangerous:
		return ErrorStyle.Render("dangerous (writes allowed without confirmation)")
	case p.ConfirmBeforeRun:
		return WarningStyle.Render("preview (confirm each statement)")
	default:
		return CommandStyle.Render("standard (dangerous SQL needs confirmation)")
	}
}
