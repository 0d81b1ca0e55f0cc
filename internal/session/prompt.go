// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates one conversation between the operator, the
// agent, and the database.
package session

import (
	"strings"

	"github.com/AnthusAI/sqlbot-tui/internal/agent"
)

// ============================================================================
// SYSTEM PROMPT
// ============================================================================

// SystemPrompt composes the instruction block the model sees before the
// conversation. A non-empty override wins unchanged; otherwise the prompt
// embeds the live table list so the model grounds its SQL in names that
// actually exist.
func SystemPrompt(tables []string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}

	var b strings.Builder
	b.WriteString("You are a helpful database analyst assistant working against a SQLite database.\n")

	if len(tables) > 0 {
		b.WriteString("\nDATABASE TABLES:\n")
		for _, t := range tables {
			b.WriteString("- ")
			b.WriteString(t)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nAnswer questions by running SQL with the ")
	b.WriteString(agent.ToolExecuteSQL)
	b.WriteString(" tool, then explain the results in plain language.\n")
	b.WriteString("Use direct table names; never invent tables or columns. ")
	b.WriteString("Prefer small, targeted queries, and always execute queries through the tool rather than just printing SQL.")
	return b.String()
}
