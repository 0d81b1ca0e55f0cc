// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Interactive confirmation for gated SQL statements.

package cli

import (
	"fmt"
	"strings"

	"github.com/AnthusAI/sqlbot-tui/internal/safety"
	"github.com/AnthusAI/sqlbot-tui/internal/session"
)

// makeConfirmFunc builds the session's confirmation callback on top of the
// REPL's line input. It shows the statement, its classification, and asks
// for an explicit yes. Anything but y/yes declines.
func makeConfirmFunc(input *ReplInput) session.ConfirmFunc {
	return func(sqlText string, analysis safety.Analysis) bool {
		fmt.Println()
		switch analysis.Level {
		case safety.LevelDangerous:
			fmt.Printf("%s %s\n", WarningStyle.Render("[Confirm]"),
				WarningStyle.Render("dangerous operations: "+strings.Join(analysis.Operations, ", ")))
		case safety.LevelWarning:
			fmt.Printf("%s %s\n", WarningStyle.Render("[Confirm]"),
				WarningStyle.Render("flagged operations: "+strings.Join(analysis.Operations, ", ")))
		default:
			fmt.Println(InfoStyle.Render("[Confirm] about to execute:"))
		}
		fmt.Println("  " + HighlightSQL(sqlText))

		answer, err := input.ReadInput(WarningStyle.Render("Run this statement? [y/N] "))
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
