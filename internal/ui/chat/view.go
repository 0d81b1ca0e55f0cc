// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// view.go - Layout for the full-screen qbot UI: header bar, conversation
// viewport, input footer.

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/AnthusAI/sqlbot-tui/internal/safety"
	"github.com/AnthusAI/sqlbot-tui/internal/ui/styles"
)

const (
	headerHeight = 2
	footerHeight = 3
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true).
			Background(styles.SurfaceDim).
			Padding(0, 1)

	headerInfoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Background(styles.SurfaceDim).
			Padding(0, 1)

	footerBorderStyle = lipgloss.NewStyle().
				Foreground(styles.Border)

	statusStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// newViewport builds the conversation viewport.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// View renders the whole screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.sized {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader shows identity on the left, model and mode on the right.
func (m *Model) renderHeader() string {
	left := headerStyle.Render("qbot")
	right := headerInfoStyle.Render(
		m.env.Client.Model() + "  " + m.env.Executor.Path() + "  " + modeBadge(m.session.Policy()))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left + "\n"
	}
	filler := lipgloss.NewStyle().Background(styles.SurfaceDim).Render(strings.Repeat(" ", gap))
	return left + filler + right + "\n"
}

// renderFooter shows the separator, then the input line or the spinner.
func (m *Model) renderFooter() string {
	var b strings.Builder
	width := m.width
	if width < 1 {
		width = 1
	}
	b.WriteString(footerBorderStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if m.state == StateBusy {
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(" thinking... (Ctrl+C cancels)"))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString(m.statusMsg)
	} else {
		b.WriteString(statusStyle.Render("/help for commands - Esc quits"))
	}
	return b.String()
}

// modeBadge renders the active safety gates compactly.
func modeBadge(p safety.Policy) string {
	switch {
	case p.ReadOnly:
		return "[read-only]"
	case p.AllowDangerous:
		return "[dangerous]"
	case p.ConfirmBeforeRun:
		return "[preview]"
	default:
		return "[standard]"
	}
}
