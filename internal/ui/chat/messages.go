// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - The TUI renderer and the Bubble Tea messages that carry
// session results back to the update loop.
//
// The session runs agent exchanges inside tea.Cmd goroutines and renders
// turns through Renderer as they happen; the update loop re-reads the
// rendered transcript on every spinner tick, so tool activity appears
// while the exchange is still in flight.

package chat

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/AnthusAI/sqlbot-tui/internal/display"
	"github.com/AnthusAI/sqlbot-tui/internal/query"
	"github.com/AnthusAI/sqlbot-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	userStyle      = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	aiStyle        = lipgloss.NewStyle().Foreground(styles.Purple)
	toolCallStyle  = lipgloss.NewStyle().Foreground(styles.Amber)
	toolResStyle   = lipgloss.NewStyle().Foreground(styles.Emerald)
	errStyle       = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	sysStyle       = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	dimStyle       = lipgloss.NewStyle().Foreground(styles.TextMuted)
	labelUser      = "You"
	labelAssistant = "qbot"
)

// =============================================================================
// RENDERER
// =============================================================================

// Renderer implements display.Renderer by accumulating styled transcript
// lines for the viewport. Safe for concurrent use: the session renders
// from a tea.Cmd goroutine while the view reads from the update loop.
type Renderer struct {
	mu       sync.Mutex
	blocks   []string
	thinking bool
}

// NewRenderer creates an empty transcript renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Transcript returns the rendered conversation as one string.
func (r *Renderer) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.blocks, "\n")
}

// AppendRaw adds pre-rendered output (direct SQL results, command output)
// to the transcript without a role prefix.
func (r *Renderer) AppendRaw(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, text)
}

// DisplayUser renders one user turn.
func (r *Renderer) DisplayUser(text string) {
	r.append(userStyle.Render(labelUser+":") + " " + text)
}

// DisplayAI renders one assistant turn.
func (r *Renderer) DisplayAI(text string) {
	r.append(aiStyle.Render(labelAssistant+":") + " " + text + "\n")
}

// DisplaySystem renders an informational line.
func (r *Renderer) DisplaySystem(text string, style display.Style) {
	switch style {
	case display.StyleDim:
		r.append(dimStyle.Render(text))
	case display.StyleWarning:
		r.append(toolCallStyle.Render(text))
	default:
		r.append(sysStyle.Render(text))
	}
}

// DisplayError renders a failure as an error-styled turn.
func (r *Renderer) DisplayError(text string) {
	r.append(errStyle.Render(labelAssistant+":") + " " + errStyle.Render(text) + "\n")
}

// DisplayToolCall renders the query the agent is running.
func (r *Renderer) DisplayToolCall(name, description string) {
	r.append(toolCallStyle.Render("  ▽ ") + dimStyle.Render(description))
}

// DisplayToolResult renders a query result summary.
func (r *Renderer) DisplayToolResult(name, summary string) {
	r.append(toolResStyle.Render("  ▼ ") + dimStyle.Render(summary))
}

// ShowThinkingIndicator marks the thinking state. The spinner in the
// footer is the visual; nothing enters the transcript, so there is no
// stale line to supersede when the response lands.
func (r *Renderer) ShowThinkingIndicator(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thinking = true
}

// Thinking reports whether the thinking state is set. The next rendered
// turn clears it.
func (r *Renderer) Thinking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.thinking
}

// Clear empties the transcript.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = nil
	r.thinking = false
}

func (r *Renderer) append(block string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thinking = false
	r.blocks = append(r.blocks, block)
}

var _ display.Renderer = (*Renderer)(nil)

// =============================================================================
// MESSAGES
// =============================================================================

// exchangeDoneMsg reports a finished agent exchange. The transcript
// already carries the outcome; err only informs the status line.
type exchangeDoneMsg struct {
	err error
}

// sqlDoneMsg reports a finished direct SQL statement.
type sqlDoneMsg struct {
	res *query.Result
	err error
}

// commandDoneMsg reports a finished slash command.
type commandDoneMsg struct {
	quit bool
	err  error
}
