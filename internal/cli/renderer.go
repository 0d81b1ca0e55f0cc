// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// renderer.go - Terminal implementation of the display.Renderer contract.
//
// Each conversation turn is written as a symbol-prefixed line: the symbol
// tells the reader who is speaking without relying on color alone. The
// thinking indicator is a transient line that the next real output
// overwrites in place on a TTY.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/AnthusAI/sqlbot-tui/internal/display"
)

// =============================================================================
// MESSAGE SYMBOLS
// =============================================================================

const (
	// SymbolUser prefixes the echoed user turn.
	SymbolUser = "▷" // ▷
	// SymbolAI prefixes assistant responses.
	SymbolAI = "▶" // ▶
	// SymbolToolCall prefixes a query the agent is about to run.
	SymbolToolCall = "▽" // ▽
	// SymbolToolResult prefixes a query result summary.
	SymbolToolResult = "▼" // ▼
	// SymbolSystem prefixes informational lines.
	SymbolSystem = "◦" // ◦
)

// eraseThinkingLine moves the cursor up one line and clears it, removing a
// previously shown thinking indicator.
const eraseThinkingLine = "\033[1A\033[2K"

// =============================================================================
// CLI RENDERER
// =============================================================================

// CLIRenderer renders conversation turns as styled terminal lines. It is
// safe for concurrent use; the display synchronizer serializes calls in
// practice but the thinking flag still needs the lock for the signal path.
type CLIRenderer struct {
	mu  sync.Mutex
	out io.Writer

	// markdown renders assistant text through glamour when true.
	markdown bool

	// overwrite enables in-place erasure of the thinking line. Only
	// meaningful when out is a terminal.
	overwrite bool

	thinkingShown bool
}

// NewCLIRenderer creates a renderer writing to stdout, with markdown and
// line-overwrite enabled when stdout is a TTY.
func NewCLIRenderer(markdown bool) *CLIRenderer {
	return &CLIRenderer{
		out:       os.Stdout,
		markdown:  markdown && IsStdoutTTY(),
		overwrite: IsStdoutTTY(),
	}
}

// NewCLIRendererWithWriter creates a renderer for an arbitrary writer.
// Used by tests and the ask command's piped-output path.
func NewCLIRendererWithWriter(out io.Writer, markdown, overwrite bool) *CLIRenderer {
	return &CLIRenderer{out: out, markdown: markdown, overwrite: overwrite}
}

// DisplayUser renders the echoed user turn.
func (r *CLIRenderer) DisplayUser(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearThinkingLocked()
	fmt.Fprintf(r.out, "%s %s\n", PromptStyle.Render(SymbolUser), text)
}

// DisplayAI renders an assistant response, through glamour when enabled.
func (r *CLIRenderer) DisplayAI(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearThinkingLocked()

	if r.markdown {
		fmt.Fprintf(r.out, "%s\n%s\n", AIStyle.Render(SymbolAI), renderMarkdown(text))
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", AIStyle.Render(SymbolAI), text)
}

// DisplaySystem renders an informational line.
func (r *CLIRenderer) DisplaySystem(text string, style display.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearThinkingLocked()

	var rendered string
	switch style {
	case display.StyleDim:
		rendered = DimStyle.Render(text)
	case display.StyleWarning:
		rendered = WarningStyle.Render(text)
	case display.StyleSuccess:
		rendered = SuccessStyle.Render(text)
	default:
		rendered = InfoStyle.Render(text)
	}
	fmt.Fprintf(r.out, "%s %s\n", DimStyle.Render(SymbolSystem), rendered)
}

// DisplayError renders a failure as an error-styled turn.
func (r *CLIRenderer) DisplayError(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearThinkingLocked()
	fmt.Fprintf(r.out, "%s %s\n", ErrorStyle.Render(SymbolAI), ErrorStyle.Render(text))
}

// DisplayToolCall renders the query the agent is about to run, with SQL
// highlighting. Multi-line queries are indented under the symbol.
func (r *CLIRenderer) DisplayToolCall(name, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearThinkingLocked()

	highlighted := HighlightSQL(description)
	if strings.Contains(highlighted, "\n") {
		indented := "  " + strings.ReplaceAll(highlighted, "\n", "\n  ")
		fmt.Fprintf(r.out, "%s %s\n%s\n", WarningStyle.Render(SymbolToolCall),
			DimStyle.Render(name), indented)
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", WarningStyle.Render(SymbolToolCall), highlighted)
}

// DisplayToolResult renders a query result summary.
func (r *CLIRenderer) DisplayToolResult(name, summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearThinkingLocked()
	fmt.Fprintf(r.out, "%s %s\n", SuccessStyle.Render(SymbolToolResult),
		DimStyle.Render(summary))
}

// ShowThinkingIndicator renders the transient progress line. The next
// display call erases it on a TTY; on piped output it simply stands as a
// log line.
func (r *CLIRenderer) ShowThinkingIndicator(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.thinkingShown {
		// Refresh in place rather than stacking indicator lines.
		r.clearThinkingLocked()
	}
	fmt.Fprintf(r.out, "%s\n", DimStyle.Render(label+"..."))
	r.thinkingShown = true
}

// Clear erases the terminal display.
func (r *CLIRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thinkingShown = false
	if r.overwrite {
		fmt.Fprint(r.out, "\033[2J\033[H")
	}
}

// clearThinkingLocked removes a shown thinking indicator so real output
// supersedes it. Callers must hold the lock.
func (r *CLIRenderer) clearThinkingLocked() {
	if !r.thinkingShown {
		return
	}
	r.thinkingShown = false
	if r.overwrite {
		fmt.Fprint(r.out, eraseThinkingLine)
	}
}

var _ display.Renderer = (*CLIRenderer)(nil)
