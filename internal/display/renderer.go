// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package display synchronizes the conversation buffer with a renderer.
package display

// ============================================================================
// Styles
// ============================================================================

// Style names a rendering treatment for system text. Renderers map these
// to whatever their medium supports; unknown styles fall back to plain.
type Style string

const (
	StyleInfo    Style = "info"
	StyleDim     Style = "dim"
	StyleWarning Style = "warning"
	StyleSuccess Style = "success"
)

// ============================================================================
// Renderer
// ============================================================================

// Renderer is the capability set a display target must provide. The CLI
// implements it with styled terminal writes, the TUI with widget updates.
// Implementations own the visual treatment, including how a previously
// shown thinking indicator is superseded once real output arrives.
type Renderer interface {
	// DisplayUser renders one user turn.
	DisplayUser(text string)

	// DisplayAI renders one assistant turn.
	DisplayAI(text string)

	// DisplaySystem renders an informational line with the given style.
	DisplaySystem(text string, style Style)

	// DisplayError renders a failure as an error-styled turn.
	DisplayError(text string)

	// DisplayToolCall renders the start of a tool invocation, typically
	// the query about to run.
	DisplayToolCall(name, description string)

	// DisplayToolResult renders the outcome of a tool invocation.
	DisplayToolResult(name, summary string)

	// ShowThinkingIndicator renders a transient progress affordance. It
	// is never backed by a buffer record.
	ShowThinkingIndicator(label string)

	// Clear erases everything rendered so far.
	Clear()
}
