// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// markdown.go - Markdown rendering for assistant responses.
//
// Model responses are markdown-shaped often enough that rendering them
// through glamour is a clear win on a TTY. Falls back to raw text when
// the renderer is unavailable or output is piped.

package cli

import (
	"github.com/charmbracelet/glamour"
)

// markdownRenderer is the shared glamour renderer, nil when construction
// failed (raw text is used instead).
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display, returning
// the input unchanged when rendering is not possible.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
