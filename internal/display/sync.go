// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package display synchronizes the conversation buffer with a renderer.
package display

import (
	"strings"

	"github.com/AnthusAI/sqlbot-tui/internal/memory"
	"github.com/AnthusAI/sqlbot-tui/internal/model"
)

// toolName labels tool calls and results in rendered output.
const toolName = "query"

// toolSummaryLen bounds the rendered preview of a tool result.
const toolSummaryLen = 100

// ============================================================================
// Synchronizer
// ============================================================================

// Synchronizer keeps a renderer consistent with the conversation buffer.
//
// It owns a cursor counting how many buffer records have been forwarded to
// the renderer, and a flag for the transient thinking indicator. The
// indicator is render-only state, never a buffer record, so it can never
// be double-counted by a resync.
//
// A Synchronizer is not safe for concurrent use. It belongs to the
// session's render context; worker results must be marshalled back before
// touching it.
type Synchronizer struct {
	buffer   *memory.Buffer
	renderer Renderer
	cursor   int
	thinking bool
}

// NewSynchronizer creates a synchronizer over the given buffer and renderer.
func NewSynchronizer(buffer *memory.Buffer, renderer Renderer) *Synchronizer {
	return &Synchronizer{
		buffer:   buffer,
		renderer: renderer,
	}
}

// Sync renders every buffer record the renderer has not seen yet and
// advances the cursor. Calling it again with no intervening append renders
// nothing. If the buffer shrank underneath the cursor (eviction, or a
// clear without a display clear), the cursor is clamped first.
func (s *Synchronizer) Sync() {
	records := s.buffer.Context()
	if s.cursor > len(records) {
		s.cursor = len(records)
	}
	for _, rec := range records[s.cursor:] {
		s.render(rec)
	}
	s.cursor = len(records)
}

// AddUserMessage appends one user turn and renders it immediately, keeping
// the cursor consistent without a full resync.
func (s *Synchronizer) AddUserMessage(text string) {
	s.Sync()
	if added := s.buffer.AddUser(text); added > 0 {
		s.renderNewest(added)
	}
	s.cursor = s.buffer.Len()
}

// AddAIMessage appends the records produced by one assistant turn and
// renders exactly those. A composite response lands as a summary record
// plus tool records, so the advance can be more than one. Any visible
// thinking indicator is considered superseded by the rendered response.
func (s *Synchronizer) AddAIMessage(text string) {
	s.Sync()
	s.thinking = false
	if added := s.buffer.AddAssistant(text); added > 0 {
		s.renderNewest(added)
	}
	s.cursor = s.buffer.Len()
}

// AddSystemMessage appends one system notice and renders it.
func (s *Synchronizer) AddSystemMessage(text string) {
	s.Sync()
	if added := s.buffer.AddSystem(text); added > 0 {
		s.renderNewest(added)
	}
	s.cursor = s.buffer.Len()
}

// AddErrorMessage converts a collaborator failure into an error-styled
// assistant turn. The thinking indicator is cleared in the same step so no
// turn can end with a stale "thinking" line.
func (s *Synchronizer) AddErrorMessage(text string) {
	s.Sync()
	s.thinking = false
	if added := s.buffer.AddError(text); added > 0 {
		s.renderNewest(added)
	}
	s.cursor = s.buffer.Len()
}

// ShowThinkingIndicator renders the transient progress affordance. The
// buffer and cursor are untouched.
func (s *Synchronizer) ShowThinkingIndicator(label string) {
	s.renderer.ShowThinkingIndicator(label)
	s.thinking = true
}

// ClearDisplay wipes the renderer and resets the cursor to zero. The
// buffer is left alone; clearing it is a separate, caller-coordinated
// step. A subsequent Sync repaints the surviving records.
func (s *Synchronizer) ClearDisplay() {
	s.renderer.Clear()
	s.cursor = 0
	s.thinking = false
}

// Cursor returns how many buffer records have been rendered.
func (s *Synchronizer) Cursor() int {
	return s.cursor
}

// Thinking reports whether the thinking indicator is considered visible.
func (s *Synchronizer) Thinking() bool {
	return s.thinking
}

// ============================================================================
// Rendering
// ============================================================================

// renderNewest renders the last n buffer records in order. Eviction drops
// from the front, so the newest records are always the tail.
func (s *Synchronizer) renderNewest(n int) {
	records := s.buffer.Context()
	if n > len(records) {
		n = len(records)
	}
	for _, rec := range records[len(records)-n:] {
		s.render(rec)
	}
}

// render dispatches one record to the renderer, keyed on the role tag.
func (s *Synchronizer) render(rec model.Record) {
	switch rec.Role {
	case model.RoleUser:
		s.renderer.DisplayUser(rec.Content)
	case model.RoleAssistant:
		if rec.IsError {
			s.renderer.DisplayError(rec.Content)
			return
		}
		s.renderer.DisplayAI(rec.Content)
	case model.RoleSystem:
		s.renderer.DisplaySystem(rec.Content, StyleInfo)
	case model.RoleTool:
		if rec.ToolQuery != "" {
			s.renderer.DisplayToolCall(toolName, rec.ToolQuery)
		}
		s.renderer.DisplayToolResult(toolName, resultSummary(rec))
	}
}

// resultSummary extracts the result portion of a tool record's content for
// compact rendering. Content without the stored shape falls back to a
// preview of the whole record.
func resultSummary(rec model.Record) string {
	if _, after, found := strings.Cut(rec.Content, "\nResult: "); found {
		return model.PreviewText(after, toolSummaryLen)
	}
	return rec.Preview(toolSummaryLen)
}
