// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package display synchronizes the conversation buffer with a renderer.
//
// The Synchronizer is the single bridge between stored conversation state
// and whatever is drawing it. It tracks a cursor of how many buffer
// records the renderer has seen; Sync replays only the delta, so repeated
// calls with no new records render nothing. The immediate-mode operations
// (AddUserMessage, AddAIMessage, AddErrorMessage) append and render in one
// step, keeping the cursor consistent without a full repaint.
//
// Renderer is the capability contract a display target implements. Two
// implementations ship with the application: a styled line-oriented
// renderer for the plain REPL and a widget-backed renderer for the TUI.
// The thinking indicator is deliberately renderer state rather than a
// buffer record, so progress affordances can never leak into agent
// context or be double-rendered by a resync.
package display
