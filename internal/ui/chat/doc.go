// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements qbot's full-screen terminal UI: a Bubble Tea
// program with a conversation viewport, an input line, and a spinner
// standing in as the thinking indicator. It drives the same session core
// as the CLI REPL, through a second display.Renderer implementation.
package chat
