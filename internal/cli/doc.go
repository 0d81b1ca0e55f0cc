// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the qbot command-line surface: argument parsing,
// the interactive REPL with slash commands, the single-shot ask command,
// and the terminal renderer that backs the conversation display.
package cli
