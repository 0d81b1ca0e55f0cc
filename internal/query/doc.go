// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query executes SQL statements against the session database.
//
// The Executor contract is deliberately total: Execute always returns a
// Result, with failures captured in Result.Error rather than a Go error.
// Every outcome, including a syntax error or a timeout, is renderable as
// a conversation turn.
//
// SQLiteExecutor is the reference implementation, backed by the pure Go
// modernc.org/sqlite driver. It caps result sets at a configurable row
// count, bounds each statement with a per-query timeout, and answers
// schema questions (Tables, TableInfo, Preview) for the REPL's /tables
// and /preview commands. The table list is cached and invalidated by a
// debounced file watcher when another process modifies the database.
package query
