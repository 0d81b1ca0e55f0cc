// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query executes SQL statements against the session database.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// EXECUTOR CONTRACT
// =============================================================================

// Executor runs one SQL statement and reports the outcome. Implementations
// are total: failures are encoded in the Result rather than returned as a
// Go error, so callers always get something renderable.
type Executor interface {
	Execute(ctx context.Context, sqlText string) *Result
}

// Result is the outcome of a single statement.
type Result struct {
	// Success is false when the statement failed to parse or execute.
	Success bool

	// Columns preserves the result set's column order. Maps don't.
	Columns []string

	// Rows holds the result set, one map per row keyed by column name.
	Rows []map[string]any

	// RowsAffected is set for statements that modify data instead of
	// returning rows.
	RowsAffected int64

	// Truncated is true when the row cap cut the result set short.
	Truncated bool

	// Error is the user-facing failure description when Success is false.
	Error string

	// Elapsed is wall-clock execution time.
	Elapsed time.Duration
}

// failure builds an error result stamped with elapsed time.
func failure(start time.Time, format string, args ...any) *Result {
	return &Result{
		Success: false,
		Error:   fmt.Sprintf(format, args...),
		Elapsed: time.Since(start),
	}
}

// Text renders the result as plain text, one pipe-separated line per row.
// This is the form fed back to the agent and embedded in conversation
// history; terminal rendering uses the richer table formatter instead.
func (r *Result) Text() string {
	if !r.Success {
		return "Error: " + r.Error
	}

	if len(r.Columns) == 0 {
		if r.RowsAffected > 0 {
			return fmt.Sprintf("OK, %d row(s) affected", r.RowsAffected)
		}
		return "OK"
	}

	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, " | "))
	b.WriteString("\n")

	for _, row := range r.Rows {
		vals := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			vals[i] = FormatValue(row[col])
		}
		b.WriteString(strings.Join(vals, " | "))
		b.WriteString("\n")
	}

	if r.Truncated {
		b.WriteString(fmt.Sprintf("(%d rows shown, result truncated)", len(r.Rows)))
	} else {
		b.WriteString(fmt.Sprintf("(%d rows)", len(r.Rows)))
	}

	return b.String()
}

// FormatValue renders a single cell value for display. NULLs render as the
// literal NULL so they are distinguishable from empty strings.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		// Trim the noise from integral floats (SQLite is loosely typed).
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
