// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract parses composite agent responses into summary and tool results.
package extract

import "strings"

// Marker separates the conversational summary from the query details block
// in a composite agent response. The exact text is part of the agent
// contract; responses without it pass through untouched.
const Marker = "--- Query Details ---"

const (
	queryDelimiter = "\n\nQuery:"
	queryPrefix    = "Query:"
	resultMarker   = "Result:"
)

// Pair is one extracted query and its result text.
type Pair struct {
	Query  string
	Result string
}

// HasMarker reports whether a response carries a query details block.
func HasMarker(raw string) bool {
	return strings.Contains(raw, Marker)
}

// ToolResults splits a composite response into its summary and the ordered
// query/result pairs from the details block.
//
// Responses without the marker return unchanged with no pairs, which makes
// extraction idempotent: feeding a previously extracted summary back through
// yields the same summary. Within the details block, segments are separated
// by a blank line and a "Query:" prefix; the first segment is treated as
// query-prefixed even without the leading blank line. A segment with no
// "Result:" text contributes no pair.
func ToolResults(raw string) (string, []Pair) {
	idx := strings.Index(raw, Marker)
	if idx < 0 {
		return raw, nil
	}

	summary := strings.TrimSpace(raw[:idx])
	details := raw[idx+len(Marker):]

	var pairs []Pair
	for _, segment := range strings.Split(details, queryDelimiter) {
		before, after, found := strings.Cut(segment, resultMarker)
		if !found {
			continue // No result text, nothing to record
		}

		query := strings.TrimSpace(before)
		query = strings.TrimSpace(strings.TrimPrefix(query, queryPrefix))
		result := strings.TrimSpace(after)

		pairs = append(pairs, Pair{Query: query, Result: result})
	}

	return summary, pairs
}
