// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract parses composite agent responses.
//
// Agents that run queries on the user's behalf fold the executed SQL and
// its output into a single response under a "--- Query Details ---" block.
// ToolResults splits such a response into the conversational summary and
// the ordered query/result pairs so each can be stored and rendered as its
// own turn:
//
//	summary, pairs := extract.ToolResults(resp.Text)
//	for _, p := range pairs {
//		// p.Query, p.Result
//	}
//
// Extraction is idempotent. A response without the marker is returned as-is
// with no pairs, so summaries that have already been through ToolResults
// are safe to feed back in.
package extract
