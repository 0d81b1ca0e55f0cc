// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the LLM collaborator for conversational turns.
//
// The Invoker contract is the only seam the rest of the program sees: one
// prompt plus conversation history in, one Response out. A Response carries
// the model's text and any structured tool calls; nothing downstream ever
// guesses at the shape of model output by scraping strings.
//
// Client is the Ollama implementation. It speaks the non-streaming
// /api/chat endpoint, declares the execute_sql tool on every request,
// retries transient connection failures, and throttles calls with a token
// bucket when a per-minute rate is configured. The session layer owns the
// tool loop: it executes requested queries and feeds results back through
// another Invoke with the tool records appended to the history.
package agent
