// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the LLM collaborator for conversational turns.
package agent

import (
	"context"
	"strings"

	"github.com/AnthusAI/sqlbot-tui/internal/model"
)

// ToolExecuteSQL is the name of the one tool exposed to the model.
const ToolExecuteSQL = "execute_sql"

// Invoker is the LLM collaborator contract. One call, one structured
// response: the model's text plus any tool calls it requested. Callers
// never parse free text to discover tool intent.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, history []model.Record) (*Response, error)
}

// Response is the structured outcome of a single invocation.
type Response struct {
	// Text is the model's reply, empty when the model only requested tools.
	Text string

	// ToolCalls are the tool invocations the model requested, in order.
	ToolCalls []ToolCall
}

// ToolCall is one structured tool request from the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Query returns the SQL argument of an execute_sql call. The second
// return is false for other tools or a missing/empty query argument.
func (tc ToolCall) Query() (string, bool) {
	if tc.Name != ToolExecuteSQL {
		return "", false
	}
	raw, ok := tc.Args["query"].(string)
	if !ok {
		return "", false
	}
	q := strings.TrimSpace(raw)
	return q, q != ""
}
