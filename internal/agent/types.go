// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the LLM collaborator for conversational turns.
package agent

import (
	"fmt"
	"time"
)

// =============================================================================
// WIRE TYPES (/api/chat)
// =============================================================================

// chatMessage is one message in the Ollama chat wire format.
type chatMessage struct {
	Role      string        `json:"role"` // "user", "assistant", "system", "tool"
	Content   string        `json:"content"`
	ToolCalls []apiToolCall `json:"tool_calls,omitempty"`
}

// apiToolCall is a tool invocation as Ollama encodes it.
type apiToolCall struct {
	Function toolFunction `json:"function"`
}

// toolFunction carries the function name and arguments.
type toolFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// chatRequest is the request body for the /api/chat endpoint.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Tools    []toolDef     `json:"tools,omitempty"`
}

// toolDef declares a callable tool to the model.
type toolDef struct {
	Type     string     `json:"type"` // Always "function"
	Function toolSchema `json:"function"`
}

// toolSchema defines a tool's interface.
type toolSchema struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  toolParams `json:"parameters"`
}

// toolParams is the JSON Schema for a tool's arguments.
type toolParams struct {
	Type       string              `json:"type"` // "object"
	Properties map[string]toolProp `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// toolProp describes a single argument.
type toolProp struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// chatResponse is the response from /api/chat.
type chatResponse struct {
	Model         string      `json:"model"`
	CreatedAt     time.Time   `json:"created_at"`
	Message       chatMessage `json:"message"`
	Done          bool        `json:"done"`
	DoneReason    string      `json:"done_reason,omitempty"`
	TotalDuration int64       `json:"total_duration,omitempty"` // nanoseconds
	EvalCount     int         `json:"eval_count,omitempty"`
}

// apiError is an error payload from the Ollama API.
type apiError struct {
	Error string `json:"error"`
}

// =============================================================================
// MODEL LISTING
// =============================================================================

// ModelInfo describes one locally available model.
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

// listModelsResponse is the response from /api/tags.
type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// FormatSize renders the model size in human-readable form.
func (m ModelInfo) FormatSize() string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case m.Size >= gb:
		return fmt.Sprintf("%.1f GB", float64(m.Size)/gb)
	case m.Size >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.Size)/mb)
	case m.Size >= kb:
		return fmt.Sprintf("%.1f KB", float64(m.Size)/kb)
	default:
		return fmt.Sprintf("%d B", m.Size)
	}
}

// =============================================================================
// TOOL DEFINITIONS
// =============================================================================

// sqlTool is the execute_sql declaration sent with every chat request.
func sqlTool() toolDef {
	return toolDef{
		Type: "function",
		Function: toolSchema{
			Name: ToolExecuteSQL,
			Description: "Execute a SQL query against the SQLite database and return the " +
				"result rows. Use this to answer questions about the data. Input must be " +
				"valid SQLite SQL, for example: SELECT title, year FROM films LIMIT 10",
			Parameters: toolParams{
				Type: "object",
				Properties: map[string]toolProp{
					"query": {
						Type:        "string",
						Description: "The SQL query to execute",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}
