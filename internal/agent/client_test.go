// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the LLM collaborator for conversational turns.
package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnthusAI/sqlbot-tui/internal/model"
)

// =============================================================================
// CONFIGURATION TESTS
// =============================================================================

func TestNewClient_NilConfigUsesDefaults(t *testing.T) {
	c := NewClient(nil)

	if c.config.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q, want default", c.config.BaseURL)
	}
	if c.config.Model != "qwen2.5-coder:14b" {
		t.Errorf("Model = %q, want default", c.config.Model)
	}
	if c.config.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", c.config.Timeout)
	}
	if c.limiter == nil {
		t.Error("limiter should be enabled by default")
	}
}

func TestNewClient_FillsZeroFields(t *testing.T) {
	c := NewClient(&ClientConfig{BaseURL: "http://example.test", RatePerMinute: -1})

	if c.config.BaseURL != "http://example.test" {
		t.Errorf("BaseURL = %q, want provided value kept", c.config.BaseURL)
	}
	if c.config.Model == "" {
		t.Error("Model should be filled with default")
	}
	if c.config.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", c.config.MaxRetries)
	}
	if c.limiter != nil {
		t.Error("negative rate should disable the limiter")
	}
}

// =============================================================================
// TOOL CALL TESTS
// =============================================================================

func TestToolCall_Query(t *testing.T) {
	tests := []struct {
		name   string
		call   ToolCall
		want   string
		wantOK bool
	}{
		{
			name:   "valid execute_sql call",
			call:   ToolCall{Name: ToolExecuteSQL, Args: map[string]any{"query": "SELECT 1"}},
			want:   "SELECT 1",
			wantOK: true,
		},
		{
			name:   "query gets trimmed",
			call:   ToolCall{Name: ToolExecuteSQL, Args: map[string]any{"query": "  SELECT 1\n"}},
			want:   "SELECT 1",
			wantOK: true,
		},
		{
			name:   "wrong tool name",
			call:   ToolCall{Name: "search", Args: map[string]any{"query": "SELECT 1"}},
			wantOK: false,
		},
		{
			name:   "missing query argument",
			call:   ToolCall{Name: ToolExecuteSQL, Args: map[string]any{}},
			wantOK: false,
		},
		{
			name:   "non-string query argument",
			call:   ToolCall{Name: ToolExecuteSQL, Args: map[string]any{"query": 42}},
			wantOK: false,
		},
		{
			name:   "whitespace-only query",
			call:   ToolCall{Name: ToolExecuteSQL, Args: map[string]any{"query": "   "}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.call.Query()
			if ok != tt.wantOK {
				t.Fatalf("Query() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// INVOCATION TESTS
// =============================================================================

// newTestClient points a client at a test server with retries and rate
// limiting tuned for fast tests.
func newTestClient(url string) *Client {
	return NewClient(&ClientConfig{
		BaseURL:       url,
		Model:         "test-model",
		MaxRetries:    1,
		RetryDelay:    time.Millisecond,
		RatePerMinute: -1,
		SystemPrompt:  "You are a test assistant.",
	})
}

func TestInvoke_PlainTextResponse(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "test-model",
			"message": {"role": "assistant", "content": "There are 5 films."},
			"done": true
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	history := []model.Record{
		model.NewUserRecord("earlier question"),
		model.NewAssistantRecord("earlier answer"),
	}

	resp, err := c.Invoke(context.Background(), "How many films are there?", history)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if resp.Text != "There are 5 films." {
		t.Errorf("Text = %q, want model reply", resp.Text)
	}
	if len(resp.ToolCalls) != 0 {
		t.Errorf("ToolCalls = %v, want none", resp.ToolCalls)
	}

	// Outgoing request shape: system prompt, history in order, new prompt
	// last, and the execute_sql tool declared.
	if captured.Model != "test-model" {
		t.Errorf("request model = %q, want 'test-model'", captured.Model)
	}
	if captured.Stream {
		t.Error("request should be non-streaming")
	}
	if len(captured.Messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("messages[0].Role = %q, want 'system'", captured.Messages[0].Role)
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "earlier question" {
		t.Errorf("messages[1] = %+v, want earlier user turn", captured.Messages[1])
	}
	if last := captured.Messages[3]; last.Role != "user" || last.Content != "How many films are there?" {
		t.Errorf("messages[3] = %+v, want the new prompt", last)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].Function.Name != ToolExecuteSQL {
		t.Errorf("tools = %+v, want the execute_sql declaration", captured.Tools)
	}
}

func TestInvoke_ToolCallResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "test-model",
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [
					{"function": {"name": "execute_sql", "arguments": {"query": "SELECT COUNT(*) FROM films"}}}
				]
			},
			"done": true
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	resp, err := c.Invoke(context.Background(), "count the films", nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(resp.ToolCalls) != 1 {
		t.Fatalf("len(ToolCalls) = %d, want 1", len(resp.ToolCalls))
	}

	q, ok := resp.ToolCalls[0].Query()
	if !ok {
		t.Fatal("Query() ok = false, want a usable query")
	}
	if q != "SELECT COUNT(*) FROM films" {
		t.Errorf("Query() = %q, want the requested SQL", q)
	}
}

func TestInvoke_EmptyPromptSendsHistoryOnly(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"message": {"role": "assistant", "content": "done"}, "done": true}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	history := []model.Record{
		model.NewUserRecord("count films"),
		model.NewToolRecord("query_0_1", "SELECT COUNT(*) FROM films", "Query executed: SELECT COUNT(*) FROM films\nResult: 5"),
	}

	if _, err := c.Invoke(context.Background(), "", history); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	// system + 2 history records, no trailing user message
	if len(captured.Messages) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(captured.Messages))
	}
	if last := captured.Messages[2]; last.Role != "tool" {
		t.Errorf("messages[2].Role = %q, want 'tool'", last.Role)
	}
}

func TestInvoke_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Invoke(context.Background(), "hi", nil)
	if err == nil {
		t.Fatal("Invoke() should fail with 404")
	}
	if !IsModelNotFound(err) {
		t.Errorf("IsModelNotFound(%v) = false, want true", err)
	}
}

func TestInvoke_SurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid request: messages missing"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Invoke(context.Background(), "hi", nil)
	if err == nil {
		t.Fatal("Invoke() should fail with 400")
	}
	if err.Error() != "invalid request: messages missing" {
		t.Errorf("error = %q, want API message surfaced", err.Error())
	}
}

func TestInvoke_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Deliberately unreachable

	c := newTestClient(server.URL)

	_, err := c.Invoke(context.Background(), "hi", nil)
	if err == nil {
		t.Fatal("Invoke() against a down server should fail")
	}
	if !IsNotRunning(err) {
		t.Errorf("IsNotRunning(%v) = false, want true", err)
	}
}

// =============================================================================
// HEALTH AND MODEL LISTING TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if err := c.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() error = %v, want nil", err)
	}

	server.Close()
	if err := c.CheckRunning(context.Background()); !IsNotRunning(err) {
		t.Errorf("CheckRunning() after close = %v, want not-running error", err)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		w.Write([]byte(`{
			"models": [
				{"name": "qwen2.5-coder:14b", "size": 9000000000},
				{"name": "llama3.1:8b", "size": 4700000000}
			]
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	if models[0].Name != "qwen2.5-coder:14b" {
		t.Errorf("models[0].Name = %q", models[0].Name)
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestModelInfo_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{9016035328, "8.4 GB"},
	}

	for _, tt := range tests {
		m := ModelInfo{Size: tt.size}
		if got := m.FormatSize(); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !isRetryable(ErrNotRunning) {
		t.Error("not-running should be retryable")
	}
	if isRetryable(ErrModelNotFound) {
		t.Error("model-not-found should not be retryable")
	}
	if isRetryable(ErrTimeout) {
		t.Error("timeout should not be retryable")
	}
	if isRetryable(context.Canceled) {
		t.Error("non-client errors should not be retryable")
	}
}

func TestSetModel(t *testing.T) {
	c := NewClient(nil)
	c.SetModel("mistral:7b")
	if c.Model() != "mistral:7b" {
		t.Errorf("Model() = %q, want 'mistral:7b'", c.Model())
	}
}
