// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation turns.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the sender of a conversation turn. Rendering and context
// conversion dispatch on this tag alone, never on a concrete type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleTool:
		return "Tool"
	default:
		return string(r)
	}
}

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is one stored conversation turn. Content is immutable once the
// record is in a buffer; the only sanctioned mutation is truncation at
// insertion time, which happens before the record is constructed.
type Record struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// For tool records: the synthetic identity assigned at append time,
	// unique within the owning buffer, and the query that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolQuery  string `json:"tool_query,omitempty"`

	// IsError marks assistant records that carry a collaborator failure,
	// so a re-sync renders them error-styled rather than as a reply.
	IsError bool `json:"is_error,omitempty"`
}

// NewRecord creates a new record with a generated ID. Records are plain
// values; buffers copy them freely, so nothing here is shared.
func NewRecord(role Role, content string) Record {
	return Record{
		ID:        generateRecordID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserRecord creates a new user record.
func NewUserRecord(content string) Record {
	return NewRecord(RoleUser, content)
}

// NewAssistantRecord creates a new assistant record.
func NewAssistantRecord(content string) Record {
	return NewRecord(RoleAssistant, content)
}

// NewSystemRecord creates a new system record.
func NewSystemRecord(content string) Record {
	return NewRecord(RoleSystem, content)
}

// NewToolRecord creates a new tool-result record. The caller supplies the
// buffer-scoped call ID and the originating query text.
func NewToolRecord(callID, query, content string) Record {
	rec := NewRecord(RoleTool, content)
	rec.ToolCallID = callID
	rec.ToolQuery = query
	return rec
}

// NewErrorRecord creates an assistant record carrying a failure message.
func NewErrorRecord(content string) Record {
	rec := NewRecord(RoleAssistant, content)
	rec.IsError = true
	return rec
}

// =============================================================================
// RECORD METHODS
// =============================================================================

// IsEmpty reports whether the record has no meaningful content.
func (r Record) IsEmpty() bool {
	return strings.TrimSpace(r.Content) == ""
}

// Preview returns a truncated, single-line version of the content for
// summaries and lists.
func (r Record) Preview(maxLen int) string {
	return PreviewText(r.Content, maxLen)
}

// PreviewText flattens text to a single line and truncates it to maxLen
// runes. Truncation is rune-based so multi-byte characters are never split.
func PreviewText(text string, maxLen int) string {
	content := strings.ReplaceAll(text, "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// ID GENERATION
// =============================================================================

// generateRecordID creates a unique record ID using crypto/rand.
func generateRecordID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fall back to timestamp-based ID on rand failure
		return "msg_" + time.Now().Format("20060102150405.000000000")
	}
	return "msg_" + hex.EncodeToString(bytes)
}
