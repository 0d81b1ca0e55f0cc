// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memory provides the bounded conversation buffer for chat sessions.
package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AnthusAI/sqlbot-tui/internal/extract"
	"github.com/AnthusAI/sqlbot-tui/internal/model"
)

// ============================================================================
// Configuration
// ============================================================================

// TruncationMarker is appended to content that was cut at insertion time.
const TruncationMarker = "\n\n[Message truncated for memory efficiency]"

// truncationReserve is how many runes the cut leaves free for the marker.
const truncationReserve = 50

// Config bounds the buffer. Zero values fall back to defaults.
type Config struct {
	// MaxMessages caps how many records the buffer keeps. Oldest records
	// are evicted first once the cap is exceeded.
	MaxMessages int

	// MaxContentLength caps the rune length of a single record's content
	// at insertion time. Longer content is truncated, not rejected.
	MaxContentLength int
}

// DefaultConfig returns the standard buffer bounds.
func DefaultConfig() Config {
	return Config{
		MaxMessages:      20,
		MaxContentLength: 2000,
	}
}

// ============================================================================
// Buffer
// ============================================================================

// Buffer is a bounded, ordered, in-memory store of conversation records.
//
// Mutation is expected from a single logical owner (the session). The
// internal lock makes snapshot reads safe while a writer is in flight, but
// it does not make interleaved multi-step mutations atomic for multiple
// writers.
type Buffer struct {
	mu      sync.Mutex
	cfg     Config
	records []model.Record
	seq     int
}

// NewBuffer creates a buffer with the given bounds. Zero or negative
// fields are filled from DefaultConfig.
func NewBuffer(cfg Config) *Buffer {
	def := DefaultConfig()
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = def.MaxMessages
	}
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = def.MaxContentLength
	}
	return &Buffer{cfg: cfg}
}

// ============================================================================
// Mutation
// ============================================================================

// AddUser appends one user record and returns how many records were
// appended. Empty content is dropped and returns 0.
func (b *Buffer) AddUser(content string) int {
	if content == "" {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.appendLocked(model.NewUserRecord(truncateContent(content, b.cfg.MaxContentLength)))
	return 1
}

// AddAssistant appends the records produced by one assistant turn and
// returns how many were appended.
//
// Plain text becomes a single assistant record. Text carrying a query
// details block is split first: one assistant record for the non-empty
// summary, then one tool record per extracted query/result pair with
// content "Query executed: {query}\nResult: {result}". Empty content is
// dropped and returns 0.
func (b *Buffer) AddAssistant(content string) int {
	if content == "" {
		return 0
	}

	if !extract.HasMarker(content) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.appendLocked(model.NewAssistantRecord(truncateContent(content, b.cfg.MaxContentLength)))
		return 1
	}

	summary, pairs := extract.ToolResults(content)

	b.mu.Lock()
	defer b.mu.Unlock()

	added := 0
	if summary != "" {
		b.appendLocked(model.NewAssistantRecord(truncateContent(summary, b.cfg.MaxContentLength)))
		added++
	}
	for i, pair := range pairs {
		// Position plus the monotonic sequence keeps IDs unique even
		// when identical queries repeat or old records are evicted.
		callID := fmt.Sprintf("query_%d_%d", i, b.seq)
		content := fmt.Sprintf("Query executed: %s\nResult: %s", pair.Query, pair.Result)
		rec := model.NewToolRecord(callID, pair.Query, truncateContent(content, b.cfg.MaxContentLength))
		b.appendLocked(rec)
		added++
	}
	return added
}

// AddSystem appends one system record. Empty content is dropped.
func (b *Buffer) AddSystem(content string) int {
	if content == "" {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.appendLocked(model.NewSystemRecord(truncateContent(content, b.cfg.MaxContentLength)))
	return 1
}

// AddError appends one error-flagged assistant record, used when a
// collaborator failure is converted into a user-facing message. Empty
// content is dropped.
func (b *Buffer) AddError(content string) int {
	if content == "" {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.appendLocked(model.NewErrorRecord(truncateContent(content, b.cfg.MaxContentLength)))
	return 1
}

// Clear empties the buffer. Display cursors are owned elsewhere and are
// deliberately not touched here. The sequence counter keeps advancing so
// record identities are never reused within a session.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = nil
}

// appendLocked stamps the record with the next sequence index, appends it,
// and evicts oldest-first until the size bound holds. Callers hold b.mu.
func (b *Buffer) appendLocked(rec model.Record) {
	rec.Seq = b.seq
	b.seq++

	b.records = append(b.records, rec)
	if over := len(b.records) - b.cfg.MaxMessages; over > 0 {
		b.records = append(b.records[:0], b.records[over:]...)
	}
}

// ============================================================================
// Reads
// ============================================================================

// Context returns a defensive copy of the full buffer, oldest first.
func (b *Buffer) Context() []model.Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Record, len(b.records))
	copy(out, b.records)
	return out
}

// FilteredContext returns a copy of the buffer with records unsuitable for
// agent context removed: whitespace-only content, and content that somehow
// exceeds twice the insertion-time cap.
func (b *Buffer) FilteredContext() []model.Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	hardCap := 2 * b.cfg.MaxContentLength
	out := make([]model.Record, 0, len(b.records))
	for _, rec := range b.records {
		if strings.TrimSpace(rec.Content) == "" {
			continue
		}
		if len([]rune(rec.Content)) > hardCap {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Len returns the current record count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.records)
}

// Summary is a read-only diagnostic snapshot of the buffer.
type Summary struct {
	Total    int
	PerRole  map[model.Role]int
	Previews []string
}

// previewLen bounds each Summary preview line.
const previewLen = 100

// Summary reports the record count, per-role counts, and previews of the
// last five records. It never mutates the buffer.
func (b *Buffer) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Summary{
		Total:   len(b.records),
		PerRole: make(map[model.Role]int),
	}
	for _, rec := range b.records {
		s.PerRole[rec.Role]++
	}

	start := len(b.records) - 5
	if start < 0 {
		start = 0
	}
	for _, rec := range b.records[start:] {
		s.Previews = append(s.Previews, fmt.Sprintf("[%s] %s", rec.Role.DisplayName(), rec.Preview(previewLen)))
	}
	return s
}

// ============================================================================
// Truncation
// ============================================================================

// truncateContent enforces the insertion-time content cap. Content within
// the cap passes through untouched; longer content is cut to leave room
// for the marker and the marker is appended.
func truncateContent(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}

	cut := maxLen - truncationReserve
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + TruncationMarker
}
