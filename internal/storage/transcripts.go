// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts under ~/.qbot.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AnthusAI/sqlbot-tui/internal/model"
	"github.com/AnthusAI/sqlbot-tui/internal/util"
)

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript is one persisted conversation. Records are stored verbatim, so
// a loaded transcript can be replayed through the same rendering path as a
// live session.
type Transcript struct {
	// Identity
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Summary   string    `json:"summary"`
	Model     string    `json:"model"`
	Database  string    `json:"database,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Conversation
	Records []model.Record `json:"records"`
}

// NewTranscript builds a transcript from a session's records. The ID is
// assigned on first save.
func NewTranscript(sessionID, modelName, database string, records []model.Record) *Transcript {
	return &Transcript{
		SessionID: sessionID,
		Model:     modelName,
		Database:  database,
		Records:   records,
	}
}

// TranscriptMeta carries the fields needed to list transcripts without
// loading their full record sets into memory at the call sites.
type TranscriptMeta struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	RecordCount int       `json:"record_count"`
	Preview     string    `json:"preview"`
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore handles transcript persistence on disk, one JSON file per
// transcript.
type TranscriptStore struct {
	// BaseDir is the storage directory. Default: ~/.qbot/transcripts/
	BaseDir string

	// MaxTranscripts caps how many transcripts are kept (0 = unlimited);
	// the oldest are pruned after each save.
	MaxTranscripts int
}

// defaultMaxTranscripts matches the configuration default.
const defaultMaxTranscripts = 50

// NewTranscriptStore creates a store rooted at ~/.qbot/transcripts.
func NewTranscriptStore() (*TranscriptStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStoreWithDir(filepath.Join(homeDir, ".qbot", "transcripts"))
}

// NewTranscriptStoreWithDir creates a store with a custom directory.
func NewTranscriptStoreWithDir(baseDir string) (*TranscriptStore, error) {
	// SECURITY: transcripts can embed query results, so the directory is
	// private to the owner.
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}

	return &TranscriptStore{
		BaseDir:        baseDir,
		MaxTranscripts: defaultMaxTranscripts,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a transcript and returns its ID. Saving an existing ID
// overwrites it in place, so repeated saves of one session update a single
// file.
func (s *TranscriptStore) Save(tr *Transcript) (string, error) {
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	if tr.Summary == "" {
		tr.Summary = summarize(tr.Records)
	}

	tr.UpdatedAt = time.Now()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = tr.UpdatedAt
	}

	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFileWithDir(s.filePath(tr.ID), data, 0600, 0700); err != nil {
		return "", err
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}

	return tr.ID, nil
}

// summarize derives a one-line summary from the first user record.
func summarize(records []model.Record) string {
	for _, rec := range records {
		if rec.Role == model.RoleUser && rec.Content != "" {
			line := strings.ReplaceAll(rec.Content, "\n", " ")
			line = strings.ReplaceAll(line, "\r", "")
			return util.TruncateRunes(line, 50)
		}
	}
	return "New conversation"
}

// enforceLimit removes the oldest transcripts when over the cap.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}

	// List is newest-first; prune from the tail.
	for _, meta := range metas[s.MaxTranscripts:] {
		s.Delete(meta.ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}

	var tr Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// LoadByIndex loads a transcript by its position in the listing
// (0 = most recent).
func (s *TranscriptStore) LoadByIndex(index int) (*Transcript, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrTranscriptNotFound
	}
	return s.Load(metas[index].ID)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns metadata for every saved transcript, most recent first.
// Unreadable or corrupt files are skipped rather than failing the listing.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	var metas []TranscriptMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		tr, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		metas = append(metas, TranscriptMeta{
			ID:          tr.ID,
			Summary:     tr.Summary,
			Model:       tr.Model,
			CreatedAt:   tr.CreatedAt,
			UpdatedAt:   tr.UpdatedAt,
			RecordCount: len(tr.Records),
			Preview:     tr.Preview(),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds transcripts whose summary or preview contains the query,
// case-insensitively.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []TranscriptMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Summary), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a transcript by ID.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

// Clear removes every saved transcript.
func (s *TranscriptStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// filePath returns the file path for a transcript ID.
func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrTranscriptNotFound is returned when a transcript doesn't exist.
// Use errors.Is(err, ErrTranscriptNotFound) to check for this error.
var ErrTranscriptNotFound = &StoreError{Message: "transcript not found"}

// StoreError represents a storage-related error. It can be compared with
// errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// TRANSCRIPT LIST FORMATTING
// =============================================================================

// listIDWidth is how many characters of the ID the listing shows; enough of
// a UUID to disambiguate and paste back.
const listIDWidth = 8

// FormatTranscriptList renders transcript metadata as a fixed-width table
// for the /sessions command.
func FormatTranscriptList(metas []TranscriptMeta) string {
	if len(metas) == 0 {
		return "No saved sessions."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("#", 4))
	sb.WriteString(util.PadRight("ID", listIDWidth+2))
	sb.WriteString(util.PadRight("Saved", 18))
	sb.WriteString(util.PadRight("Records", 9))
	sb.WriteString("Summary\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for i, meta := range metas {
		id := meta.ID
		if len(id) > listIDWidth {
			id = id[:listIDWidth]
		}
		sb.WriteString(util.PadRight(strconv.Itoa(i), 4))
		sb.WriteString(util.PadRight(id, listIDWidth+2))
		sb.WriteString(util.PadRight(meta.UpdatedAt.Format("2006-01-02 15:04"), 18))
		sb.WriteString(util.PadRight(strconv.Itoa(meta.RecordCount), 9))
		sb.WriteString(util.TruncateWidth(meta.Summary, 30))
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the transcript as Markdown with role labels and
// timestamps, suitable for sharing outside the terminal.
func (t *Transcript) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Session " + t.SessionID + "\n\n")
	if t.Model != "" {
		sb.WriteString("Model: " + t.Model + "\n\n")
	}
	if t.Database != "" {
		sb.WriteString("Database: " + t.Database + "\n\n")
	}
	sb.WriteString("Created: " + t.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, rec := range t.Records {
		sb.WriteString("**" + rec.Role.DisplayName() + "** (" + rec.Timestamp.Format("15:04") + "):\n\n")
		if rec.Role == model.RoleTool && rec.ToolQuery != "" {
			sb.WriteString("```sql\n" + rec.ToolQuery + "\n```\n\n")
		}
		sb.WriteString(rec.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// ExportJSON renders the transcript as pretty-printed JSON.
func (t *Transcript) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Preview returns a short preview from the first user record.
func (t *Transcript) Preview() string {
	for _, rec := range t.Records {
		if rec.Role == model.RoleUser && rec.Content != "" {
			return util.TruncateRunes(rec.Content, 80)
		}
	}
	return ""
}
