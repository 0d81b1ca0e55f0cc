// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts under ~/.qbot.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AnthusAI/sqlbot-tui/internal/model"
)

// =============================================================================
// TRANSCRIPT STORE TESTS
// =============================================================================

func newTestStore(t *testing.T) *TranscriptStore {
	t.Helper()

	store, err := NewTranscriptStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func sampleRecords() []model.Record {
	return []model.Record{
		model.NewUserRecord("how many films are there?"),
		model.NewAssistantRecord("There are 5 films."),
		model.NewToolRecord("query_0_1", "SELECT COUNT(*) FROM films",
			"Query executed: SELECT COUNT(*) FROM films\nResult: 5"),
	}
}

func TestNewTranscriptStoreWithDir(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewTranscriptStoreWithDir(filepath.Join(tempDir, "transcripts"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if store.MaxTranscripts != 50 {
		t.Errorf("MaxTranscripts = %d, want 50", store.MaxTranscripts)
	}

	info, err := os.Stat(store.BaseDir)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("directory permissions = %o, want 0700", perm)
	}
}

func TestTranscriptStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	tr := NewTranscript("sess_20250101_120000", "qwen2.5-coder:14b", "films.db", sampleRecords())

	id, err := store.Save(tr)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected non-empty ID")
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ID != id {
		t.Errorf("Loaded ID = %q, want %q", loaded.ID, id)
	}
	if loaded.SessionID != "sess_20250101_120000" {
		t.Errorf("Loaded SessionID = %q, want %q", loaded.SessionID, "sess_20250101_120000")
	}
	if loaded.Model != "qwen2.5-coder:14b" {
		t.Errorf("Loaded Model = %q, want %q", loaded.Model, "qwen2.5-coder:14b")
	}
	if len(loaded.Records) != 3 {
		t.Fatalf("Loaded record count = %d, want 3", len(loaded.Records))
	}
	if loaded.Records[2].Role != model.RoleTool {
		t.Errorf("Records[2].Role = %q, want %q", loaded.Records[2].Role, model.RoleTool)
	}
	if loaded.Records[2].ToolQuery != "SELECT COUNT(*) FROM films" {
		t.Errorf("Records[2].ToolQuery = %q, want the original query", loaded.Records[2].ToolQuery)
	}
	if loaded.CreatedAt.IsZero() {
		t.Error("CreatedAt should be backfilled on first save")
	}

	// SECURITY: transcript files are private to the owner.
	info, err := os.Stat(filepath.Join(store.BaseDir, id+".json"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestTranscriptStore_SaveOverwritesInPlace(t *testing.T) {
	store := newTestStore(t)

	tr := NewTranscript("sess_a", "m", "", sampleRecords())
	id, err := store.Save(tr)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tr.Records = append(tr.Records, model.NewUserRecord("and how many notes?"))
	again, err := store.Save(tr)
	if err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	if again != id {
		t.Errorf("Second save ID = %q, want the original %q", again, id)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("List count = %d, want 1 (overwrite, not duplicate)", len(metas))
	}
	if metas[0].RecordCount != 4 {
		t.Errorf("RecordCount = %d, want 4", metas[0].RecordCount)
	}
}

func TestTranscriptStore_SummaryGeneration(t *testing.T) {
	store := newTestStore(t)

	t.Run("from first user record", func(t *testing.T) {
		records := []model.Record{
			model.NewSystemRecord("Session started"),
			model.NewUserRecord("line one\nline two"),
		}
		id, err := store.Save(NewTranscript("s", "m", "", records))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, _ := store.Load(id)
		if loaded.Summary != "line one line two" {
			t.Errorf("Summary = %q, want newlines flattened", loaded.Summary)
		}
	})

	t.Run("long content truncated", func(t *testing.T) {
		long := strings.Repeat("x", 80)
		id, err := store.Save(NewTranscript("s", "m", "", []model.Record{model.NewUserRecord(long)}))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, _ := store.Load(id)
		if got := len([]rune(loaded.Summary)); got != 50 {
			t.Errorf("Summary length = %d runes, want 50", got)
		}
		if !strings.HasSuffix(loaded.Summary, "...") {
			t.Errorf("Summary = %q, want ... suffix", loaded.Summary)
		}
	})

	t.Run("no user records", func(t *testing.T) {
		id, err := store.Save(NewTranscript("s", "m", "", nil))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, _ := store.Load(id)
		if loaded.Summary != "New conversation" {
			t.Errorf("Summary = %q, want %q", loaded.Summary, "New conversation")
		}
	})
}

func TestTranscriptStore_LoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("nonexistent-id")
	if !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Expected ErrTranscriptNotFound, got %v", err)
	}
}

func TestTranscriptStore_List(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(NewTranscript("sess_1", "m", "", []model.Record{model.NewUserRecord("oldest question")}))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	second, err := store.Save(NewTranscript("sess_2", "m", "", []model.Record{model.NewUserRecord("newest question")}))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List count = %d, want 2", len(metas))
	}
	if metas[0].ID != second || metas[1].ID != first {
		t.Errorf("List order = [%s, %s], want newest first", metas[0].ID, metas[1].ID)
	}
	if metas[0].Preview != "newest question" {
		t.Errorf("Preview = %q, want %q", metas[0].Preview, "newest question")
	}
}

func TestTranscriptStore_ListSkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(NewTranscript("sess_ok", "m", "", sampleRecords())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	corrupt := filepath.Join(store.BaseDir, "broken.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("List count = %d, want 1 (corrupt file skipped)", len(metas))
	}
}

func TestTranscriptStore_ListEmptyDir(t *testing.T) {
	store := newTestStore(t)

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("List count = %d, want 0", len(metas))
	}
}

func TestTranscriptStore_LoadByIndex(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(NewTranscript("sess_old", "m", "", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := store.Save(NewTranscript("sess_new", "m", "", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tr, err := store.LoadByIndex(0)
	if err != nil {
		t.Fatalf("LoadByIndex failed: %v", err)
	}
	if tr.SessionID != "sess_new" {
		t.Errorf("LoadByIndex(0).SessionID = %q, want the most recent", tr.SessionID)
	}

	if _, err := store.LoadByIndex(5); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("LoadByIndex(5) error = %v, want ErrTranscriptNotFound", err)
	}
	if _, err := store.LoadByIndex(-1); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("LoadByIndex(-1) error = %v, want ErrTranscriptNotFound", err)
	}
}

func TestTranscriptStore_EnforceLimit(t *testing.T) {
	store := newTestStore(t)
	store.MaxTranscripts = 2

	oldest, err := store.Save(NewTranscript("sess_1", "m", "", nil))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := store.Save(NewTranscript("sess_2", "m", "", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := store.Save(NewTranscript("sess_3", "m", "", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List count = %d, want 2 after pruning", len(metas))
	}
	for _, meta := range metas {
		if meta.ID == oldest {
			t.Error("the oldest transcript should have been pruned")
		}
	}
}

func TestTranscriptStore_Search(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(NewTranscript("s1", "m", "", []model.Record{model.NewUserRecord("top rental categories")})); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save(NewTranscript("s2", "m", "", []model.Record{model.NewUserRecord("actor payroll report")})); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	results, err := store.Search("RENTAL")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search results = %d, want 1", len(results))
	}
	if !strings.Contains(results[0].Summary, "rental") {
		t.Errorf("Search hit summary = %q, want the rental transcript", results[0].Summary)
	}

	none, err := store.Search("blockchain")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Search results = %d, want 0", len(none))
	}
}

func TestTranscriptStore_Delete(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save(NewTranscript("s", "m", "", sampleRecords()))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(id); !errors.Is(err, ErrTranscriptNotFound) {
		t.Error("Transcript should not exist after delete")
	}
}

func TestTranscriptStore_DeleteNotFound(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete("nonexistent-id"); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Expected ErrTranscriptNotFound, got %v", err)
	}
}

func TestTranscriptStore_Clear(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(NewTranscript("s1", "m", "", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save(NewTranscript("s2", "m", "", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("List count = %d, want 0 after clear", len(metas))
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestTranscript_ExportMarkdown(t *testing.T) {
	tr := NewTranscript("sess_20250101_120000", "qwen2.5-coder:14b", "films.db", sampleRecords())
	tr.CreatedAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	md := tr.ExportMarkdown()

	if !strings.Contains(md, "# Session sess_20250101_120000") {
		t.Error("Markdown should carry the session heading")
	}
	if !strings.Contains(md, "Model: qwen2.5-coder:14b") {
		t.Error("Markdown should carry the model name")
	}
	if !strings.Contains(md, "**You**") {
		t.Error("Markdown should label user turns")
	}
	if !strings.Contains(md, "**Assistant**") {
		t.Error("Markdown should label assistant turns")
	}
	if !strings.Contains(md, "```sql\nSELECT COUNT(*) FROM films\n```") {
		t.Error("Markdown should fence tool queries as SQL")
	}
}

func TestTranscript_Preview(t *testing.T) {
	tr := NewTranscript("s", "m", "", sampleRecords())
	if got := tr.Preview(); got != "how many films are there?" {
		t.Errorf("Preview = %q, want the first user record", got)
	}

	empty := NewTranscript("s", "m", "", nil)
	if got := empty.Preview(); got != "" {
		t.Errorf("Preview = %q, want empty", got)
	}
}

func TestFormatTranscriptList(t *testing.T) {
	if got := FormatTranscriptList(nil); got != "No saved sessions." {
		t.Errorf("FormatTranscriptList(nil) = %q, want %q", got, "No saved sessions.")
	}

	metas := []TranscriptMeta{
		{
			ID:          "3e8f0a12-9b7c-4d1e-8f2a-111122223333",
			Summary:     "top rental categories",
			UpdatedAt:   time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC),
			RecordCount: 6,
		},
	}
	got := FormatTranscriptList(metas)

	if !strings.Contains(got, "3e8f0a12") {
		t.Error("listing should show the ID prefix")
	}
	if strings.Contains(got, "3e8f0a12-9b7c") {
		t.Error("listing should truncate long IDs")
	}
	if !strings.Contains(got, "2025-01-02 15:04") {
		t.Error("listing should show the save time")
	}
	if !strings.Contains(got, "top rental categories") {
		t.Error("listing should show the summary")
	}
}
