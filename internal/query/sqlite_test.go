// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query executes SQL statements against the session database.
package query

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestDB creates a throwaway SQLite database with a small films table.
func newTestDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE films (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			year INTEGER
		)`,
		`INSERT INTO films (id, title, year) VALUES
			(1, 'Alien', 1979),
			(2, 'Blade Runner', 1982),
			(3, 'Brazil', 1985),
			(4, 'Contact', 1997),
			(5, 'Dune', 2021)`,
		`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed database: %v", err)
		}
	}

	return path
}

// newTestExecutor opens an executor over a seeded database. The watcher is
// disabled to keep tests deterministic.
func newTestExecutor(t *testing.T, opts Options) *SQLiteExecutor {
	t.Helper()

	opts.WatchForChanges = false
	e, err := Open(newTestDB(t), opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// TestOpen_MissingFile tests that opening a nonexistent database fails
// instead of silently creating an empty one.
func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"), DefaultOptions())
	if err == nil {
		t.Fatal("Open() on missing file should return error")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Open() error = %v, want database-missing error", err)
	}
}

// TestExecute_Select tests a basic row-returning statement.
func TestExecute_Select(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	res := e.Execute(context.Background(), "SELECT id, title FROM films ORDER BY id")

	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Error)
	}
	if len(res.Columns) != 2 || res.Columns[0] != "id" || res.Columns[1] != "title" {
		t.Errorf("Columns = %v, want [id title]", res.Columns)
	}
	if len(res.Rows) != 5 {
		t.Fatalf("len(Rows) = %d, want 5", len(res.Rows))
	}
	if title := res.Rows[0]["title"]; title != "Alien" {
		t.Errorf("Rows[0][title] = %v, want 'Alien'", title)
	}
	if res.Truncated {
		t.Error("Truncated = true, want false for a result under the cap")
	}
	if res.Elapsed <= 0 {
		t.Error("Elapsed should be positive")
	}
}

// TestExecute_SyntaxError tests that a bad statement comes back as a
// failed result, not an error or panic.
func TestExecute_SyntaxError(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	res := e.Execute(context.Background(), "SELEKT * FROM films")

	if res.Success {
		t.Fatal("Execute() with bad SQL should not succeed")
	}
	if res.Error == "" {
		t.Error("failed result should carry an error message")
	}
}

// TestExecute_RowCap tests that results are capped and flagged.
func TestExecute_RowCap(t *testing.T) {
	e := newTestExecutor(t, Options{MaxRows: 3})

	res := e.Execute(context.Background(), "SELECT * FROM films")

	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Error)
	}
	if len(res.Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3 (capped)", len(res.Rows))
	}
	if !res.Truncated {
		t.Error("Truncated = false, want true when the cap fires")
	}
}

// TestExecute_Modification tests a data-modifying statement.
func TestExecute_Modification(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	res := e.Execute(context.Background(), "INSERT INTO notes (body) VALUES ('hello')")

	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Error)
	}
	if res.RowsAffected != 1 {
		t.Errorf("RowsAffected = %d, want 1", res.RowsAffected)
	}
	if len(res.Rows) != 0 {
		t.Errorf("len(Rows) = %d, want 0 for a modification", len(res.Rows))
	}
}

// TestExecute_EmptyStatement tests that whitespace-only input fails fast.
func TestExecute_EmptyStatement(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	res := e.Execute(context.Background(), "   \n  ")

	if res.Success {
		t.Fatal("Execute() with empty input should not succeed")
	}
	if res.Error != "empty statement" {
		t.Errorf("Error = %q, want 'empty statement'", res.Error)
	}
}

// TestExecute_TrailingSemicolon tests that a trailing semicolon is accepted.
func TestExecute_TrailingSemicolon(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	res := e.Execute(context.Background(), "SELECT COUNT(*) AS n FROM films;")

	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Error)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(res.Rows))
	}
}

// TestExecute_NullValues tests that NULLs survive the scan and render as
// the literal NULL.
func TestExecute_NullValues(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	if res := e.Execute(context.Background(), "INSERT INTO notes (body) VALUES (NULL)"); !res.Success {
		t.Fatalf("seed insert failed: %s", res.Error)
	}

	res := e.Execute(context.Background(), "SELECT body FROM notes")
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Error)
	}
	if got := FormatValue(res.Rows[0]["body"]); got != "NULL" {
		t.Errorf("FormatValue(nil cell) = %q, want 'NULL'", got)
	}
}

// TestTables_SortedAndCached tests table listing and cache invalidation.
func TestTables_SortedAndCached(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())
	ctx := context.Background()

	tables, err := e.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if len(tables) != 2 || tables[0] != "films" || tables[1] != "notes" {
		t.Fatalf("Tables() = %v, want [films notes]", tables)
	}

	// A new table is invisible until the cache is invalidated.
	if res := e.Execute(ctx, "CREATE TABLE extra (id INTEGER)"); !res.Success {
		t.Fatalf("create table failed: %s", res.Error)
	}

	tables, err = e.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if len(tables) != 2 {
		t.Errorf("Tables() after create = %v, want cached 2-table list", tables)
	}

	e.invalidateTables()

	tables, err = e.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if len(tables) != 3 {
		t.Errorf("Tables() after invalidate = %v, want 3 tables", tables)
	}
}

// TestTableInfo tests column metadata and row counting.
func TestTableInfo(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	info, err := e.TableInfo(context.Background(), "films")
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}

	if info.Name != "films" {
		t.Errorf("Name = %q, want 'films'", info.Name)
	}
	if info.RowCount != 5 {
		t.Errorf("RowCount = %d, want 5", info.RowCount)
	}
	if len(info.Columns) != 3 {
		t.Fatalf("len(Columns) = %d, want 3", len(info.Columns))
	}

	id := info.Columns[0]
	if id.Name != "id" || !id.PK {
		t.Errorf("Columns[0] = %+v, want primary key 'id'", id)
	}

	title := info.Columns[1]
	if title.Name != "title" || !title.NotNull {
		t.Errorf("Columns[1] = %+v, want NOT NULL 'title'", title)
	}
}

// TestTableInfo_UnknownTable tests the identifier validation gate.
func TestTableInfo_UnknownTable(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	_, err := e.TableInfo(context.Background(), "films; DROP TABLE films")
	if err == nil {
		t.Fatal("TableInfo() with a bogus name should return error")
	}
	if !strings.Contains(err.Error(), "unknown table") {
		t.Errorf("error = %v, want unknown-table error", err)
	}
}

// TestPreview tests the bounded table preview.
func TestPreview(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	res := e.Preview(context.Background(), "films", 2)

	if !res.Success {
		t.Fatalf("Preview() failed: %s", res.Error)
	}
	if len(res.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2", len(res.Rows))
	}
}

// TestPreview_UnknownTable tests that preview refuses unvalidated names.
func TestPreview_UnknownTable(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())

	res := e.Preview(context.Background(), "no_such_table", 5)

	if res.Success {
		t.Fatal("Preview() of unknown table should fail")
	}
	if !strings.Contains(res.Error, "unknown table") {
		t.Errorf("Error = %q, want unknown-table message", res.Error)
	}
}

// TestExecute_Timeout tests that a slow query is cut off by the per-query
// timeout and reported as such.
func TestExecute_Timeout(t *testing.T) {
	e := newTestExecutor(t, Options{QueryTimeout: 50 * time.Millisecond})

	// A cartesian self-join large enough to outlive 50ms.
	res := e.Execute(context.Background(),
		`WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x+1 FROM c LIMIT 10000000)
		 SELECT COUNT(*) FROM c`)

	if res.Success {
		t.Skip("query finished under the timeout on this machine")
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Errorf("Error = %q, want timeout message", res.Error)
	}
}

// TestReturnsRows covers statement-head classification.
func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"  select * from t", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"PRAGMA table_info(films)", true},
		{"EXPLAIN SELECT 1", true},
		{"VALUES (1), (2)", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET x = 1", false},
		{"DELETE FROM t", false},
		{"CREATE TABLE t (id INTEGER)", false},
		{"DROP TABLE t", false},
	}

	for _, tt := range tests {
		if got := returnsRows(tt.sql); got != tt.want {
			t.Errorf("returnsRows(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}

// TestResult_Text tests the plain-text rendering fed to the agent.
func TestResult_Text(t *testing.T) {
	res := &Result{
		Success: true,
		Columns: []string{"id", "title"},
		Rows: []map[string]any{
			{"id": int64(1), "title": "Alien"},
			{"id": int64(2), "title": "Brazil"},
		},
	}

	text := res.Text()

	if !strings.HasPrefix(text, "id | title\n") {
		t.Errorf("Text() = %q, want header line first", text)
	}
	if !strings.Contains(text, "1 | Alien") {
		t.Errorf("Text() = %q, want row line '1 | Alien'", text)
	}
	if !strings.Contains(text, "(2 rows)") {
		t.Errorf("Text() = %q, want row count suffix", text)
	}
}

// TestResult_Text_Failure tests error rendering.
func TestResult_Text_Failure(t *testing.T) {
	res := &Result{Success: false, Error: "no such table: nope"}

	if got := res.Text(); got != "Error: no such table: nope" {
		t.Errorf("Text() = %q, want error line", got)
	}
}

// TestResult_Text_Modification tests rows-affected rendering.
func TestResult_Text_Modification(t *testing.T) {
	res := &Result{Success: true, RowsAffected: 3}

	if got := res.Text(); got != "OK, 3 row(s) affected" {
		t.Errorf("Text() = %q, want affected-rows line", got)
	}
}

// TestFormatValue covers the display conversions.
func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "hi", "hi"},
		{"bytes", []byte("raw"), "raw"},
		{"int64", int64(42), "42"},
		{"integral float", float64(3), "3"},
		{"real float", 3.14, "3.14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestWatcher_Lifecycle tests that a watcher starts and stops cleanly.
func TestWatcher_Lifecycle(t *testing.T) {
	path := newTestDB(t)

	w, err := NewWatcher(path, 10*time.Millisecond, func() {})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
