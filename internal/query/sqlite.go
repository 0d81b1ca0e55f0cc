// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query executes SQL statements against the session database.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseMissing = errors.New("database file does not exist")
	ErrUnknownTable    = errors.New("unknown table")
	ErrClosed          = errors.New("executor closed")
)

// =============================================================================
// SQLITE EXECUTOR
// =============================================================================

// SQLiteExecutor implements Executor against a SQLite database file.
type SQLiteExecutor struct {
	db   *sql.DB
	path string

	maxRows int
	timeout time.Duration

	// Cached table list, invalidated when the file changes on disk.
	mu           sync.RWMutex
	tables       []string
	tablesLoaded bool
	closed       bool

	watcher *Watcher
}

// Options configures the executor.
type Options struct {
	// MaxRows caps the rows returned by a single statement. <= 0 means
	// the default of 500.
	MaxRows int

	// QueryTimeout bounds a single statement's execution. <= 0 means
	// the default of 30 seconds.
	QueryTimeout time.Duration

	// WatchForChanges invalidates the cached table list when the
	// database file changes on disk.
	WatchForChanges bool
}

// DefaultOptions returns the default executor options.
func DefaultOptions() Options {
	return Options{
		MaxRows:         500,
		QueryTimeout:    30 * time.Second,
		WatchForChanges: true,
	}
}

// Open opens a SQLite database for querying. The file must already exist:
// opening a missing path would silently create an empty database, and a
// conversational session against an empty database is never what the user
// meant.
func Open(path string, opts Options) (*SQLiteExecutor, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseMissing, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultOptions().MaxRows
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultOptions().QueryTimeout
	}

	e := &SQLiteExecutor{
		db:      db,
		path:    path,
		maxRows: opts.MaxRows,
		timeout: opts.QueryTimeout,
	}

	if opts.WatchForChanges {
		w, err := NewWatcher(path, defaultDebounce, e.invalidateTables)
		if err == nil {
			if err := w.Watch(); err == nil {
				e.watcher = w
			} else {
				w.Close()
			}
		}
		// Watcher failure is non-fatal; the cache just never invalidates.
	}

	return e, nil
}

// Path returns the database file path.
func (e *SQLiteExecutor) Path() string {
	return e.path
}

// Close releases the database handle and stops the file watcher.
func (e *SQLiteExecutor) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	if e.watcher != nil {
		e.watcher.Close()
	}
	return e.db.Close()
}

// =============================================================================
// STATEMENT EXECUTION
// =============================================================================

// Execute runs one SQL statement. Failures come back inside the Result.
func (e *SQLiteExecutor) Execute(ctx context.Context, sqlText string) *Result {
	start := time.Now()

	trimmed := trimStatement(sqlText)
	if trimmed == "" {
		return failure(start, "empty statement")
	}

	if e.isClosed() {
		return failure(start, "%v", ErrClosed)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if !returnsRows(trimmed) {
		return e.exec(ctx, start, trimmed)
	}
	return e.query(ctx, start, trimmed)
}

// exec runs a statement that modifies data instead of returning rows.
func (e *SQLiteExecutor) exec(ctx context.Context, start time.Time, sqlText string) *Result {
	res, err := e.db.ExecContext(ctx, sqlText)
	if err != nil {
		return failure(start, "%v", execError(ctx, err, e.timeout))
	}

	affected, _ := res.RowsAffected()
	return &Result{
		Success:      true,
		RowsAffected: affected,
		Elapsed:      time.Since(start),
	}
}

// query runs a row-returning statement and scans up to maxRows rows.
func (e *SQLiteExecutor) query(ctx context.Context, start time.Time, sqlText string) *Result {
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return failure(start, "%v", execError(ctx, err, e.timeout))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return failure(start, "failed to read columns: %v", err)
	}

	result := &Result{
		Success: true,
		Columns: columns,
	}

	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Rows) >= e.maxRows {
			result.Truncated = true
			break
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return failure(start, "failed to scan row: %v", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return failure(start, "%v", execError(ctx, err, e.timeout))
	}

	result.Elapsed = time.Since(start)
	return result
}

// =============================================================================
// SCHEMA INSPECTION
// =============================================================================

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name    string
	Type    string
	NotNull bool
	PK      bool
}

// TableInfo describes a table's shape and size.
type TableInfo struct {
	Name     string
	Columns  []ColumnInfo
	RowCount int64
}

// Tables returns the user tables in the database, sorted by name. The list
// is cached until the database file changes on disk.
func (e *SQLiteExecutor) Tables(ctx context.Context) ([]string, error) {
	e.mu.RLock()
	if e.tablesLoaded {
		cached := make([]string, len(e.tables))
		copy(cached, e.tables)
		e.mu.RUnlock()
		return cached, nil
	}
	e.mu.RUnlock()

	rows, err := e.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	e.mu.Lock()
	e.tables = tables
	e.tablesLoaded = true
	e.mu.Unlock()

	result := make([]string, len(tables))
	copy(result, tables)
	return result, nil
}

// TableInfo returns column details and the row count for one table.
// SECURITY: The name is validated against sqlite_master before being
// interpolated; identifiers cannot be bound as parameters.
func (e *SQLiteExecutor) TableInfo(ctx context.Context, name string) (*TableInfo, error) {
	if err := e.validateTable(ctx, name); err != nil {
		return nil, err
	}

	quoted := quoteIdent(name)

	rows, err := e.db.QueryContext(ctx, "PRAGMA table_info("+quoted+")")
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	info := &TableInfo{Name: name}
	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		info.Columns = append(info.Columns, ColumnInfo{
			Name:    colName,
			Type:    colType,
			NotNull: notNull != 0,
			PK:      pk != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}

	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&info.RowCount); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	return info, nil
}

// Preview returns the first rows of a table. The name is validated the
// same way TableInfo validates it.
func (e *SQLiteExecutor) Preview(ctx context.Context, name string, limit int) *Result {
	start := time.Now()

	if err := e.validateTable(ctx, name); err != nil {
		return failure(start, "%v", err)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > e.maxRows {
		limit = e.maxRows
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.query(ctx, start, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(name), limit))
}

// validateTable checks that name refers to an existing user table.
func (e *SQLiteExecutor) validateTable(ctx context.Context, name string) error {
	tables, err := e.Tables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

// invalidateTables drops the cached table list. Called by the file watcher.
func (e *SQLiteExecutor) invalidateTables() {
	e.mu.Lock()
	e.tables = nil
	e.tablesLoaded = false
	e.mu.Unlock()
}

func (e *SQLiteExecutor) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// =============================================================================
// HELPERS
// =============================================================================

// returnsRows reports whether the statement produces a result set. The
// check is on the leading keyword only; SQLite sorts out the rest.
func returnsRows(sqlText string) bool {
	switch firstWord(sqlText) {
	case "SELECT", "WITH", "PRAGMA", "EXPLAIN", "VALUES":
		return true
	}
	return false
}

// firstWord returns the leading keyword, uppercased. Stops at the first
// non-letter so "select(1)" still reports SELECT.
func firstWord(sqlText string) string {
	s := strings.TrimSpace(sqlText)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			continue
		}
		return strings.ToUpper(s[:i])
	}
	return strings.ToUpper(s)
}

// trimStatement strips surrounding whitespace and trailing semicolons.
func trimStatement(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}

// quoteIdent quotes a SQL identifier with double quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// normalizeValue converts driver-specific types into display-friendly ones.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// execError maps context expiry onto a clearer message than the driver's.
func execError(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("query timed out after %s", timeout)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.New("query canceled")
	}
	return err
}
