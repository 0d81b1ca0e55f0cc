// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package safety classifies SQL statements before they reach the database.
package safety

import (
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// SAFETY LEVELS
// =============================================================================

// Level represents the risk classification of a SQL statement.
type Level int

const (
	LevelSafe Level = iota
	LevelWarning
	LevelDangerous
)

// Color constants for safety level display
const (
	ColorSafe      = lipgloss.Color("42")  // Green
	ColorWarning   = lipgloss.Color("214") // Yellow/Orange
	ColorDangerous = lipgloss.Color("196") // Red
)

// String returns the string representation of the safety level.
func (l Level) String() string {
	switch l {
	case LevelSafe:
		return "SAFE"
	case LevelWarning:
		return "WARNING"
	case LevelDangerous:
		return "DANGEROUS"
	default:
		return "SAFE"
	}
}

// Color returns the appropriate lipgloss color for the safety level.
func (l Level) Color() lipgloss.Color {
	switch l {
	case LevelSafe:
		return ColorSafe
	case LevelWarning:
		return ColorWarning
	case LevelDangerous:
		return ColorDangerous
	default:
		return ColorSafe
	}
}

// =============================================================================
// KEYWORD SETS
// =============================================================================

// dangerousPattern matches data- and schema-modifying operations as whole
// words. Matching runs against masked, uppercased SQL, so keywords hidden in
// comments or string literals never trigger.
var dangerousPattern = regexp.MustCompile(
	`\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|MERGE|REPLACE|GRANT|REVOKE)\b`)

// warningPattern matches maintenance operations that deserve a caution but
// not a block.
var warningPattern = regexp.MustCompile(`\b(BACKUP|RESTORE)\b`)

// Masking patterns applied before keyword scanning. Literal bodies are
// replaced but delimiters kept, matching how the statement would parse.
var (
	lineCommentPattern  = regexp.MustCompile(`--[^\n]*`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
	singleQuotePattern  = regexp.MustCompile(`'[^']*'`)
	doubleQuotePattern  = regexp.MustCompile(`"[^"]*"`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// =============================================================================
// ANALYSIS
// =============================================================================

// Analysis is the result of classifying one SQL statement.
type Analysis struct {
	// Level is the overall classification.
	Level Level

	// Operations lists the dangerous keywords found, sorted and deduplicated.
	Operations []string

	// Warnings lists the warning-level keywords found.
	Warnings []string

	// Message describes the classification for display.
	Message string
}

// IsReadOnly reports whether the statement touches no data or schema.
func (a Analysis) IsReadOnly() bool {
	return a.Level != LevelDangerous
}

// SafeForExecution reports whether the statement may run. Dangerous
// statements run only when the caller has explicitly enabled them.
func (a Analysis) SafeForExecution(allowDangerous bool) bool {
	if a.Level == LevelDangerous {
		return allowDangerous
	}
	return true
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classify inspects a SQL string and reports which operation keywords appear
// outside comments and string literals. It is a pure function: malformed SQL
// simply yields whatever keywords are textually present, and empty input
// classifies as safe.
func Classify(sql string) Analysis {
	if strings.TrimSpace(sql) == "" {
		return Analysis{Level: LevelSafe, Message: "Empty query"}
	}

	masked := maskLiterals(normalizeForScan(sql))
	masked = strings.ToUpper(whitespacePattern.ReplaceAllString(masked, " "))

	ops := uniqueSorted(dangerousPattern.FindAllString(masked, -1))
	if len(ops) > 0 {
		return Analysis{
			Level:      LevelDangerous,
			Operations: ops,
			Message:    "Dangerous operations detected: " + strings.Join(ops, ", "),
		}
	}

	warns := uniqueSorted(warningPattern.FindAllString(masked, -1))
	if len(warns) > 0 {
		return Analysis{
			Level:    LevelWarning,
			Warnings: warns,
			Message:  "Maintenance operations detected: " + strings.Join(warns, ", "),
		}
	}

	return Analysis{Level: LevelSafe, Message: "Read-only query"}
}

// maskLiterals strips comments, then blanks the bodies of single- and
// double-quoted literals so keywords inside data never count.
func maskLiterals(sql string) string {
	masked := lineCommentPattern.ReplaceAllString(sql, "")
	masked = blockCommentPattern.ReplaceAllString(masked, "")
	masked = singleQuotePattern.ReplaceAllString(masked, "''")
	masked = doubleQuotePattern.ReplaceAllString(masked, `""`)
	return masked
}

// normalizeForScan folds compatibility forms (fullwidth letters and friends)
// so keyword detection cannot be bypassed with Unicode substitution.
func normalizeForScan(s string) string {
	t := transform.Chain(norm.NFKC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		return s // Fall back to original on error
	}
	return normalized
}

// uniqueSorted deduplicates and sorts keyword matches for stable output.
func uniqueSorted(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
