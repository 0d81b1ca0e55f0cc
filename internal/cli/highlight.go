// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// highlight.go - SQL syntax highlighting for echoed queries.
//
// Queries shown in tool-call lines and /preview output pass through
// chroma's terminal formatter. Highlighting is cosmetic: any failure
// returns the original text.

package cli

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// HighlightSQL applies SQL syntax highlighting for terminal display.
// Returns the input unchanged when colors are disabled or highlighting
// fails.
func HighlightSQL(sql string) string {
	if !ColorsEnabled() {
		return sql
	}

	lexer := lexers.Get("sql")
	if lexer == nil {
		return sql
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return sql
	}

	iterator, err := lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		return sql
	}
	return strings.TrimRight(b.String(), "\n")
}
