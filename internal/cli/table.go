// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// table.go - Fixed-width rendering of query results.
//
// Column widths are computed from the data with runewidth so CJK and
// other wide characters line up, capped so one long value cannot push
// the table off screen.

package cli

import (
	"fmt"
	"strings"

	"github.com/AnthusAI/sqlbot-tui/internal/query"
	"github.com/AnthusAI/sqlbot-tui/internal/util"
)

// maxColumnWidth caps a single column's display width.
const maxColumnWidth = 40

// RenderResult renders a query result as a fixed-width table, or the
// failure message for unsuccessful results.
func RenderResult(res *query.Result, showTiming bool) string {
	if res == nil {
		return ""
	}
	if !res.Success {
		return ErrorStyle.Render("[Error]") + " " + res.Error
	}

	var b strings.Builder

	switch {
	case len(res.Columns) == 0:
		// Statement produced no result set.
		if res.RowsAffected > 0 {
			b.WriteString(SuccessStyle.Render("[OK]"))
			b.WriteString(fmt.Sprintf(" %d row(s) affected", res.RowsAffected))
		} else {
			b.WriteString(SuccessStyle.Render("[OK]"))
		}
	case len(res.Rows) == 0:
		b.WriteString(DimStyle.Render("(no rows)"))
	default:
		writeTable(&b, res)
	}

	if showTiming {
		b.WriteString("\n")
		b.WriteString(DimStyle.Render(fmt.Sprintf("%d row(s) in %s",
			len(res.Rows), formatElapsed(res.Elapsed))))
		if res.Truncated {
			b.WriteString(DimStyle.Render(" (truncated)"))
		}
	} else if res.Truncated {
		b.WriteString("\n")
		b.WriteString(DimStyle.Render("(result truncated)"))
	}

	return b.String()
}

// writeTable writes the header, separator, and data rows.
func writeTable(b *strings.Builder, res *query.Result) {
	widths := columnWidths(res)

	// Header
	for i, col := range res.Columns {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(ValueStyle.Render(util.PadRight(util.TruncateWidth(col, widths[i]), widths[i])))
	}
	b.WriteString("\n")

	// Separator
	for i := range res.Columns {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(DimStyle.Render(strings.Repeat("─", widths[i])))
	}
	b.WriteString("\n")

	// Rows
	for ri, row := range res.Rows {
		if ri > 0 {
			b.WriteString("\n")
		}
		for i, col := range res.Columns {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := query.FormatValue(row[col])
			cell = strings.ReplaceAll(cell, "\n", " ")
			b.WriteString(util.PadRight(util.TruncateWidth(cell, widths[i]), widths[i]))
		}
	}
}

// columnWidths computes per-column display widths from the header and the
// data, capped at maxColumnWidth.
func columnWidths(res *query.Result) []int {
	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = util.StringWidth(col)
	}
	for _, row := range res.Rows {
		for i, col := range res.Columns {
			cell := strings.ReplaceAll(query.FormatValue(row[col]), "\n", " ")
			if w := util.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
		if widths[i] < 1 {
			widths[i] = 1
		}
	}
	return widths
}
