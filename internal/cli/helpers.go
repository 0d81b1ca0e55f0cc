// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Small formatting helpers shared across CLI commands.

package cli

import (
	"fmt"
	"strconv"
	"time"
)

// formatElapsed renders a query duration compactly: sub-second times in
// milliseconds, everything else in seconds with two decimals.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// formatNumber renders an integer with thousands separators.
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

// onOff renders a boolean toggle state for status lines.
func onOff(v bool) string {
	if v {
		return SuccessStyle.Render("on")
	}
	return DimStyle.Render("off")
}
