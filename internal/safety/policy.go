// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package safety classifies SQL statements before they reach the database.
package safety

import "strings"

// =============================================================================
// EXECUTION POLICY
// =============================================================================

// Policy holds the session's execution gates. It lives on the session (or a
// config object passed by reference), never in package-level state, so two
// sessions in one process can run with different modes.
type Policy struct {
	// ReadOnly blocks dangerous statements outright.
	ReadOnly bool

	// ConfirmBeforeRun requires user confirmation before any statement runs.
	ConfirmBeforeRun bool

	// AllowDangerous lets dangerous statements through without confirmation.
	// Takes precedence over ReadOnly (an explicit operator override).
	AllowDangerous bool
}

// Decision is the outcome of evaluating a statement against a policy.
type Decision struct {
	// Allowed reports whether the statement may run at all.
	Allowed bool

	// NeedsConfirm reports whether the caller must obtain confirmation
	// before running the statement.
	NeedsConfirm bool

	// Reason explains a block or a confirmation request for display.
	Reason string
}

// Evaluate applies the policy gates to a classified statement.
func (p Policy) Evaluate(a Analysis) Decision {
	switch a.Level {
	case LevelDangerous:
		if p.AllowDangerous {
			return Decision{Allowed: true, NeedsConfirm: p.ConfirmBeforeRun}
		}
		ops := strings.Join(a.Operations, ", ")
		if p.ReadOnly {
			return Decision{
				Allowed: false,
				Reason:  "read-only session blocks: " + ops,
			}
		}
		return Decision{
			Allowed:      true,
			NeedsConfirm: true,
			Reason:       "dangerous operations: " + ops,
		}

	case LevelWarning:
		return Decision{
			Allowed:      true,
			NeedsConfirm: p.ConfirmBeforeRun,
			Reason:       "maintenance operations: " + strings.Join(a.Warnings, ", "),
		}

	default:
		return Decision{Allowed: true, NeedsConfirm: p.ConfirmBeforeRun}
	}
}
