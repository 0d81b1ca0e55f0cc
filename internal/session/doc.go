// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates one conversation between the operator, the
// agent, and the database.
//
// A Session ties together the conversation buffer, its display
// synchronizer, the query executor, the agent invoker, and the safety
// policy. It is the single writer for the buffer: every mutation happens on
// the goroutine that calls the session's methods. Agent exchanges run on an
// internal worker so they can be cancelled, but the worker's result is
// marshalled back before anything is appended, and a cancelled worker's
// result is discarded outright.
//
// # Key Types
//
//   - Session: conversation owner; AskAgent for agent exchanges, RunSQL
//     for direct statements
//   - Config: buffer bounds, safety policy, confirmation callback
//   - Stats: cumulative counters for /status and the exit summary
//
// # Usage
//
// Create a session and run one exchange:
//
//	sess := session.New(renderer, executor, invoker, session.DefaultConfig())
//	if err := sess.AskAgent(ctx, "how many films are longer than two hours?"); err != nil {
//	    // ErrBusy, cancellation, or a collaborator failure (already rendered)
//	}
//
// Direct SQL bypasses the agent but not the policy:
//
//	res, err := sess.RunSQL(ctx, "SELECT COUNT(*) FROM film")
//
// Cancellation aborts the in-flight exchange from any goroutine:
//
//	sess.Cancel()
package session
