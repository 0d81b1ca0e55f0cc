// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memory holds the bounded conversation buffer that backs a chat
// session.
//
// The buffer stores ordered model.Record values with two deterministic
// capacity rules: content longer than the configured cap is truncated at
// insertion time with a visible marker, and once the record cap is
// exceeded the oldest records are evicted first. Neither rule ever
// surfaces as an error.
//
// Assistant turns are run through the extract package on the way in, so a
// composite response lands as one assistant summary record followed by one
// tool record per executed query. Reads hand out defensive copies, and
// FilteredContext additionally drops records that would pollute agent
// context (whitespace-only or oversized content).
//
// The buffer lives and dies with its session. Nothing is persisted.
package memory
