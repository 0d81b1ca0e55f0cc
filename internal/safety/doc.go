// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package safety classifies SQL statements before they reach the database.
//
// Classification is purely textual: comments and string-literal bodies are
// masked, the remainder is normalized and uppercased, and a fixed keyword set
// is scanned as whole words. DANGEROUS covers data- and schema-modifying
// operations (INSERT, UPDATE, DELETE, DROP, CREATE, ALTER, TRUNCATE, MERGE,
// REPLACE, GRANT, REVOKE); WARNING covers maintenance operations (BACKUP,
// RESTORE); everything else is SAFE.
//
// Execution gating is separate from classification: Policy holds the
// session's read-only, confirm-before-run, and allow-dangerous switches and
// turns an Analysis into a Decision. Policies are plain values owned by a
// session, never process-wide flags.
package safety
