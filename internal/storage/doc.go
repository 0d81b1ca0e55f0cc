// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts under ~/.qbot.
//
// Transcripts are written one JSON file each with atomic writes, so a crash
// mid-save never corrupts an existing transcript. The store prunes the
// oldest transcripts past a configurable cap.
//
// # Key Types
//
//   - TranscriptStore: save, load, list, search, and delete transcripts
//   - Transcript: one serialized conversation with its records
//   - TranscriptMeta: lightweight metadata for listing
//
// # Usage
//
// Create a store and save a session's records:
//
//	store, err := storage.NewTranscriptStore()
//	id, err := store.Save(storage.NewTranscript(sessionID, model, dbPath, records))
//
// List and reload:
//
//	metas, err := store.List()
//	tr, err := store.Load(metas[0].ID)
//
// Export for sharing:
//
//	md := tr.ExportMarkdown()
//
// # Storage Location
//
// Transcripts live in ~/.qbot/transcripts/ as 0600 JSON files in a 0700
// directory.
package storage
