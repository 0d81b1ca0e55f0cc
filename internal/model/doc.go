// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation turns.
//
// This package defines the core domain types used throughout the application
// for representing the turns of a question-and-answer session with the agent.
//
// # Key Types
//
//   - Record: Single stored turn with role, content, and optional tool-call
//     identity
//   - Role: Turn role enumeration (user, assistant, system, tool)
//
// # Usage
//
// Create records for the conversation buffer:
//
//	rec := model.NewUserRecord("show me the top customers")
//	tool := model.NewToolRecord("query_0_7", "SELECT 1", "Query executed: SELECT 1\nResult: 1")
//
// Records are value objects: once stored in a buffer they are never mutated,
// and buffers hand out copies so callers cannot reach stored state.
package model
