// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for qbot.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - DatabaseConfig: SQLite database and query limits
//   - AgentConfig: Ollama endpoint, model, and throttling
//   - SafetyConfig: SQL safety gates (session policy inputs)
//   - MemoryConfig: conversation buffer bounds
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (QBOT_*)
//   - ~/.qbot/config.toml
//   - ~/.qbot/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Agent.Model
//	dbPath := cfg.Database.Path
//
// There is no process-global config instance. main loads one Config and
// hands it to the components that need it.
package config
