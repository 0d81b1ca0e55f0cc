// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}

	if cfg.Agent.OllamaURL == "" {
		t.Error("Default config should have an Ollama URL")
	}

	if cfg.Memory.MaxMessages != 20 {
		t.Errorf("Default max_messages = %d, want 20", cfg.Memory.MaxMessages)
	}

	if cfg.Memory.MaxContentLength != 2000 {
		t.Errorf("Default max_content_length = %d, want 2000", cfg.Memory.MaxContentLength)
	}

	if !cfg.Safety.ConfirmBeforeRun {
		t.Error("Default config should confirm before running statements")
	}

	if cfg.Safety.AllowDangerous {
		t.Error("Default config should not allow dangerous operations")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.UI.Theme = "invalid" },
			wantErr: true,
		},
		{
			name:    "zero max rows",
			mutate:  func(c *Config) { c.Database.MaxRows = 0 },
			wantErr: true,
		},
		{
			name:    "excessive max rows",
			mutate:  func(c *Config) { c.Database.MaxRows = 200000 },
			wantErr: true,
		},
		{
			name:    "zero query timeout",
			mutate:  func(c *Config) { c.Database.QueryTimeoutSecs = 0 },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Agent.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "zero rate limit is valid (unlimited)",
			mutate:  func(c *Config) { c.Agent.RateLimitPerMinute = 0 },
			wantErr: false,
		},
		{
			name:    "excessive rate limit",
			mutate:  func(c *Config) { c.Agent.RateLimitPerMinute = 1000 },
			wantErr: true,
		},
		{
			name:    "zero max messages",
			mutate:  func(c *Config) { c.Memory.MaxMessages = 0 },
			wantErr: true,
		},
		{
			name:    "content length below floor",
			mutate:  func(c *Config) { c.Memory.MaxContentLength = 50 },
			wantErr: true,
		},
		{
			name:    "negative transcripts cap",
			mutate:  func(c *Config) { c.Storage.MaxTranscripts = -5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("agent.model")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "qwen2.5-coder:14b" {
		t.Errorf("Get('agent.model') = %v, want 'qwen2.5-coder:14b'", val)
	}

	if err := cfg.Set("database.max_rows", "250"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Database.MaxRows != 250 {
		t.Errorf("MaxRows after Set = %d, want 250", cfg.Database.MaxRows)
	}

	if err := cfg.Set("safety.read_only", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !cfg.Safety.ReadOnly {
		t.Error("ReadOnly after Set = false, want true")
	}

	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
}

// TestConfig_EnvOverrides tests QBOT_* environment overrides.
func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("QBOT_DB_PATH", "/tmp/override.db")
	t.Setenv("QBOT_MODEL", "llama3.1:8b")
	t.Setenv("QBOT_READONLY", "1")
	t.Setenv("QBOT_MAX_ROWS", "42")
	t.Setenv("QBOT_ALLOW_DANGEROUS", "yes")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Agent.Model != "llama3.1:8b" {
		t.Errorf("Agent.Model = %q, want 'llama3.1:8b'", cfg.Agent.Model)
	}
	if !cfg.Safety.ReadOnly {
		t.Error("Safety.ReadOnly = false, want true from QBOT_READONLY=1")
	}
	if cfg.Database.MaxRows != 42 {
		t.Errorf("Database.MaxRows = %d, want 42", cfg.Database.MaxRows)
	}
	if !cfg.Safety.AllowDangerous {
		t.Error("Safety.AllowDangerous = false, want true from QBOT_ALLOW_DANGEROUS=yes")
	}
}

// TestConfig_EnvOverrides_IgnoresBadInts tests that unparseable numeric
// overrides are ignored rather than zeroing the field.
func TestConfig_EnvOverrides_IgnoresBadInts(t *testing.T) {
	t.Setenv("QBOT_MAX_ROWS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Database.MaxRows != 500 {
		t.Errorf("Database.MaxRows = %d, want default 500", cfg.Database.MaxRows)
	}
}

// TestLoadFromPath_TOML tests loading a partial TOML file with defaults
// filled for missing fields.
func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[database]
path = "analytics.db"
max_rows = 100

[agent]
model = "mistral:7b"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Database.Path != "analytics.db" {
		t.Errorf("Database.Path = %q, want 'analytics.db'", cfg.Database.Path)
	}
	if cfg.Database.MaxRows != 100 {
		t.Errorf("Database.MaxRows = %d, want 100", cfg.Database.MaxRows)
	}
	if cfg.Agent.Model != "mistral:7b" {
		t.Errorf("Agent.Model = %q, want 'mistral:7b'", cfg.Agent.Model)
	}

	// Missing fields fall back to defaults.
	if cfg.Agent.OllamaURL != "http://127.0.0.1:11434" {
		t.Errorf("Agent.OllamaURL = %q, want default", cfg.Agent.OllamaURL)
	}
	if cfg.Memory.MaxMessages != 20 {
		t.Errorf("Memory.MaxMessages = %d, want default 20", cfg.Memory.MaxMessages)
	}
}

// TestLoadTOML_FixesPermissions tests that world-readable config files are
// tightened to 0600 on load.
func TestLoadTOML_FixesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions after load = %o, want 0600", perm)
	}
}

// TestSaveTOML_RoundTrip tests writing and re-reading a config file.
func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	original := Default()
	original.Database.Path = "roundtrip.db"
	original.Safety.ReadOnly = true

	if err := SaveTOML(original, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("saved permissions = %o, want 0600", perm)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}
	if loaded.Database.Path != "roundtrip.db" {
		t.Errorf("Database.Path = %q, want 'roundtrip.db'", loaded.Database.Path)
	}
	if !loaded.Safety.ReadOnly {
		t.Error("Safety.ReadOnly = false, want true")
	}
}

// TestHistoryPath tests history file resolution.
func TestHistoryPath(t *testing.T) {
	cfg := Default()
	cfg.History.File = "/tmp/custom-history"

	path, err := cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error = %v", err)
	}
	if path != "/tmp/custom-history" {
		t.Errorf("HistoryPath() = %q, want override", path)
	}

	cfg.History.File = ""
	path, err = cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error = %v", err)
	}
	if filepath.Base(path) != "history" {
		t.Errorf("HistoryPath() = %q, want .../history", path)
	}
}
