// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for qbot.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.qbot/config.toml
//   - ~/.qbot/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/AnthusAI/sqlbot-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete qbot configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Database configuration
	Database DatabaseConfig `toml:"database" json:"database"`

	// Agent (Ollama) configuration
	Agent AgentConfig `toml:"agent" json:"agent"`

	// Conversation memory configuration
	Memory MemoryConfig `toml:"memory" json:"memory"`

	// SQL safety configuration
	Safety SafetyConfig `toml:"safety" json:"safety"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// REPL history configuration
	History HistoryConfig `toml:"history" json:"history"`

	// Transcript storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// DatabaseConfig contains the SQLite database configuration.
type DatabaseConfig struct {
	// Path is the SQLite database file to query.
	Path string `toml:"path" json:"path"`
	// MaxRows caps how many rows a single query may return.
	MaxRows int `toml:"max_rows" json:"max_rows"`
	// QueryTimeoutSecs bounds a single query's execution time.
	QueryTimeoutSecs int `toml:"query_timeout_secs" json:"query_timeout_secs"`
	// WatchForChanges reloads cached schema info when the database file
	// changes on disk.
	WatchForChanges bool `toml:"watch_for_changes" json:"watch_for_changes"`
}

// AgentConfig contains the Ollama agent configuration.
type AgentConfig struct {
	// OllamaURL is the URL of the Ollama server.
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`
	// Model is the model used for conversation turns.
	Model string `toml:"model" json:"model"`
	// TimeoutSecs bounds a single agent invocation.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is how many times a failed invocation is retried.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RateLimitPerMinute throttles agent calls. 0 disables the limiter.
	RateLimitPerMinute int `toml:"rate_limit_per_minute" json:"rate_limit_per_minute"`
	// SystemPrompt overrides the built-in system prompt when non-empty.
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
}

// MemoryConfig contains conversation buffer bounds.
type MemoryConfig struct {
	// MaxMessages caps how many records the conversation buffer keeps.
	MaxMessages int `toml:"max_messages" json:"max_messages"`
	// MaxContentLength caps a single record's content length in runes.
	MaxContentLength int `toml:"max_content_length" json:"max_content_length"`
}

// SafetyConfig contains SQL safety gates. These are session-scoped policy
// inputs, never process-wide flags; the session copies them into its policy.
type SafetyConfig struct {
	// ReadOnly blocks all dangerous operations outright.
	ReadOnly bool `toml:"read_only" json:"read_only"`
	// ConfirmBeforeRun asks before executing any statement.
	ConfirmBeforeRun bool `toml:"confirm_before_run" json:"confirm_before_run"`
	// AllowDangerous skips the confirmation normally forced for dangerous
	// operations. ReadOnly still wins when both are set.
	AllowDangerous bool `toml:"allow_dangerous" json:"allow_dangerous"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders assistant responses through glamour when true.
	Markdown bool `toml:"markdown" json:"markdown"`
	// ShowTiming appends query elapsed time to result output.
	ShowTiming bool `toml:"show_timing" json:"show_timing"`
}

// HistoryConfig contains REPL input history configuration.
type HistoryConfig struct {
	// File is the history file path (empty = ~/.qbot/history).
	File string `toml:"file" json:"file"`
	// MaxEntries caps how many input lines are kept.
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// StorageConfig contains transcript storage configuration.
type StorageConfig struct {
	// MaxTranscripts caps how many saved transcripts are kept; oldest are
	// pruned first. 0 disables pruning.
	MaxTranscripts int `toml:"max_transcripts" json:"max_transcripts"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Database: DatabaseConfig{
			Path:             "qbot.db",
			MaxRows:          500,
			QueryTimeoutSecs: 30,
			WatchForChanges:  true,
		},

		Agent: AgentConfig{
			OllamaURL:          "http://127.0.0.1:11434",
			Model:              "qwen2.5-coder:14b",
			TimeoutSecs:        120,
			MaxRetries:         2,
			RateLimitPerMinute: 30,
			SystemPrompt:       "",
		},

		Memory: MemoryConfig{
			MaxMessages:      20,
			MaxContentLength: 2000,
		},

		Safety: SafetyConfig{
			ReadOnly:         false,
			ConfirmBeforeRun: true,
			AllowDangerous:   false,
		},

		UI: UIConfig{
			Theme:      "dark",
			Markdown:   true,
			ShowTiming: true,
		},

		History: HistoryConfig{
			File:       "",
			MaxEntries: 100,
		},

		Storage: StorageConfig{
			MaxTranscripts: 50,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the qbot configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".qbot"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the REPL history file path, honoring the configured
// override.
func (c *Config) HistoryPath() (string, error) {
	if c.History.File != "" {
		return c.History.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// TranscriptsDir returns the directory where transcripts are saved.
func TranscriptsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "transcripts"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err // File doesn't exist or not accessible
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last, before validation.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	// Apply environment overrides to defaults
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems; warn, don't fail.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is detected by extension; anything else parses as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. Bool fields keep
// whatever the decode produced; callers that need default-true bools must
// start from Default() before decoding, which Load does.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Database
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaults.Database.Path
	}
	if cfg.Database.MaxRows == 0 {
		cfg.Database.MaxRows = defaults.Database.MaxRows
	}
	if cfg.Database.QueryTimeoutSecs == 0 {
		cfg.Database.QueryTimeoutSecs = defaults.Database.QueryTimeoutSecs
	}

	// Agent
	if cfg.Agent.OllamaURL == "" {
		cfg.Agent.OllamaURL = defaults.Agent.OllamaURL
	}
	if cfg.Agent.Model == "" {
		cfg.Agent.Model = defaults.Agent.Model
	}
	if cfg.Agent.TimeoutSecs == 0 {
		cfg.Agent.TimeoutSecs = defaults.Agent.TimeoutSecs
	}

	// Memory
	if cfg.Memory.MaxMessages == 0 {
		cfg.Memory.MaxMessages = defaults.Memory.MaxMessages
	}
	if cfg.Memory.MaxContentLength == 0 {
		cfg.Memory.MaxContentLength = defaults.Memory.MaxContentLength
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	// History
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = defaults.History.MaxEntries
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# qbot configuration file")
	fmt.Fprintln(file, "# Generated by qbot - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Database
	if c.Database.MaxRows < 1 || c.Database.MaxRows > 100000 {
		errs = append(errs, ValidationError{
			Field:   "database.max_rows",
			Message: fmt.Sprintf("must be 1-100000, got %d", c.Database.MaxRows),
		})
	}
	if c.Database.QueryTimeoutSecs < 1 || c.Database.QueryTimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "database.query_timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Database.QueryTimeoutSecs),
		})
	}

	// Agent
	if c.Agent.OllamaURL != "" {
		if _, err := url.Parse(c.Agent.OllamaURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "agent.ollama_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}
	if c.Agent.TimeoutSecs < 1 || c.Agent.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "agent.timeout_secs",
			Message: fmt.Sprintf("must be 1-3600, got %d", c.Agent.TimeoutSecs),
		})
	}
	if c.Agent.MaxRetries < 0 || c.Agent.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "agent.max_retries",
			Message: fmt.Sprintf("must be 0-10, got %d", c.Agent.MaxRetries),
		})
	}
	if c.Agent.RateLimitPerMinute < 0 || c.Agent.RateLimitPerMinute > 600 {
		errs = append(errs, ValidationError{
			Field:   "agent.rate_limit_per_minute",
			Message: fmt.Sprintf("must be 0-600, got %d", c.Agent.RateLimitPerMinute),
		})
	}

	// Memory
	if c.Memory.MaxMessages < 1 || c.Memory.MaxMessages > 1000 {
		errs = append(errs, ValidationError{
			Field:   "memory.max_messages",
			Message: fmt.Sprintf("must be 1-1000, got %d", c.Memory.MaxMessages),
		})
	}
	if c.Memory.MaxContentLength < 100 {
		errs = append(errs, ValidationError{
			Field:   "memory.max_content_length",
			Message: fmt.Sprintf("must be at least 100, got %d", c.Memory.MaxContentLength),
		})
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// History
	if c.History.MaxEntries < 0 || c.History.MaxEntries > 10000 {
		errs = append(errs, ValidationError{
			Field:   "history.max_entries",
			Message: fmt.Sprintf("must be 0-10000, got %d", c.History.MaxEntries),
		})
	}

	// Storage
	if c.Storage.MaxTranscripts < 0 || c.Storage.MaxTranscripts > 1000 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_transcripts",
			Message: fmt.Sprintf("must be 0-1000, got %d", c.Storage.MaxTranscripts),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - QBOT_DB_PATH: overrides database.path
//   - QBOT_MAX_ROWS: overrides database.max_rows
//   - QBOT_OLLAMA_URL: overrides agent.ollama_url
//   - QBOT_MODEL: overrides agent.model
//   - QBOT_SYSTEM_PROMPT: overrides agent.system_prompt
//   - QBOT_READONLY: set to "1" or "true" to force read-only sessions
//   - QBOT_CONFIRM: overrides safety.confirm_before_run
//   - QBOT_ALLOW_DANGEROUS: overrides safety.allow_dangerous
//   - QBOT_MAX_MESSAGES: overrides memory.max_messages
//   - QBOT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if path := os.Getenv("QBOT_DB_PATH"); path != "" {
		c.Database.Path = path
	}

	if rows := os.Getenv("QBOT_MAX_ROWS"); rows != "" {
		if n, err := strconv.Atoi(rows); err == nil {
			c.Database.MaxRows = n
		}
	}

	if url := os.Getenv("QBOT_OLLAMA_URL"); url != "" {
		c.Agent.OllamaURL = url
	}

	if model := os.Getenv("QBOT_MODEL"); model != "" {
		c.Agent.Model = model
	}

	if prompt := os.Getenv("QBOT_SYSTEM_PROMPT"); prompt != "" {
		c.Agent.SystemPrompt = prompt
	}

	if readonly := os.Getenv("QBOT_READONLY"); readonly != "" {
		c.Safety.ReadOnly = envBool(readonly)
	}

	if confirm := os.Getenv("QBOT_CONFIRM"); confirm != "" {
		c.Safety.ConfirmBeforeRun = envBool(confirm)
	}

	if dangerous := os.Getenv("QBOT_ALLOW_DANGEROUS"); dangerous != "" {
		c.Safety.AllowDangerous = envBool(dangerous)
	}

	if max := os.Getenv("QBOT_MAX_MESSAGES"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			c.Memory.MaxMessages = n
		}
	}

	if theme := os.Getenv("QBOT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// envBool interprets an environment value as a boolean toggle.
func envBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "safety.read_only").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "database.max_rows").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(envBool(strVal))
			return nil
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"database.path",
		"database.max_rows",
		"database.query_timeout_secs",
		"database.watch_for_changes",
		"agent.ollama_url",
		"agent.model",
		"agent.timeout_secs",
		"agent.max_retries",
		"agent.rate_limit_per_minute",
		"agent.system_prompt",
		"memory.max_messages",
		"memory.max_content_length",
		"safety.read_only",
		"safety.confirm_before_run",
		"safety.allow_dangerous",
		"ui.theme",
		"ui.markdown",
		"ui.show_timing",
		"history.file",
		"history.max_entries",
		"storage.max_transcripts",
	}
}

// String returns a string representation of the config for debugging. The
// config carries no secrets, so nothing needs redacting.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
