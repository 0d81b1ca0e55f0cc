// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Shared wiring for every qbot surface.
//
// Loads configuration, applies command-line overrides, opens the database
// executor, and builds the agent client. The REPL, the ask command, and
// the TUI all start from the same Env so flags behave identically.

package cli

import (
	"context"
	"os"
	"time"

	"github.com/AnthusAI/sqlbot-tui/internal/agent"
	"github.com/AnthusAI/sqlbot-tui/internal/config"
	"github.com/AnthusAI/sqlbot-tui/internal/memory"
	"github.com/AnthusAI/sqlbot-tui/internal/query"
	"github.com/AnthusAI/sqlbot-tui/internal/safety"
	"github.com/AnthusAI/sqlbot-tui/internal/session"
)

// Env bundles the configured collaborators a surface needs.
type Env struct {
	Config   *config.Config
	Executor *query.SQLiteExecutor
	Client   *agent.Client
}

// NewEnv loads configuration, applies flag overrides, and opens the
// collaborators.
func NewEnv(args Args) (*Env, error) {
	if args.NoColor {
		ForceColorsEnabled(false)
	}

	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, NewCommandError("qbot", "load configuration", "invalid configuration", err)
	}

	// Flags win over configuration for this invocation.
	if args.Model != "" {
		cfg.Agent.Model = args.Model
	}
	if args.DBPath != "" {
		cfg.Database.Path = args.DBPath
	}
	if args.ReadOnly {
		cfg.Safety.ReadOnly = true
	}
	if args.Preview {
		cfg.Safety.ConfirmBeforeRun = true
	}
	if args.Dangerous {
		cfg.Safety.AllowDangerous = true
	}

	if cfg.Database.Path == "" {
		return nil, NewValidationError("database", "",
			"no database configured; pass --db or set database.path in "+configHint())
	}
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		return nil, NewNotFoundError("database", cfg.Database.Path)
	}

	executor, err := query.Open(cfg.Database.Path, query.Options{
		MaxRows:         cfg.Database.MaxRows,
		QueryTimeout:    time.Duration(cfg.Database.QueryTimeoutSecs) * time.Second,
		WatchForChanges: cfg.Database.WatchForChanges,
	})
	if err != nil {
		return nil, NewCommandError("qbot", "open database", cfg.Database.Path, err)
	}

	client := agent.NewClient(&agent.ClientConfig{
		BaseURL:       cfg.Agent.OllamaURL,
		Model:         cfg.Agent.Model,
		Timeout:       time.Duration(cfg.Agent.TimeoutSecs) * time.Second,
		MaxRetries:    cfg.Agent.MaxRetries,
		RatePerMinute: cfg.Agent.RateLimitPerMinute,
	})

	// The system prompt embeds the live table list so the model grounds
	// its SQL in names that exist. Schema lookup failure is not fatal;
	// the model just works blind.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	tables, _ := executor.Tables(ctx)
	cancel()
	client.SetSystemPrompt(session.SystemPrompt(tables, cfg.Agent.SystemPrompt))

	return &Env{Config: cfg, Executor: executor, Client: client}, nil
}

// Close releases the environment's resources.
func (e *Env) Close() {
	if e.Executor != nil {
		e.Executor.Close()
	}
}

// Policy builds the session safety policy from configuration.
func (e *Env) Policy() safety.Policy {
	return safety.Policy{
		ReadOnly:         e.Config.Safety.ReadOnly,
		ConfirmBeforeRun: e.Config.Safety.ConfirmBeforeRun,
		AllowDangerous:   e.Config.Safety.AllowDangerous,
	}
}

// MemoryConfig builds the conversation buffer bounds from configuration.
func (e *Env) MemoryConfig() memory.Config {
	return memory.Config{
		MaxMessages:      e.Config.Memory.MaxMessages,
		MaxContentLength: e.Config.Memory.MaxContentLength,
	}
}

// configHint names the config file location for error messages.
func configHint() string {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "~/.qbot/config.toml"
	}
	return path
}
