// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single-shot question command.
//
// "qbot ask" runs one agent exchange and exits, for scripting and quick
// lookups. Output goes through the same renderer as the REPL, so a tool
// call and its result appear the same way either place.

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnthusAI/sqlbot-tui/internal/session"
)

// HandleAskCommand answers one question and exits.
func HandleAskCommand(args Args) error {
	env, err := NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	renderer := NewCLIRenderer(env.Config.UI.Markdown)
	sess := session.New(renderer, env.Executor, env.Client, session.Config{
		Memory: env.MemoryConfig(),
		Policy: env.Policy(),
		// No Confirm: there is no conversation to prompt in. Read-only
		// statements run; dangerous ones are blocked unless --dangerous.
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		sess.Cancel()
		cancel()
	}()

	// The session renders the response or the error turn either way; the
	// returned error only drives the exit code.
	return sess.AskAgent(ctx, args.Prompt)
}
