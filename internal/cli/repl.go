// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - The interactive qbot REPL.
//
// Reads lines with history support, routes them (slash command, direct
// SQL, or a question for the agent), and keeps the conversation display
// in sync through the session. Ctrl+C during an agent exchange cancels
// it; Ctrl+C at the prompt exits.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnthusAI/sqlbot-tui/internal/config"
	"github.com/AnthusAI/sqlbot-tui/internal/query"
	"github.com/AnthusAI/sqlbot-tui/internal/session"
	"github.com/AnthusAI/sqlbot-tui/internal/storage"
)

// Repl holds the state of one interactive session.
type Repl struct {
	cfg      *config.Config
	session  *session.Session
	executor *query.SQLiteExecutor
	env      *Env

	input *ReplInput
	store *storage.TranscriptStore // lazily opened by /save and /sessions

	quiet bool
	debug bool
}

// HandleREPL runs the interactive REPL until the user exits.
func HandleREPL(args Args) error {
	env, err := NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	input := NewReplInput(env.Config)
	defer input.Close()

	renderer := NewCLIRenderer(env.Config.UI.Markdown)
	sess := session.New(renderer, env.Executor, env.Client, session.Config{
		Memory:  env.MemoryConfig(),
		Policy:  env.Policy(),
		Confirm: makeConfirmFunc(input),
	})

	r := &Repl{
		cfg:      env.Config,
		session:  sess,
		executor: env.Executor,
		env:      env,
		input:    input,
		quiet:    args.Quiet,
	}

	// The agent is optional at startup: direct SQL works without it.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	agentUp := env.Client.CheckRunning(ctx) == nil
	cancel()

	if !r.quiet {
		PrintBanner(env.Client.Model(), env.Executor.Path(), sess.Policy())
		if !agentUp {
			fmt.Fprintf(os.Stderr, "%s %s\n", WarningStyle.Render("[Warning]"),
				"Ollama is not reachable; natural-language questions will fail until it is started")
		}
	}

	// First Ctrl+C cancels an in-flight exchange. At the prompt, liner
	// reports Ctrl+C as ErrPromptAborted and the loop exits.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			sess.Cancel()
		}
	}()

	for {
		line, err := r.input.ReadInput(PromptStyle.Render("qbot> "))
		if err != nil {
			// Ctrl+C at the prompt (liner.ErrPromptAborted), Ctrl+D, or a
			// closed terminal all end the session gracefully.
			fmt.Println()
			r.printExitSummary()
			return nil
		}

		kind, payload := ClassifyInput(line)
		switch kind {
		case InputEmpty:
			continue

		case InputExit:
			r.printExitSummary()
			return nil

		case InputCommand:
			keepGoing, err := r.handleCommand(payload)
			if err != nil {
				DisplayError(err)
			}
			if !keepGoing {
				r.printExitSummary()
				return nil
			}

		case InputSQL:
			r.runSQL(payload)

		case InputAgent:
			r.askAgent(payload)
		}
	}
}

// askAgent runs one agent exchange. The session renders every outcome
// (response, error turn, cancellation notice), so failures are only
// surfaced here in debug mode.
func (r *Repl) askAgent(prompt string) {
	err := r.session.AskAgent(context.Background(), prompt)
	if err != nil && r.debug {
		fmt.Fprintf(os.Stderr, "%s exchange error: %v\n", DimStyle.Render("[debug]"), err)
	}
	fmt.Println()
}

// runSQL executes one operator statement under the session policy and
// prints the result table.
func (r *Repl) runSQL(sqlText string) {
	res, err := r.session.RunSQL(context.Background(), sqlText)
	if err != nil {
		var blocked *session.BlockedError
		switch {
		case errors.As(err, &blocked):
			fmt.Printf("%s %s\n", WarningStyle.Render("[Blocked]"), blocked.Reason)
		case errors.Is(err, session.ErrDeclined):
			fmt.Println(DimStyle.Render("[Declined]"))
		default:
			DisplayError(err)
		}
		return
	}
	fmt.Println(RenderResult(res, r.cfg.UI.ShowTiming))
}

// printExitSummary prints the session summary on exit.
func (r *Repl) printExitSummary() {
	stats := r.session.Stats()
	if !stats.HasActivity() {
		fmt.Println(InfoStyle.Render("Goodbye!"))
		return
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Session Summary"))
	fmt.Println(RenderSeparator(15))
	fmt.Printf("  %s %d\n", LabelStyle.Render("Questions:"), stats.AgentCalls)
	fmt.Printf("  %s %d direct, %d by the agent\n",
		LabelStyle.Render("Queries:"), stats.QueriesRun, stats.ToolQueries)
	if stats.Errors > 0 {
		fmt.Printf("  %s %d\n", LabelStyle.Render("Errors:"), stats.Errors)
	}
	fmt.Printf("  %s %s\n", LabelStyle.Render("Duration:"),
		session.FormatDuration(r.session.Elapsed()))
	fmt.Println()
	fmt.Println(InfoStyle.Render("Goodbye!"))
}

// transcriptStore lazily opens the transcript store; /save and /sessions
// are the only consumers and most sessions use neither.
func (r *Repl) transcriptStore() (*storage.TranscriptStore, error) {
	if r.store != nil {
		return r.store, nil
	}
	store, err := storage.NewTranscriptStore()
	if err != nil {
		return nil, WrapError(err, "opening transcript store")
	}
	if r.cfg.Storage.MaxTranscripts > 0 {
		store.MaxTranscripts = r.cfg.Storage.MaxTranscripts
	}
	r.store = store
	return store, nil
}
