// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// model.go - The Bubble Tea model for the full-screen qbot UI.

package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AnthusAI/sqlbot-tui/internal/cli"
	"github.com/AnthusAI/sqlbot-tui/internal/session"
	"github.com/AnthusAI/sqlbot-tui/internal/ui/styles"
)

// State is the UI's input state.
type State int

const (
	// StateReady accepts input.
	StateReady State = iota
	// StateBusy has an agent exchange or statement in flight.
	StateBusy
)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Collaborators
	env      *cli.Env
	session  *session.Session
	renderer *Renderer

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// State
	state     State
	width     int
	height    int
	sized     bool
	statusMsg string
	quitting  bool
}

// newModel builds the initial model.
func newModel(env *cli.Env, sess *session.Session, renderer *Renderer) *Model {
	input := textinput.New()
	input.Placeholder = "Ask a question, or end with ';' to run SQL"
	input.Prompt = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render("qbot> ")
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return &Model{
		env:      env,
		session:  sess,
		renderer: renderer,
		input:    input,
		spinner:  sp,
		state:    StateReady,
	}
}

// Run launches the full-screen UI and blocks until it exits.
func Run(args cli.Args) error {
	env, err := cli.NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	renderer := NewRenderer()
	sess := session.New(renderer, env.Executor, env.Client, session.Config{
		Memory: env.MemoryConfig(),
		Policy: env.Policy(),
		// No Confirm: a blocking prompt has no place in the event loop.
		// Dangerous statements need /dangerous.
	})

	m := newModel(env, sess, renderer)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
