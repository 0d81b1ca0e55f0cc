// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// update.go - Event handling for the full-screen qbot UI.
//
// One exchange in flight at a time: while busy, input stays visible but
// submissions are refused with a status notice, and Ctrl+C cancels the
// exchange instead of quitting.

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AnthusAI/sqlbot-tui/internal/cli"
	"github.com/AnthusAI/sqlbot-tui/internal/session"
)

// Init starts the cursor blink and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles one event.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The session renders tool activity from its worker while an
		// exchange runs; each tick is a chance to show it.
		if m.state == StateBusy {
			m.refreshViewport()
		}
		return m, cmd

	case exchangeDoneMsg:
		m.state = StateReady
		m.statusMsg = ""
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.statusMsg = errStyle.Render(statusForError(msg.err))
		}
		m.refreshViewport()
		return m, nil

	case sqlDoneMsg:
		m.state = StateReady
		m.statusMsg = ""
		switch {
		case msg.err != nil:
			m.statusMsg = errStyle.Render(statusForError(msg.err))
		case msg.res != nil:
			m.renderer.AppendRaw(cli.RenderResult(msg.res, m.env.Config.UI.ShowTiming) + "\n")
		}
		m.refreshViewport()
		return m, nil

	case commandDoneMsg:
		m.state = StateReady
		if msg.err != nil {
			m.statusMsg = errStyle.Render(msg.err.Error())
		}
		if msg.quit {
			m.quitting = true
			return m, tea.Quit
		}
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.state == StateBusy {
			m.session.Cancel()
			m.statusMsg = dimStyle.Render("canceling...")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "esc", "ctrl+d":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		return m.submit()

	case "up", "down", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit routes the input line exactly like the REPL does.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	kind, payload := cli.ClassifyInput(line)
	if kind == cli.InputEmpty {
		return m, nil
	}

	if m.state == StateBusy {
		m.statusMsg = dimStyle.Render("still working on the previous question (Ctrl+C cancels)")
		return m, nil
	}

	m.input.Reset()
	m.statusMsg = ""

	switch kind {
	case cli.InputExit:
		m.quitting = true
		return m, tea.Quit

	case cli.InputCommand:
		return m.handleCommand(payload)

	case cli.InputSQL:
		m.state = StateBusy
		return m, runSQLCmd(m.session, payload)

	default: // cli.InputAgent
		m.state = StateBusy
		return m, askAgentCmd(m.session, payload)
	}
}

// resize lays the components out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}
	if !m.sized {
		m.viewport = newViewport(width, contentHeight)
		m.sized = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = contentHeight
	}
	m.input.Width = width - 10
	m.refreshViewport()
}

// refreshViewport reloads the transcript and follows the tail.
func (m *Model) refreshViewport() {
	if !m.sized {
		return
	}
	m.viewport.SetContent(m.renderer.Transcript())
	m.viewport.GotoBottom()
}

// =============================================================================
// COMMANDS
// =============================================================================

// askAgentCmd runs one agent exchange off the event loop. The session
// serializes exchanges itself and renders every outcome into the shared
// renderer.
func askAgentCmd(sess *session.Session, prompt string) tea.Cmd {
	return func() tea.Msg {
		return exchangeDoneMsg{err: sess.AskAgent(context.Background(), prompt)}
	}
}

// runSQLCmd executes one direct statement off the event loop.
func runSQLCmd(sess *session.Session, sqlText string) tea.Cmd {
	return func() tea.Msg {
		res, err := sess.RunSQL(context.Background(), sqlText)
		return sqlDoneMsg{res: res, err: err}
	}
}

// statusForError maps session errors to one-line notices.
func statusForError(err error) string {
	var blocked *session.BlockedError
	if errors.As(err, &blocked) {
		return "blocked: " + blocked.Reason
	}
	if errors.Is(err, session.ErrDeclined) {
		return "declined"
	}
	if errors.Is(err, session.ErrBusy) {
		return "an exchange is already in flight"
	}
	return firstLine(err.Error())
}

// firstLine truncates multi-line errors for the status bar.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
