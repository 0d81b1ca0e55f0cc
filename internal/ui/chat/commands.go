// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Slash commands inside the full-screen UI.
//
// The TUI carries the same command set as the REPL minus the ones that
// need a blocking prompt or raw terminal output. Command output lands in
// the transcript so it scrolls with the conversation.

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AnthusAI/sqlbot-tui/internal/storage"
)

// handleCommand dispatches one slash command. Database-touching commands
// run as tea.Cmds; toggles apply immediately.
func (m *Model) handleCommand(cmd string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return m, nil
	}
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		m.renderer.AppendRaw(helpText())
		m.refreshViewport()
		return m, nil

	case "/tables", "/t":
		m.state = StateBusy
		return m, m.tablesCmd()

	case "/preview":
		if len(args) == 0 {
			m.statusMsg = errStyle.Render("usage: /preview <table>")
			return m, nil
		}
		m.state = StateBusy
		return m, m.previewCmd(args[0])

	case "/run":
		sqlText := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))
		if sqlText == "" {
			m.statusMsg = errStyle.Render("usage: /run <statement>")
			return m, nil
		}
		m.state = StateBusy
		return m, runSQLCmd(m.session, sqlText)

	case "/readonly":
		p := m.session.Policy()
		p.ReadOnly = !p.ReadOnly
		m.session.SetPolicy(p)
		m.statusMsg = sysStyle.Render(fmt.Sprintf("read-only: %v", p.ReadOnly))
		return m, nil

	case "/confirm":
		// Without an interactive prompt, preview mode runs read-only
		// statements and blocks writes with the reason in the status bar.
		p := m.session.Policy()
		p.ConfirmBeforeRun = !p.ConfirmBeforeRun
		m.session.SetPolicy(p)
		m.statusMsg = sysStyle.Render(fmt.Sprintf("preview mode: %v", p.ConfirmBeforeRun))
		return m, nil

	case "/dangerous":
		p := m.session.Policy()
		p.AllowDangerous = !p.AllowDangerous
		m.session.SetPolicy(p)
		m.statusMsg = toolCallStyle.Render(fmt.Sprintf("dangerous mode: %v", p.AllowDangerous))
		return m, nil

	case "/status", "/s":
		m.renderer.AppendRaw(m.statusText())
		m.refreshViewport()
		return m, nil

	case "/history":
		m.renderer.AppendRaw(m.historyText())
		m.refreshViewport()
		return m, nil

	case "/debug":
		m.renderer.AppendRaw(m.debugText())
		m.refreshViewport()
		return m, nil

	case "/sessions":
		query := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))
		m.state = StateBusy
		return m, m.sessionsCmd(query)

	case "/clear", "/c":
		m.session.Clear()
		m.refreshViewport()
		m.statusMsg = sysStyle.Render("conversation cleared")
		return m, nil

	case "/save":
		title := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))
		m.state = StateBusy
		return m, m.saveCmd(title)

	case "/model", "/m":
		if len(args) == 0 {
			m.statusMsg = sysStyle.Render("model: " + m.env.Client.Model())
			return m, nil
		}
		m.env.Client.SetModel(args[0])
		m.statusMsg = sysStyle.Render("switched to " + args[0])
		return m, nil

	case "/quit", "/q", "/exit":
		m.quitting = true
		return m, tea.Quit

	default:
		m.statusMsg = errStyle.Render("unknown command: " + command + " (/help for commands)")
		return m, nil
	}
}

// tablesCmd lists the database tables into the transcript.
func (m *Model) tablesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tables, err := m.env.Executor.Tables(ctx)
		if err != nil {
			return commandDoneMsg{err: err}
		}
		var b strings.Builder
		b.WriteString(sysStyle.Render("Tables:") + "\n")
		for _, t := range tables {
			b.WriteString("  " + t + "\n")
		}
		m.renderer.AppendRaw(b.String())
		return commandDoneMsg{}
	}
}

// previewCmd shows a table's schema and first rows in the transcript.
func (m *Model) previewCmd(table string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		info, err := m.env.Executor.TableInfo(ctx, table)
		if err != nil {
			return commandDoneMsg{err: fmt.Errorf("table not found: %s", table)}
		}
		var b strings.Builder
		b.WriteString(sysStyle.Render(info.Name) + dimStyle.Render(fmt.Sprintf(" (%d rows)", info.RowCount)) + "\n")
		for _, col := range info.Columns {
			b.WriteString("  " + col.Name + " " + dimStyle.Render(col.Type) + "\n")
		}
		m.renderer.AppendRaw(b.String())

		res := m.env.Executor.Preview(ctx, table, 10)
		return sqlDoneMsg{res: res}
	}
}

// sessionsCmd lists saved transcripts, optionally filtered.
func (m *Model) sessionsCmd(query string) tea.Cmd {
	return func() tea.Msg {
		store, err := storage.NewTranscriptStore()
		if err != nil {
			return commandDoneMsg{err: err}
		}
		var metas []storage.TranscriptMeta
		if query != "" {
			metas, err = store.Search(query)
		} else {
			metas, err = store.List()
		}
		if err != nil {
			return commandDoneMsg{err: err}
		}
		if len(metas) == 0 {
			m.renderer.AppendRaw(dimStyle.Render("no saved transcripts"))
			return commandDoneMsg{}
		}
		m.renderer.AppendRaw(storage.FormatTranscriptList(metas))
		return commandDoneMsg{}
	}
}

// saveCmd persists the conversation transcript.
func (m *Model) saveCmd(title string) tea.Cmd {
	return func() tea.Msg {
		records := m.session.Records()
		if len(records) == 0 {
			return commandDoneMsg{err: fmt.Errorf("nothing to save yet")}
		}
		store, err := storage.NewTranscriptStore()
		if err != nil {
			return commandDoneMsg{err: err}
		}
		if m.env.Config.Storage.MaxTranscripts > 0 {
			store.MaxTranscripts = m.env.Config.Storage.MaxTranscripts
		}
		tr := storage.NewTranscript(m.session.ID(), m.env.Client.Model(), m.env.Executor.Path(), records)
		if title != "" {
			tr.Summary = title
		}
		id, err := store.Save(tr)
		if err != nil {
			return commandDoneMsg{err: err}
		}
		m.renderer.AppendRaw(sysStyle.Render("saved transcript " + id))
		return commandDoneMsg{}
	}
}

// helpText is the in-transcript command reference.
func helpText() string {
	lines := []struct{ cmd, desc string }{
		{"/tables", "List database tables"},
		{"/preview <table>", "Show a table's schema and first rows"},
		{"/run <sql>", "Execute a statement directly"},
		{"/readonly", "Toggle read-only mode"},
		{"/confirm", "Toggle preview mode"},
		{"/dangerous", "Toggle dangerous mode"},
		{"/history", "Show the conversation buffer"},
		{"/status", "Show session statistics"},
		{"/clear", "Clear the conversation"},
		{"/save [title]", "Save the conversation transcript"},
		{"/sessions [text]", "List saved transcripts"},
		{"/model [name]", "Show or switch model"},
		{"/quit", "Exit"},
	}
	var b strings.Builder
	b.WriteString(sysStyle.Render("Commands:") + "\n")
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-18s %s\n", l.cmd, dimStyle.Render(l.desc)))
	}
	b.WriteString(dimStyle.Render("End a line with ';' to run SQL directly; anything else goes to the agent.") + "\n")
	return b.String()
}

// historyText renders the conversation buffer's records one per line.
func (m *Model) historyText() string {
	records := m.session.Records()
	if len(records) == 0 {
		return dimStyle.Render("no conversation yet")
	}
	var b strings.Builder
	b.WriteString(sysStyle.Render(fmt.Sprintf("History (%d records):", len(records))) + "\n")
	for _, rec := range records {
		preview := strings.ReplaceAll(rec.Preview(100), "\n", " ")
		b.WriteString("  " + dimStyle.Render(rec.Role.DisplayName()+":") + " " + preview + "\n")
	}
	return b.String()
}

// debugText renders the buffer summary diagnostic.
func (m *Model) debugText() string {
	sum := m.session.Summary()
	var b strings.Builder
	b.WriteString(sysStyle.Render(fmt.Sprintf("Buffer: %d records", sum.Total)) + "\n")
	for role, n := range sum.PerRole {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s: %d", role.DisplayName(), n)) + "\n")
	}
	for _, p := range sum.Previews {
		b.WriteString(dimStyle.Render("  "+p) + "\n")
	}
	return b.String()
}

// statusText renders session statistics for the transcript.
func (m *Model) statusText() string {
	stats := m.session.Stats()
	var b strings.Builder
	b.WriteString(sysStyle.Render("Session "+m.session.ID()) + "\n")
	b.WriteString(fmt.Sprintf("  questions: %d  direct queries: %d  agent queries: %d  errors: %d\n",
		stats.AgentCalls, stats.QueriesRun, stats.ToolQueries, stats.Errors))
	b.WriteString(fmt.Sprintf("  buffer: %d records\n", len(m.session.Records())))
	return b.String()
}
