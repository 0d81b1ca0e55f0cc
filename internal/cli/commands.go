// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Slash command dispatch for the interactive REPL.

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AnthusAI/sqlbot-tui/internal/model"
	"github.com/AnthusAI/sqlbot-tui/internal/session"
	"github.com/AnthusAI/sqlbot-tui/internal/storage"
)

// handleCommand processes one slash command. Returns (keepGoing, error);
// keepGoing=false means exit the REPL.
func (r *Repl) handleCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		r.printHelp()
		return true, nil

	case "/tables", "/t":
		return true, r.showTables()

	case "/preview":
		if len(args) == 0 {
			return true, NewValidationError("table", "", "usage: /preview <table> [rows]")
		}
		limit := 10
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return true, NewValidationError("rows", args[1], "must be a positive number")
			}
			limit = n
		}
		return true, r.previewTable(args[0], limit)

	case "/run":
		sqlText := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))
		if sqlText == "" {
			return true, NewValidationError("sql", "", "usage: /run <statement>")
		}
		r.runSQL(sqlText)
		return true, nil

	case "/readonly":
		p := r.session.Policy()
		p.ReadOnly = !p.ReadOnly
		r.session.SetPolicy(p)
		fmt.Printf("%s read-only mode %s\n", CommandStyle.Render("[Mode]"), onOff(p.ReadOnly))
		return true, nil

	case "/confirm":
		p := r.session.Policy()
		p.ConfirmBeforeRun = !p.ConfirmBeforeRun
		r.session.SetPolicy(p)
		fmt.Printf("%s confirm-before-run %s\n", CommandStyle.Render("[Mode]"), onOff(p.ConfirmBeforeRun))
		return true, nil

	case "/dangerous":
		p := r.session.Policy()
		p.AllowDangerous = !p.AllowDangerous
		r.session.SetPolicy(p)
		if p.AllowDangerous {
			fmt.Printf("%s dangerous mode %s - writes run without confirmation\n",
				WarningStyle.Render("[Mode]"), onOff(true))
		} else {
			fmt.Printf("%s dangerous mode %s\n", CommandStyle.Render("[Mode]"), onOff(false))
		}
		return true, nil

	case "/history":
		r.printHistory()
		return true, nil

	case "/status", "/s":
		r.printStatus()
		return true, nil

	case "/clear", "/c":
		r.session.Clear()
		fmt.Println(CommandStyle.Render("[Conversation cleared]"))
		return true, nil

	case "/save":
		title := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))
		return true, r.saveTranscript(title)

	case "/sessions":
		return true, r.listTranscripts(strings.Join(args, " "))

	case "/model", "/m":
		return r.handleModelCommand(args)

	case "/debug":
		r.debug = !r.debug
		fmt.Printf("%s debug %s\n", CommandStyle.Render("[Mode]"), onOff(r.debug))
		if r.debug {
			r.printBufferSummary()
		}
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

// showTables lists the database's tables.
func (r *Repl) showTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables, err := r.executor.Tables(ctx)
	if err != nil {
		return WrapError(err, "listing tables")
	}
	if len(tables) == 0 {
		fmt.Println(DimStyle.Render("[No tables in database]"))
		return nil
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Tables"))
	fmt.Println(RenderSeparator(20))
	for _, t := range tables {
		fmt.Println("  " + ValueStyle.Render(t))
	}
	fmt.Println()
	return nil
}

// previewTable shows a table's schema and first rows.
func (r *Repl) previewTable(name string, limit int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := r.executor.TableInfo(ctx, name)
	if err != nil {
		return NewNotFoundError("table", name)
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render(info.Name))
	fmt.Println(RenderSeparator(20))
	for _, col := range info.Columns {
		pk := ""
		if col.PK {
			pk = DimStyle.Render(" (pk)")
		}
		fmt.Printf("  %s %s%s\n", ValueStyle.Render(col.Name), DimStyle.Render(col.Type), pk)
	}
	fmt.Printf("%s %d\n", LabelStyle.Render("Rows:"), info.RowCount)
	fmt.Println()

	res := r.executor.Preview(ctx, name, limit)
	fmt.Println(RenderResult(res, false))
	fmt.Println()
	return nil
}

// saveTranscript persists the current conversation.
func (r *Repl) saveTranscript(title string) error {
	records := r.session.Records()
	if len(records) == 0 {
		fmt.Println(DimStyle.Render("[Nothing to save yet]"))
		return nil
	}

	store, err := r.transcriptStore()
	if err != nil {
		return err
	}

	tr := storage.NewTranscript(r.session.ID(), r.env.Client.Model(), r.executor.Path(), records)
	if title != "" {
		tr.Summary = title
	}
	id, err := store.Save(tr)
	if err != nil {
		return WrapError(err, "saving transcript")
	}
	fmt.Printf("%s saved as %s\n", SuccessStyle.Render("[Saved]"), CommandStyle.Render(id))
	return nil
}

// listTranscripts lists saved conversations, optionally filtered.
func (r *Repl) listTranscripts(queryText string) error {
	store, err := r.transcriptStore()
	if err != nil {
		return err
	}

	var metas []storage.TranscriptMeta
	if queryText != "" {
		metas, err = store.Search(queryText)
	} else {
		metas, err = store.List()
	}
	if err != nil {
		return WrapError(err, "listing transcripts")
	}
	fmt.Println(storage.FormatTranscriptList(metas))
	return nil
}

// handleModelCommand shows or switches the active model.
func (r *Repl) handleModelCommand(args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Printf("%s Current model: %s\n",
			LabelStyle.Render("[Model]"), CommandStyle.Render(r.env.Client.Model()))
		return true, nil
	}

	newModel := args[0]

	// Warn when the model is not pulled locally; switching still proceeds
	// since Ollama may pull it on first use.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if models, err := r.env.Client.ListModels(ctx); err == nil {
		found := false
		for _, m := range models {
			if m.Name == newModel {
				found = true
				break
			}
		}
		if !found {
			fmt.Printf("%s model %q is not pulled locally\n",
				WarningStyle.Render("[Warning]"), newModel)
		}
	}

	r.env.Client.SetModel(newModel)
	fmt.Printf("%s switched to %s\n", SuccessStyle.Render("[OK]"), CommandStyle.Render(newModel))
	return true, nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// printHelp prints the command table.
func (r *Repl) printHelp() {
	fmt.Println()
	fmt.Println(TitleStyle.Render("Commands"))
	fmt.Println(RenderSeparator(20))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/tables, /t", "List database tables"},
		{"/preview <table>", "Show a table's schema and first rows"},
		{"/run <sql>", "Execute a statement directly"},
		{"/readonly", "Toggle read-only mode"},
		{"/confirm", "Toggle confirm-before-run"},
		{"/dangerous", "Toggle dangerous mode"},
		{"/history", "Show conversation history"},
		{"/status, /s", "Show session statistics"},
		{"/clear, /c", "Clear the conversation"},
		{"/save [title]", "Save the conversation transcript"},
		{"/sessions [text]", "List or search saved transcripts"},
		{"/model [name]", "Show or switch model"},
		{"/debug", "Toggle debug diagnostics"},
		{"/quit, /q", "Exit"},
	}
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			CommandStyle.Render(fmt.Sprintf("%-18s", c.cmd)),
			InfoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(InfoStyle.Render("End a line with ';' to run SQL directly; anything else goes to the agent."))
	fmt.Println(InfoStyle.Render("Start with '//' to send a literal leading slash to the agent."))
	fmt.Println()
}

// printHistory prints the conversation buffer, one numbered line per turn.
func (r *Repl) printHistory() {
	records := r.session.Records()
	if len(records) == 0 {
		fmt.Println(DimStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Conversation History"))
	fmt.Println(RenderSeparator(25))
	fmt.Println()

	for i, rec := range records {
		label := rec.Role.DisplayName()
		switch rec.Role {
		case model.RoleUser:
			label = PromptStyle.Render(label)
		case model.RoleAssistant:
			if rec.IsError {
				label = ErrorStyle.Render("Error")
			} else {
				label = AIStyle.Render(label)
			}
		case model.RoleTool:
			label = WarningStyle.Render(label)
		default:
			label = DimStyle.Render(label)
		}

		content := strings.ReplaceAll(rec.Preview(100), "\n", " ")
		fmt.Printf("  %d. %s: %s\n", i+1, label, content)
	}
	fmt.Println()
}

// printStatus prints session statistics and active modes.
func (r *Repl) printStatus() {
	stats := r.session.Stats()
	policy := r.session.Policy()

	fmt.Println()
	fmt.Println(TitleStyle.Render("Session Status"))
	fmt.Println(RenderSeparator(20))
	fmt.Println()
	fmt.Printf("  %s %s\n", LabelStyle.Render("Session:"), DimStyle.Render(r.session.ID()))
	fmt.Printf("  %s %s\n", LabelStyle.Render("Model:"), CommandStyle.Render(r.env.Client.Model()))
	fmt.Printf("  %s %s\n", LabelStyle.Render("Database:"), ValueStyle.Render(r.executor.Path()))
	fmt.Printf("  %s %s\n", LabelStyle.Render("Mode:"), describePolicy(policy))
	fmt.Printf("  %s %s\n", LabelStyle.Render("Duration:"), session.FormatDuration(r.session.Elapsed()))
	fmt.Println()
	fmt.Printf("  %s %d questions, %d direct queries, %d agent queries\n",
		LabelStyle.Render("Activity:"), stats.AgentCalls, stats.QueriesRun, stats.ToolQueries)
	if stats.Errors > 0 {
		fmt.Printf("  %s %d\n", LabelStyle.Render("Errors:"), stats.Errors)
	}
	fmt.Printf("  %s %d records\n", LabelStyle.Render("Buffer:"), len(r.session.Records()))
	fmt.Println()
}

// printBufferSummary prints the conversation buffer diagnostic.
func (r *Repl) printBufferSummary() {
	summary := r.session.Summary()
	fmt.Printf("%s buffer: %d records", DimStyle.Render("[debug]"), summary.Total)
	for _, role := range []model.Role{model.RoleUser, model.RoleAssistant, model.RoleTool, model.RoleSystem} {
		if n := summary.PerRole[role]; n > 0 {
			fmt.Printf(", %d %s", n, role)
		}
	}
	fmt.Println()
	for _, p := range summary.Previews {
		fmt.Println(DimStyle.Render("  " + p))
	}
}
