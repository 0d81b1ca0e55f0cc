// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// input.go - Line input with history for the interactive REPL.
//
// Wraps peterh/liner to provide readline-like editing and persistent
// history across sessions, stored under the qbot config directory.

package cli

import (
	"bytes"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/AnthusAI/sqlbot-tui/internal/config"
)

// ReplInput provides input history and line editing for the REPL.
type ReplInput struct {
	line        *liner.State
	historyFile string
	maxEntries  int
}

// NewReplInput creates a ReplInput with history loaded from the config
// directory, or a temp-dir fallback when the config dir is unavailable.
func NewReplInput(cfg *config.Config) *ReplInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := cfg.HistoryPath()
	if err != nil {
		historyFile = os.TempDir() + string(os.PathSeparator) + "qbot_history"
	}

	in := &ReplInput{
		line:        line,
		historyFile: historyFile,
		maxEntries:  cfg.History.MaxEntries,
	}
	in.LoadHistory()
	return in
}

// LoadHistory loads input history from file. Missing files are fine.
func (in *ReplInput) LoadHistory() {
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with the given prompt. Non-empty input is
// appended to the in-memory history.
func (in *ReplInput) ReadInput(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with secure permissions, keeping at
// most maxEntries lines.
func (in *ReplInput) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	var buf bytes.Buffer
	if _, err := in.line.WriteHistory(&buf); err != nil {
		return
	}

	data := buf.Bytes()
	if in.maxEntries > 0 {
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) > in.maxEntries {
			lines = lines[len(lines)-in.maxEntries:]
		}
		data = []byte(strings.Join(lines, "\n") + "\n")
	}

	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(data)
}

// Close saves history and releases the terminal.
func (in *ReplInput) Close() {
	in.SaveHistory()
	in.line.Close()
}
