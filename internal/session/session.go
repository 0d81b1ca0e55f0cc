// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates one conversation between the operator, the
// agent, and the database.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnthusAI/sqlbot-tui/internal/agent"
	"github.com/AnthusAI/sqlbot-tui/internal/display"
	"github.com/AnthusAI/sqlbot-tui/internal/extract"
	"github.com/AnthusAI/sqlbot-tui/internal/memory"
	"github.com/AnthusAI/sqlbot-tui/internal/model"
	"github.com/AnthusAI/sqlbot-tui/internal/query"
	"github.com/AnthusAI/sqlbot-tui/internal/safety"
)

// ============================================================================
// ERRORS
// ============================================================================

// ErrBusy is returned when an agent exchange is requested while another one
// is still in flight. Exchanges never pipeline; callers wait for the
// previous turn to settle.
var ErrBusy = errors.New("an agent exchange is already in flight")

// ErrDeclined is returned when the operator answers a confirmation prompt
// with no. The statement was never sent to the database.
var ErrDeclined = errors.New("query declined")

// BlockedError reports a statement the session policy refused to run.
type BlockedError struct {
	// Reason explains the block in user-facing terms.
	Reason string
}

func (e *BlockedError) Error() string {
	return "query blocked: " + e.Reason
}

// ============================================================================
// CONFIGURATION
// ============================================================================

// defaultMaxToolRounds bounds how many query volleys one exchange may make
// before the session stops re-invoking the model.
const defaultMaxToolRounds = 5

// thinkingLabel is shown while an exchange is in flight.
const thinkingLabel = "Thinking"

// toolLimitText stands in for the model's answer when an exchange burns
// through its query budget without producing one.
const toolLimitText = "I ran out of query attempts before reaching an answer. The executed queries are listed below."

// ConfirmFunc is asked before a gated statement runs. It receives the
// statement and its classification and returns true to proceed. Prompting
// happens on the caller's goroutine, so implementations may block on input.
type ConfirmFunc func(sqlText string, analysis safety.Analysis) bool

// Config carries the session's tunables.
type Config struct {
	// ID identifies the session. Generated when empty.
	ID string

	// Memory configures the conversation buffer bounds.
	Memory memory.Config

	// Policy holds the execution gates. It lives on the session, never in
	// package state, so two sessions in one process can run with different
	// modes.
	Policy safety.Policy

	// Confirm is consulted before gated direct statements run. Nil means
	// the surface cannot prompt: read-only statements proceed, dangerous
	// ones are blocked.
	Confirm ConfirmFunc

	// MaxToolRounds bounds query volleys per exchange. Zero means the
	// default.
	MaxToolRounds int
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	return Config{
		Memory:        memory.DefaultConfig(),
		MaxToolRounds: defaultMaxToolRounds,
	}
}

// ============================================================================
// SESSION
// ============================================================================

// Session owns one conversation: the buffer, its display synchronizer, the
// query executor, the agent invoker, and the safety policy.
//
// Buffer and display mutation happens only on the goroutine that calls the
// session's methods. Agent exchanges run on an internal worker, but the
// worker never touches the buffer; its result is marshalled back to the
// calling goroutine, and a cancelled worker's result is discarded without
// being appended. One exchange may be in flight at a time.
type Session struct {
	id      string
	started time.Time

	buffer   *memory.Buffer
	display  *display.Synchronizer
	executor query.Executor
	invoker  agent.Invoker

	confirm       ConfirmFunc
	maxToolRounds int

	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
	policy   safety.Policy
	stats    Stats
}

// New creates a session wired to the given renderer, executor, and invoker.
func New(renderer display.Renderer, executor query.Executor, invoker agent.Invoker, cfg Config) *Session {
	if cfg.ID == "" {
		cfg.ID = generateSessionID()
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = defaultMaxToolRounds
	}

	buffer := memory.NewBuffer(cfg.Memory)
	return &Session{
		id:            cfg.ID,
		started:       time.Now(),
		buffer:        buffer,
		display:       display.NewSynchronizer(buffer, renderer),
		executor:      executor,
		invoker:       invoker,
		confirm:       cfg.Confirm,
		maxToolRounds: cfg.MaxToolRounds,
		policy:        cfg.Policy,
	}
}

// generateSessionID returns a timestamped session identifier.
func generateSessionID() string {
	return "sess_" + time.Now().Format("20060102_150405")
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.started
}

// Policy returns a copy of the current execution policy.
func (s *Session) Policy() safety.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// SetPolicy replaces the execution policy. Takes effect for the next
// statement; a query already past its gate is not re-checked.
func (s *Session) SetPolicy(p safety.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

// Records returns a snapshot of the conversation for persistence.
func (s *Session) Records() []model.Record {
	return s.buffer.Context()
}

// Summary returns the buffer's bookkeeping counters.
func (s *Session) Summary() memory.Summary {
	return s.buffer.Summary()
}

// Busy reports whether an agent exchange is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Clear empties the conversation and the display. The next exchange starts
// from a blank transcript.
func (s *Session) Clear() {
	s.buffer.Clear()
	s.display.ClearDisplay()
}

// SystemMessage renders an informational line into the conversation.
func (s *Session) SystemMessage(text string) {
	s.display.AddSystemMessage(text)
}

// ============================================================================
// AGENT EXCHANGE
// ============================================================================

// AskAgent runs one full agent exchange: record and render the user turn,
// show the thinking indicator, invoke the model, execute any queries it
// requests, feed the results back, and append the final response.
//
// The exchange itself runs on a worker goroutine so Cancel can abort it,
// but AskAgent blocks until the exchange settles; buffer and display are
// only ever touched from the calling goroutine. A second call while one is
// in flight returns ErrBusy. On cancellation the worker's eventual result
// is discarded and a cancellation notice is rendered instead, so no partial
// response ever lands in the buffer.
//
// Collaborator failures are converted into an error-styled turn and also
// returned, letting non-interactive callers map them to an exit code.
func (s *Session) AskAgent(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inFlight = true
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stats.AgentCalls++
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.inFlight = false
		s.cancel = nil
		s.mu.Unlock()
	}()

	// Snapshot the transcript before appending the new turn; the prompt
	// travels separately, so including it here would double it.
	history := s.buffer.FilteredContext()
	s.display.AddUserMessage(text)
	s.display.ShowThinkingIndicator(thinkingLabel)

	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		final, err := s.runExchange(workerCtx, text, history)
		ch <- outcome{text: final, err: err}
	}()

	select {
	case <-workerCtx.Done():
		// The worker parks its result in the buffered channel and exits;
		// nothing reads it. Settling the display here also clears the
		// thinking indicator.
		s.display.AddErrorMessage("Request canceled")
		return workerCtx.Err()

	case out := <-ch:
		// A result racing a cancellation may win the select; the
		// cancellation still takes precedence and the result is dropped.
		if workerCtx.Err() != nil {
			s.display.AddErrorMessage("Request canceled")
			return workerCtx.Err()
		}
		if out.err != nil {
			s.mu.Lock()
			s.stats.Errors++
			s.mu.Unlock()
			s.display.AddErrorMessage(exchangeError(out.err))
			return out.err
		}
		s.display.AddAIMessage(out.text)
		return nil
	}
}

// Cancel aborts the in-flight agent exchange, if any. Safe to call at any
// time, from any goroutine.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// runExchange drives the model until it stops requesting queries, then
// composes the final response text. Query results are threaded back as tool
// records on a working copy of the transcript; the buffer itself is not
// touched here.
func (s *Session) runExchange(ctx context.Context, prompt string, history []model.Record) (string, error) {
	resp, err := s.invoker.Invoke(ctx, prompt, history)
	if err != nil {
		return "", err
	}

	working := make([]model.Record, 0, len(history)+1)
	working = append(working, history...)
	working = append(working, model.NewUserRecord(prompt))

	var details []string
	rounds := 0
	for len(resp.ToolCalls) > 0 {
		if rounds >= s.maxToolRounds {
			resp = &agent.Response{Text: toolLimitText}
			break
		}
		rounds++

		for i, call := range resp.ToolCalls {
			callID := fmt.Sprintf("query_%d_%d", rounds, i)
			q, ok := call.Query()
			if !ok {
				// Feed the problem back instead of failing the turn; the
				// model can issue a corrected call on the next round.
				working = append(working, model.NewToolRecord(callID, "",
					"Error: tool call did not include a query"))
				continue
			}

			resultText := s.runToolQuery(ctx, q)
			content := fmt.Sprintf("Query executed: %s\nResult: %s", q, resultText)
			working = append(working, model.NewToolRecord(callID, q, content))
			details = append(details, fmt.Sprintf("Query: %s\nResult: %s", q, resultText))
		}

		// Empty prompt: the tool records carry this round's new information.
		resp, err = s.invoker.Invoke(ctx, "", working)
		if err != nil {
			return "", err
		}
	}

	final := resp.Text
	if len(details) > 0 {
		final = final + "\n\n" + extract.Marker + "\n" + strings.Join(details, "\n\n")
	}
	return final, nil
}

// runToolQuery executes one model-requested statement under the session
// policy. Failures come back as text rather than errors: the model reads
// the message and can correct itself on the next round.
//
// There is no confirmation mid-exchange. Read-only and maintenance
// statements run; dangerous ones need the dangerous-mode override or must
// be run directly by the operator.
func (s *Session) runToolQuery(ctx context.Context, sqlText string) string {
	analysis := safety.Classify(sqlText)

	s.mu.Lock()
	policy := s.policy
	s.mu.Unlock()

	decision := policy.Evaluate(analysis)
	if !decision.Allowed || (decision.NeedsConfirm && !analysis.IsReadOnly()) {
		reason := decision.Reason
		if reason == "" {
			reason = analysis.Message
		}
		return "Error: blocked by session policy (" + reason + ")"
	}

	res := s.executor.Execute(ctx, sqlText)

	s.mu.Lock()
	s.stats.ToolQueries++
	if !res.Success {
		s.stats.Errors++
	}
	s.mu.Unlock()

	return res.Text()
}

// exchangeError converts a collaborator failure into a user-facing message.
func exchangeError(err error) string {
	switch {
	case agent.IsNotRunning(err):
		return "Cannot reach Ollama. Is it running? Start it with: ollama serve"
	case agent.IsModelNotFound(err):
		return "Model not found. Pull it with: ollama pull <model>"
	case agent.IsTimeout(err):
		return "The model took too long to respond. Try a shorter question or raise the timeout."
	default:
		return "Agent error: " + err.Error()
	}
}

// ============================================================================
// DIRECT SQL
// ============================================================================

// RunSQL executes one operator-entered statement under the session policy:
// classify, evaluate, confirm if the policy asks for it, then execute. The
// statement and its result stay out of the conversation buffer; direct SQL
// is an operator affordance, not an agent turn.
//
// A policy refusal surfaces as *BlockedError and a declined confirmation as
// ErrDeclined; in both cases the statement never reached the database.
// Execution failures are reported inside the result, not as an error.
func (s *Session) RunSQL(ctx context.Context, sqlText string) (*query.Result, error) {
	sqlText = strings.TrimSpace(sqlText)

	analysis := safety.Classify(sqlText)
	s.mu.Lock()
	policy := s.policy
	confirm := s.confirm
	s.mu.Unlock()

	decision := policy.Evaluate(analysis)
	if !decision.Allowed {
		return nil, &BlockedError{Reason: decision.Reason}
	}
	if decision.NeedsConfirm && sqlText != "" {
		switch {
		case confirm == nil:
			// No way to prompt. Read-only statements proceed; dangerous
			// ones are refused rather than silently run.
			if !analysis.IsReadOnly() {
				return nil, &BlockedError{Reason: decision.Reason}
			}
		case !confirm(sqlText, analysis):
			return nil, ErrDeclined
		}
	}

	res := s.executor.Execute(ctx, sqlText)

	s.mu.Lock()
	s.stats.QueriesRun++
	if !res.Success {
		s.stats.Errors++
	}
	s.mu.Unlock()

	return res, nil
}

// ============================================================================
// STATISTICS
// ============================================================================

// Stats is a snapshot of the session's cumulative counters.
type Stats struct {
	// AgentCalls is the number of agent exchanges started.
	AgentCalls int
	// QueriesRun is the number of direct statements executed.
	QueriesRun int
	// ToolQueries is the number of statements the agent ran.
	ToolQueries int
	// Errors counts failed exchanges and failed statements.
	Errors int
}

// Total returns the number of statements executed on either path.
func (st Stats) Total() int {
	return st.QueriesRun + st.ToolQueries
}

// HasActivity reports whether the session did any work worth summarizing.
func (st Stats) HasActivity() bool {
	return st.AgentCalls > 0 || st.QueriesRun > 0
}

// Stats returns a copy of the current counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Elapsed returns how long the session has been running.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}

// FormatDuration renders a duration in compact human form, like "45s" or
// "3m 12s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return strconv.Itoa(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
