// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for the qbot CLI.
//
// STANDARDIZED PATTERN:
//   - Command handlers ALWAYS return errors (never just print and return nil)
//   - The top-level dispatcher decides how to display them
//   - Structured error types carry enough context for a useful message

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/AnthusAI/sqlbot-tui/internal/agent"
	"github.com/AnthusAI/sqlbot-tui/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error.
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments.
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error.
	ExitConfigError = 3
	// ExitDatabaseError indicates the database could not be opened or read.
	ExitDatabaseError = 4
	// ExitAgentError indicates the agent backend failed or is unreachable.
	ExitAgentError = 5
	// ExitBlockedError indicates the safety policy refused a statement.
	ExitBlockedError = 6
	// ExitNotFoundError indicates a resource was not found.
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out.
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command failure with context.
type CommandError struct {
	Command string // Command that failed (e.g., "ask", "preview")
	Action  string // Action being performed (e.g., "open database")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of a valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "table", "transcript")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// =============================================================================
// CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// =============================================================================
// DISPLAY AND EXIT CODES
// =============================================================================

// DisplayError prints an error to stderr in the standard style.
func DisplayError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var blocked *session.BlockedError
	if errors.As(err, &blocked) {
		return ExitBlockedError
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return ExitNotFoundError
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return ExitUsageError
	}

	switch {
	case agent.IsTimeout(err):
		return ExitTimeoutError
	case agent.IsNotRunning(err), agent.IsModelNotFound(err):
		return ExitAgentError
	}
	return ExitGeneralError
}
