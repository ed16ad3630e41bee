/*
errors.go - Centralized error types for the strike engine

PURPOSE:
  All engine error kinds in one place. The engine distinguishes three classes:

  1. Rate-limit violations - a scheduler was invoked again inside its window.
     Fatal to the invocation; the operator must edit the persisted cursor
     parameter to force a re-run. There is no automatic retry anywhere.
  2. Quota exhaustion - the mailer ran out of sends. NOT an error: the
     notification run stops early by design and reports it in its result.
  3. Data gaps - rows referencing unknown users or carrying unparseable
     dates. Silently dropped at the parsing boundary, never escalated.

USAGE:
  if errors.Is(err, engine.ErrRateLimited) {
      var rl *engine.RateLimitError
      errors.As(err, &rl)
      // rl.Param names the cursor to edit for a forced re-run
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRateLimited is returned when a scheduler is invoked again within
	// its guard window (once per week / once per calendar month).
	ErrRateLimited = errors.New("rate limited")

	// ErrUserNotFound is returned by operations addressing a single
	// roster entry by username.
	ErrUserNotFound = errors.New("user not found")

	// ErrParamMissing is returned when a required parameter has no value.
	ErrParamMissing = errors.New("parameter not set")

	// ErrUnknownTable is returned by a TabularStore for a table name it
	// does not manage.
	ErrUnknownTable = errors.New("unknown table")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RateLimitError reports a scheduler guard violation. Param names the
// persisted cursor an operator must edit to deliberately force a re-run.
type RateLimitError struct {
	Op      string // "strike calculation", "strike deduction"
	Window  string // "week", "month"
	Param   string // cursor parameter name
	LastRun Date
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf(
		"it is forbidden to run %s more than once a %s (last run %s); to force this action edit the %q parameter",
		e.Op, e.Window, e.LastRun, e.Param)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// ParamError reports a missing or malformed required parameter.
type ParamError struct {
	Name   string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Name, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrParamMissing }
