package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// Sentinels classifying exceptions raised by the engine itself. A vm.Exception
// of the matching kind unwraps to one of these, so callers can use errors.Is.
var (
	// ErrNotConstructible marks a [[Construct]] attempted on a value lacking it.
	ErrNotConstructible = stderrors.New("not a constructor")
	// ErrInvariantViolation marks a proxy trap result contradicting its target.
	ErrInvariantViolation = stderrors.New("proxy invariant violated")
)

// ExoticError is the interface implemented by errors that point into a source file.
type ExoticError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Scenario"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// ScenarioError represents an error while decoding or validating a scenario file.
type ScenarioError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ScenarioError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("Scenario Error at %s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("Scenario Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ScenarioError) Pos() Position   { return e.Position }
func (e *ScenarioError) Kind() string    { return "Scenario" }
func (e *ScenarioError) Message() string { return e.Msg }
func (e *ScenarioError) Unwrap() error   { return e.Cause }
func (e *ScenarioError) CausedBy(cause error) *ScenarioError {
	e.Cause = cause
	return e
}

// NewScenarioError builds a ScenarioError at pos.
func NewScenarioError(pos Position, format string, args ...any) *ScenarioError {
	return &ScenarioError{Position: pos, Msg: fmt.Sprintf(format, args...)}
}

// --- Error Reporting ---

// DisplayErrors writes a list of errors to w in a user-friendly format,
// including the source line and position marker.
func DisplayErrors(w io.Writer, source string, errs []ExoticError) {
	if len(errs) == 0 {
		return
	}

	lines := strings.Split(source, "\n")

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		// Ensure line numbers are within bounds (1-based index)
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%s Error: %s\n", kind, msg)
			continue
		}

		sourceLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")

		// Format: <Kind> Error at <Line>:<Column>: <Message>
		fmt.Fprintf(w, "%s Error at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)
		fmt.Fprintf(w, "  %s\n", sourceLine)

		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", col))
		fmt.Fprintln(w)
	}
}
