package filter

import (
	"fmt"
	"strings"
)

// CompilationError reports an expression that failed to compile. Position is
// the 0-based column of the offending token, or -1 when expr did not report one.
type CompilationError struct {
	Expression string
	Reason     string
	Position   int
	Err        error
}

func (e *CompilationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot compile %q: %s", e.Expression, e.Reason)
	if e.Position >= 0 {
		fmt.Fprintf(&sb, " (column %d)", e.Position+1)
	}
	return sb.String()
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// EvaluationError reports a runtime failure of a compiled filter against one
// repository, e.g. an out of range index into Topics
type EvaluationError struct {
	Expression string
	Repository string
	Reason     string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("filter %q failed on %s: %s", e.Expression, e.Repository, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
