package mv

import (
	"errors"
	"fmt"
)

// InvariantError reports a broken structural invariant: a nil or second
// view attach, a double remove, an overlapping cycle. These are programming
// faults and are never swallowed by the dispatch or pool layers.
type InvariantError struct {
	Op      string
	Message string
	Cause   error
}

func (e *InvariantError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invariant violated in %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Message)
}

func (e *InvariantError) Unwrap() error {
	return e.Cause
}

// Invariant builds an InvariantError for op.
func Invariant(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsInvariant reports whether err, or a recovered panic value, is an
// InvariantError.
func IsInvariant(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var ie *InvariantError
	return errors.As(err, &ie)
}
