package lesson

import (
	"errors"
	"fmt"
)

var ErrSessionClosed = errors.New("lesson session closed")

// ValidationError reports malformed input. Nothing is mutated when one is
// returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// PreconditionError reports an action attempted before the lesson allows it,
// such as completing with unchecked items.
type PreconditionError struct {
	Action  string
	Missing []string
	// Notice is the learner-facing message, if any.
	Notice string
}

func (e *PreconditionError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s not allowed", e.Action)
	}
	return fmt.Sprintf("%s not allowed: incomplete %v", e.Action, e.Missing)
}
