package transform

import (
	"errors"
	"fmt"

	"github.com/gnolang/argsinto/internal/syntax"
)

var (
	// ErrWrongItemKind is returned when the rewrite is applied to an item
	// that is not a function.
	ErrWrongItemKind = errors.New("argsinto can only be applied to a function")

	// ErrUnsupportedPattern is returned when a typed parameter does not bind
	// a single simple name.
	ErrUnsupportedPattern = errors.New("argument variable was not an identifier")

	// ErrNameCollision is returned when a synthesized generic name is not
	// distinct from another synthesized name or from an existing generic.
	ErrNameCollision = errors.New("synthesized generic name collides")

	// ErrInvariant reports a state that contradicts the rewrite's own
	// structural guarantees.
	ErrInvariant = errors.New("internal invariant violated")
)

// Error describes why a function could not be rewritten.
type Error struct {
	Err  error
	Func string
	// Param is the parameter the failure was detected at, nil when the
	// failure is not tied to one.
	Param  syntax.Param
	Detail string
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Func != "" {
		msg = fmt.Sprintf("%s: %s", e.Func, msg)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func invariantf(fn string, format string, args ...any) error {
	return &Error{Err: ErrInvariant, Func: fn, Detail: fmt.Sprintf(format, args...)}
}
