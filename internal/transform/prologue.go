package transform

import "github.com/gnolang/argsinto/internal/syntax"

// Prologue returns one conversion binding per argument, in argument order.
// Each binding reads and writes only its own name, so the bindings do not
// depend on each other.
func Prologue(args []Arg) []syntax.Stmt {
	stmts := make([]syntax.Stmt, len(args))
	for i, arg := range args {
		stmts[i] = &syntax.Convert{Name: arg.Name, Target: arg.Type}
	}
	return stmts
}

// WithPrologue returns a new body made of prologue followed by body.
func WithPrologue(prologue, body []syntax.Stmt) []syntax.Stmt {
	stmts := make([]syntax.Stmt, 0, len(prologue)+len(body))
	stmts = append(stmts, prologue...)
	return append(stmts, body...)
}
