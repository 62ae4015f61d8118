// Package transform rewrites a function so that every explicit parameter
// accepts any value convertible into its declared type.
//
// For each typed parameter p of type T the function gains a generic
// parameter __P bounded by "convertible into T", the parameter's type becomes
// __P, and the body starts with a binding that converts p back into T under
// the same name:
//
//	func greet(name string)          { ... }
//	func greet[__NAME Into[string]](name __NAME) {
//		name := Into[string](name)
//		...
//	}
//
// The input function is never modified; Transform returns a new one.
package transform

import (
	"fmt"

	"github.com/gnolang/argsinto/internal/syntax"
)

// Transform rewrites item, which must be a *syntax.Func.
func Transform(item syntax.Item) (*syntax.Func, error) {
	fn, ok := item.(*syntax.Func)
	if !ok || fn == nil {
		return nil, &Error{Err: ErrWrongItemKind, Detail: describe(item)}
	}

	args, err := Bind(fn.Name, Extract(fn.Params))
	if err != nil {
		return nil, err
	}

	names := SynthesizeNames(args)
	bounds := ConstructBounds(args)
	if err := CheckCollisions(fn.Name, fn.Generics, args, names); err != nil {
		return nil, err
	}

	params, err := RewriteParams(fn.Name, fn.Params, names)
	if err != nil {
		return nil, err
	}
	generics, err := ExtendGenerics(fn.Name, fn.Generics, names, bounds)
	if err != nil {
		return nil, err
	}
	body := WithPrologue(Prologue(args), fn.Body)

	return Assemble(fn, params, generics, body), nil
}

// Assemble returns a copy of fn with the given signature parts and body,
// marked so that the naming style of the synthesized generics is not
// reported.
func Assemble(fn *syntax.Func, params []syntax.Param, generics []*syntax.GenericParam, body []syntax.Stmt) *syntax.Func {
	out := &syntax.Func{
		Name:     fn.Name,
		Generics: generics,
		Params:   params,
		Body:     body,
		Suppress: append([]syntax.Lint(nil), fn.Suppress...),
		Origin:   fn.Origin,
	}
	if !out.HasLint(syntax.NamingStyle) {
		out.Suppress = append(out.Suppress, syntax.NamingStyle)
	}
	return out
}

func describe(item syntax.Item) string {
	switch item := item.(type) {
	case nil:
		return "no item"
	case *syntax.Other:
		return "got " + item.Kind
	default:
		return fmt.Sprintf("got %T", item)
	}
}
