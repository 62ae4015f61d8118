package goast

import (
	"go/ast"

	"github.com/gnolang/argsinto/internal/transform"
)

// Apply lowers decl, transforms it and raises the result.
func Apply(decl ast.Decl, opts Options) (*Rewrite, error) {
	item, err := Lower(decl)
	if err != nil {
		return nil, err
	}
	fn, err := transform.Transform(item)
	if err != nil {
		return nil, err
	}
	return Raise(fn, opts)
}
