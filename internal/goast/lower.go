// Package goast converts Go declarations to and from the syntax tree the
// rewrite operates on.
package goast

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/gnolang/argsinto/internal/syntax"
)

// Lower converts a declaration into a syntax item. Function declarations
// become *syntax.Func; every other declaration becomes *syntax.Other.
func Lower(decl ast.Decl) (syntax.Item, error) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		return lowerFunc(d)
	case *ast.GenDecl:
		return &syntax.Other{Kind: d.Tok.String() + " declaration", Origin: d}, nil
	default:
		return &syntax.Other{Kind: fmt.Sprintf("%T", decl), Origin: decl}, nil
	}
}

func lowerFunc(d *ast.FuncDecl) (*syntax.Func, error) {
	name := d.Name.Name
	if d.Body == nil {
		return nil, &Error{Err: ErrNoBody, Func: name, Node: d}
	}

	fn := &syntax.Func{Name: name, Origin: d}

	if tparams := d.Type.TypeParams; tparams != nil {
		for _, field := range tparams.List {
			bound := &syntax.Constraint{Text: types.ExprString(field.Type), Origin: field.Type}
			for _, n := range field.Names {
				fn.Generics = append(fn.Generics, &syntax.GenericParam{Name: n.Name, Bound: bound})
			}
		}
	}

	if d.Recv != nil {
		for _, field := range d.Recv.List {
			fn.Params = append(fn.Params, &syntax.Receiver{Origin: field})
		}
	}

	for _, field := range d.Type.Params.List {
		if _, ok := field.Type.(*ast.Ellipsis); ok {
			return nil, &Error{Err: ErrVariadic, Func: name, Node: field}
		}
		typ := &syntax.Expr{Text: types.ExprString(field.Type), Origin: field.Type}
		if len(field.Names) == 0 {
			fn.Params = append(fn.Params, &syntax.Typed{
				Pat:    &syntax.Destructure{Desc: "an unnamed parameter"},
				Type:   typ,
				Origin: field,
			})
			continue
		}
		for _, n := range field.Names {
			var pat syntax.Pattern = &syntax.Ident{Name: n.Name}
			if n.Name == "_" {
				pat = &syntax.Destructure{Desc: "the blank identifier"}
			}
			fn.Params = append(fn.Params, &syntax.Typed{Pat: pat, Type: typ, Origin: n})
		}
	}

	for _, stmt := range d.Body.List {
		fn.Body = append(fn.Body, &syntax.Opaque{Origin: stmt})
	}
	return fn, nil
}

func originNode(p syntax.Param) ast.Node {
	var origin any
	switch p := p.(type) {
	case *syntax.Typed:
		origin = p.Origin
	case *syntax.Receiver:
		origin = p.Origin
	}
	n, _ := origin.(ast.Node)
	return n
}
