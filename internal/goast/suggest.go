package goast

import (
	"go/ast"
	"strconv"
)

// Suggest renders a signature for decl that can be rewritten, or "" when
// decl is not a function or has no mechanical fix. Variadic parameters
// become slices, unnamed and blank parameters get a name, and a method
// becomes a function taking its receiver first.
func Suggest(decl ast.Decl) string {
	fn, ok := decl.(*ast.FuncDecl)
	if !ok || fn.Type.Params == nil {
		return ""
	}

	taken := make(map[string]bool)
	for _, list := range []*ast.FieldList{fn.Recv, fn.Type.TypeParams, fn.Type.Params} {
		if list == nil {
			continue
		}
		for _, field := range list.List {
			for _, id := range field.Names {
				taken[id.Name] = true
			}
		}
	}
	fresh := func(base string, n int) string {
		for {
			name := base
			if n >= 0 {
				name += strconv.Itoa(n)
			}
			if !taken[name] {
				taken[name] = true
				return name
			}
			if n < 0 {
				n = 0
			}
			n++
		}
	}

	changed := false
	var params []*ast.Field
	if fn.Recv != nil && len(fn.Recv.List) == 1 && len(fn.Type.Params.List) > 0 {
		recv := fn.Recv.List[0]
		names := recv.Names
		if len(names) == 0 || names[0].Name == "_" {
			names = []*ast.Ident{ast.NewIdent(fresh("recv", -1))}
		}
		params = append(params, &ast.Field{Names: names, Type: recv.Type})
		changed = true
	}

	index := 0
	for _, field := range fn.Type.Params.List {
		f := &ast.Field{Names: field.Names, Type: field.Type}
		if ell, ok := field.Type.(*ast.Ellipsis); ok {
			f.Type = &ast.ArrayType{Elt: ell.Elt}
			changed = true
		}
		if len(field.Names) == 0 {
			f.Names = []*ast.Ident{ast.NewIdent(fresh("arg", index))}
			changed = true
			index++
		} else {
			f.Names = make([]*ast.Ident, len(field.Names))
			for i, id := range field.Names {
				f.Names[i] = id
				if id.Name == "_" {
					f.Names[i] = ast.NewIdent(fresh("arg", index))
					changed = true
				}
				index++
			}
		}
		params = append(params, f)
	}
	if !changed {
		return ""
	}

	ft := *fn.Type
	ft.Params = &ast.FieldList{List: params}
	text, err := render(&ast.FuncDecl{Name: fn.Name, Type: &ft})
	if err != nil {
		return ""
	}
	return text
}
