package goast

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"

	"github.com/gnolang/argsinto/internal/nolint"
	"github.com/gnolang/argsinto/internal/syntax"
	"github.com/gnolang/argsinto/internal/transform"
)

// Options control how a transformed function is rendered.
type Options struct {
	// Directive is removed from the doc comment of rewritten functions.
	Directive string
	// Nolint lists the linters named in the suppression comment. An empty
	// list suppresses every linter.
	Nolint []string
	// Used reports whether the body of its function refers to the parameter
	// declared by id. When nil, or when it answers false, the converted
	// parameter is kept alive with "_ = name".
	Used func(id *ast.Ident) bool
}

// Rewrite is the Go rendering of a transformed function.
type Rewrite struct {
	// Decl holds the new signature. Its Doc and Body are nil; the body is
	// the original one, preceded by Prologue.
	Decl *ast.FuncDecl
	// Doc is the new doc comment, one comment per element.
	Doc []string
	// Prologue converts every parameter back into its declared type.
	Prologue []ast.Stmt
	// Original is the declaration that was transformed.
	Original *ast.FuncDecl

	// constraints holds the source of the synthesized constraints, which
	// are the last type parameters of Decl.
	constraints []string
}

// Nested reports whether the body must be wrapped in a block so that the
// prologue can shadow the parameters.
func (r *Rewrite) Nested() bool { return len(r.Prologue) > 0 }

// Header renders the signature of the rewritten function, from "func" up to
// the result list.
func (r *Rewrite) Header() (string, error) {
	if len(r.constraints) == 0 {
		return render(r.Decl)
	}
	// the printer breaks long interfaces over several lines, so the
	// constraints are printed from their source text.
	ft := *r.Decl.Type
	fields := append([]*ast.Field(nil), ft.TypeParams.List...)
	offset := len(fields) - len(r.constraints)
	for i, text := range r.constraints {
		f := fields[offset+i]
		fields[offset+i] = &ast.Field{Names: f.Names, Type: ast.NewIdent(text)}
	}
	ft.TypeParams = &ast.FieldList{List: fields}
	decl := *r.Decl
	decl.Type = &ft
	return render(&decl)
}

// AddedTypeParams renders the synthesized type parameters, name and
// constraint, in order.
func (r *Rewrite) AddedTypeParams() []string {
	if len(r.constraints) == 0 {
		return nil
	}
	fields := r.Decl.Type.TypeParams.List
	offset := len(fields) - len(r.constraints)
	added := make([]string, len(r.constraints))
	for i, text := range r.constraints {
		added[i] = fields[offset+i].Names[0].Name + " " + text
	}
	return added
}

// ParamTypes maps the name of every rewritten parameter, as declared in
// Original, to its synthesized type.
func (r *Rewrite) ParamTypes() map[*ast.Ident]string {
	types := make(map[*ast.Ident]string)
	for _, field := range r.Decl.Type.Params.List {
		if id, ok := field.Type.(*ast.Ident); ok && len(field.Names) == 1 {
			types[field.Names[0]] = id.Name
		}
	}
	return types
}

// PrologueText renders the prologue statements, one per line.
func (r *Rewrite) PrologueText() (string, error) {
	lines := make([]string, len(r.Prologue))
	for i, stmt := range r.Prologue {
		text, err := render(stmt)
		if err != nil {
			return "", err
		}
		lines[i] = text
	}
	return strings.Join(lines, "\n"), nil
}

// DocText renders the doc comment, terminated by a newline, or "" when the
// function has none.
func (r *Rewrite) DocText() string {
	if len(r.Doc) == 0 {
		return ""
	}
	return strings.Join(r.Doc, "\n") + "\n"
}

// render prints n without position information so that nodes coming from
// different files can be mixed. The result is laid out on as few lines as
// possible and is meant to be reformatted with the surrounding file.
func render(n ast.Node) (string, error) {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Raise renders fn, produced by transforming a function lowered from Go
// source, back into Go syntax.
func Raise(fn *syntax.Func, opts Options) (*Rewrite, error) {
	orig, ok := fn.Origin.(*ast.FuncDecl)
	if !ok || orig == nil {
		return nil, invariantf(fn.Name, "function does not originate from a Go declaration")
	}

	existing := typeParamNames(orig)
	if len(fn.Generics) < len(existing) {
		return nil, invariantf(fn.Name, "%d generic parameters for %d type parameters", len(fn.Generics), len(existing))
	}
	added := fn.Generics[len(existing):]
	if orig.Recv != nil && len(added) > 0 {
		return nil, &Error{Err: ErrGenericMethod, Func: fn.Name, Node: orig.Type.Params}
	}

	tparams, constraints, err := raiseTypeParams(fn.Name, orig, added, existing)
	if err != nil {
		return nil, err
	}
	params, err := raiseParams(fn.Name, orig, fn.Params)
	if err != nil {
		return nil, err
	}
	prologue, err := raisePrologue(fn, orig, opts.Used)
	if err != nil {
		return nil, err
	}

	decl := &ast.FuncDecl{
		Recv: orig.Recv,
		Name: orig.Name,
		Type: &ast.FuncType{
			Func:       orig.Type.Func,
			TypeParams: tparams,
			Params:     params,
			Results:    orig.Type.Results,
		},
	}

	return &Rewrite{
		Decl:     decl,
		Doc:      raiseDoc(fn, orig.Doc, opts),
		Prologue: prologue,
		Original: orig,

		constraints: constraints,
	}, nil
}

func typeParamNames(decl *ast.FuncDecl) map[string]bool {
	names := make(map[string]bool)
	if decl.Type.TypeParams == nil {
		return names
	}
	for _, field := range decl.Type.TypeParams.List {
		for _, n := range field.Names {
			names[n.Name] = true
		}
	}
	return names
}

func raiseTypeParams(fn string, orig *ast.FuncDecl, added []*syntax.GenericParam, existing map[string]bool) (*ast.FieldList, []string, error) {
	if len(added) == 0 {
		return orig.Type.TypeParams, nil, nil
	}

	list := &ast.FieldList{}
	if orig.Type.TypeParams != nil {
		list.List = append(list.List, orig.Type.TypeParams.List...)
	}
	texts := make([]string, 0, len(added))
	for _, g := range added {
		into, ok := g.Bound.(*syntax.Into)
		if !ok {
			return nil, nil, invariantf(fn, "synthesized generic %s has bound %v", g.Name, g.Bound)
		}
		target, err := typeExpr(into.Target)
		if err != nil {
			return nil, nil, invariantf(fn, "bound of %s: %v", g.Name, err)
		}
		if id, ok := unparen(target).(*ast.Ident); ok && existing[id.Name] {
			return nil, nil, &Error{Err: ErrTypeParamType, Func: fn, Node: target}
		}
		text, bound, err := constraint(target)
		if err != nil {
			return nil, nil, invariantf(fn, "bound of %s: %v", g.Name, err)
		}
		list.List = append(list.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(g.Name)},
			Type:  bound,
		})
		texts = append(texts, text)
	}
	return list, texts, nil
}

// constraint builds the constraint satisfied by every type convertible into
// target. Types that are their own underlying type accept every type with
// the same underlying type.
func constraint(target ast.Expr) (string, ast.Expr, error) {
	text, err := render(target)
	if err != nil {
		return "", nil, err
	}
	if isUnderlying(target) {
		text = "~" + text
	}
	text = "interface{ " + text + " }"
	expr, err := parser.ParseExpr(text)
	if err != nil {
		return "", nil, err
	}
	return text, expr, nil
}

var predeclared = map[string]bool{
	"bool": true, "byte": true, "rune": true, "string": true, "uintptr": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// isUnderlying reports whether t denotes a type that is its own underlying
// type, judging from syntax alone.
func isUnderlying(t ast.Expr) bool {
	switch t := t.(type) {
	case *ast.Ident:
		return predeclared[t.Name]
	case *ast.ParenExpr:
		return isUnderlying(t.X)
	case *ast.StarExpr, *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.StructType:
		return true
	}
	return false
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

func raiseParams(fn string, orig *ast.FuncDecl, params []syntax.Param) (*ast.FieldList, error) {
	list := &ast.FieldList{
		Opening: orig.Type.Params.Opening,
		Closing: orig.Type.Params.Closing,
	}
	for _, p := range params {
		tp, ok := p.(*syntax.Typed)
		if !ok {
			continue
		}
		id, ok := tp.Origin.(*ast.Ident)
		if !ok {
			return nil, invariantf(fn, "parameter %s has no Go identifier", tp.Pat)
		}
		typ, err := typeExpr(tp.Type)
		if err != nil {
			return nil, invariantf(fn, "parameter %s: %v", id.Name, err)
		}
		list.List = append(list.List, &ast.Field{Names: []*ast.Ident{id}, Type: typ})
	}
	return list, nil
}

func raisePrologue(fn *syntax.Func, orig *ast.FuncDecl, used func(*ast.Ident) bool) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	opaque := 0
	for _, s := range fn.Body {
		switch s := s.(type) {
		case *syntax.Convert:
			if opaque > 0 {
				return nil, invariantf(fn.Name, "conversion of %s after the original statements", s.Name)
			}
			target, err := typeExpr(s.Target)
			if err != nil {
				return nil, invariantf(fn.Name, "conversion of %s: %v", s.Name, err)
			}
			stmts = append(stmts, conversion(s.Name, target))
		case *syntax.Opaque:
			opaque++
		}
	}
	if opaque != len(orig.Body.List) {
		return nil, invariantf(fn.Name, "%d statements kept out of %d", opaque, len(orig.Body.List))
	}

	declared := make(map[string]*ast.Ident)
	for _, field := range orig.Type.Params.List {
		for _, id := range field.Names {
			declared[id.Name] = id
		}
	}
	for _, s := range fn.Body {
		c, ok := s.(*syntax.Convert)
		if !ok {
			continue
		}
		if id := declared[c.Name]; id != nil && used != nil && used(id) {
			continue
		}
		stmts = append(stmts, &ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent("_")},
			Tok: token.ASSIGN,
			Rhs: []ast.Expr{ast.NewIdent(c.Name)},
		})
	}
	return stmts, nil
}

// conversion builds "name := T(name)".
func conversion(name string, target ast.Expr) ast.Stmt {
	fun := target
	switch t := target.(type) {
	case *ast.StarExpr, *ast.FuncType:
		fun = &ast.ParenExpr{X: t}
	case *ast.ChanType:
		if t.Dir == ast.RECV {
			fun = &ast.ParenExpr{X: t}
		}
	}
	return &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(name)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{&ast.CallExpr{Fun: fun, Args: []ast.Expr{ast.NewIdent(name)}}},
	}
}

func typeExpr(t syntax.Type) (ast.Expr, error) {
	switch t := t.(type) {
	case *syntax.Named:
		return ast.NewIdent(t.Name), nil
	case *syntax.Expr:
		if e, ok := t.Origin.(ast.Expr); ok && e != nil {
			return e, nil
		}
		return parser.ParseExpr(t.Text)
	}
	return nil, fmt.Errorf("unknown type %T", t)
}

func raiseDoc(fn *syntax.Func, doc *ast.CommentGroup, opts Options) []string {
	directive := opts.Directive
	if directive == "" {
		directive = DefaultDirective
	}
	var lines []string
	if doc != nil {
		for _, c := range doc.List {
			if !IsDirective(c.Text, directive) {
				lines = append(lines, c.Text)
			}
		}
	}
	if !fn.HasLint(syntax.NamingStyle) {
		return lines
	}
	// only the line right above the declaration scopes over the whole function
	if n := len(lines); n > 0 && nolint.Covers(lines[n-1], opts.Nolint) {
		return lines
	}
	return append(lines, nolint.Comment(opts.Nolint))
}

func invariantf(fn, format string, args ...any) error {
	return &transform.Error{Err: transform.ErrInvariant, Func: fn, Detail: fmt.Sprintf(format, args...)}
}
