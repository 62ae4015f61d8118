package goast

import (
	"go/ast"
	"strings"
)

// DefaultDirective is the comment line that requests the rewrite of the
// declaration it documents.
const DefaultDirective = "//argsinto"

// Target is a declaration whose doc comment carries the directive.
type Target struct {
	Decl    ast.Decl
	Comment *ast.Comment
}

// Directives returns the declarations of f marked with directive, in
// source order. Declarations of any kind are returned; only functions can
// actually be rewritten.
func Directives(f *ast.File, directive string) []Target {
	if directive == "" {
		directive = DefaultDirective
	}
	var targets []Target
	for _, decl := range f.Decls {
		if c := findDirective(docOf(decl), directive); c != nil {
			targets = append(targets, Target{Decl: decl, Comment: c})
			continue
		}
		// a directive may also document a single spec of a grouped declaration
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			if c := findDirective(specDoc(spec), directive); c != nil {
				targets = append(targets, Target{Decl: decl, Comment: c})
				break
			}
		}
	}
	return targets
}

// IsDirective reports whether the comment text is the directive, optionally
// followed by a space and free text.
func IsDirective(text, directive string) bool {
	if !strings.HasPrefix(text, directive) {
		return false
	}
	rest := text[len(directive):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func findDirective(doc *ast.CommentGroup, directive string) *ast.Comment {
	if doc == nil {
		return nil
	}
	for _, c := range doc.List {
		if IsDirective(c.Text, directive) {
			return c
		}
	}
	return nil
}

func docOf(decl ast.Decl) *ast.CommentGroup {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		return d.Doc
	case *ast.GenDecl:
		return d.Doc
	}
	return nil
}

func specDoc(spec ast.Spec) *ast.CommentGroup {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Doc
	case *ast.ValueSpec:
		return s.Doc
	case *ast.ImportSpec:
		return s.Doc
	}
	return nil
}
