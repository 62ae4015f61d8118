// Package analyzer reports the marked functions that cannot be rewritten,
// for use with go vet style drivers.
package analyzer

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"

	"github.com/gnolang/argsinto/internal"
	"github.com/gnolang/argsinto/internal/goast"
)

const doc = `report functions marked for rewriting that cannot be rewritten

A function marked with the directive (//argsinto by default) gets a type
parameter per parameter so that callers may pass any value convertible into
the declared type. This analyzer checks that every marked declaration can be
rewritten: it must be a function with a body whose parameters are all named
and not variadic.`

// Analyzer checks the declarations marked with the directive.
var Analyzer = &analysis.Analyzer{
	Name: "argsinto",
	Doc:  doc,
	Run:  run,
}

var directive string

func init() {
	Analyzer.Flags.StringVar(&directive, "directive", goast.DefaultDirective, "comment marking the functions to rewrite")
}

func run(pass *analysis.Pass) (any, error) {
	opts := goast.Options{Directive: directive, Nolint: internal.DefaultNolint}
	for _, file := range pass.Files {
		for _, target := range goast.Directives(file, directive) {
			if _, err := goast.Apply(target.Decl, opts); err != nil {
				report(pass, target.Decl, err)
			}
		}
	}
	return nil, nil
}

func report(pass *analysis.Pass, decl ast.Decl, err error) {
	node := goast.ErrorNode(err, goast.DeclNode(decl))
	rule := goast.Category(err)
	d := analysis.Diagnostic{
		Pos:      node.Pos(),
		End:      node.End(),
		Category: rule,
		Message:  err.Error(),
	}
	if fn, ok := decl.(*ast.FuncDecl); ok {
		if text := goast.Suggest(fn); text != "" {
			d.SuggestedFixes = []analysis.SuggestedFix{{
				Message:   "change the signature",
				TextEdits: []analysis.TextEdit{{Pos: fn.Pos(), End: fn.Type.End(), NewText: []byte(text)}},
			}}
		}
	}
	if note := goast.Note(rule); note != "" {
		d.Related = []analysis.RelatedInformation{{Pos: node.Pos(), End: node.End(), Message: note}}
	}
	pass.Report(d)
}
