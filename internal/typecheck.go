package internal

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"

	"github.com/gnolang/argsinto/internal/goast"
)

// unloaded fails every import. The checker then fakes the imported
// packages and stays silent about their members, so a file can be checked
// without its dependencies.
type unloaded struct{}

func (unloaded) Import(path string) (*types.Package, error) {
	return nil, fmt.Errorf("package %s is not loaded", path)
}

// typeCheck checks file on its own and returns every error found. Names
// declared in other files of the package are reported as undefined.
func typeCheck(fset *token.FileSet, file *ast.File) []types.Error {
	var errs []types.Error
	conf := types.Config{
		Importer:    unloaded{},
		FakeImportC: true,
		Error: func(err error) {
			var te types.Error
			if errors.As(err, &te) {
				errs = append(errs, te)
			}
		},
	}
	_, _ = conf.Check(file.Name.Name, fset, []*ast.File{file}, nil)
	return errs
}

func isUnusedVar(err types.Error) bool {
	return err.Soft && strings.Contains(err.Msg, "declared and not used")
}

// located is a rewritten function as found in the rewritten file.
type located struct {
	rw   *goast.Rewrite
	decl *ast.FuncDecl
	// prologue holds the leading statements of the nested block.
	prologue []ast.Stmt
}

// locate finds the rewritten functions of orig in file.
func locate(orig, file *ast.File, rewrites []*goast.Rewrite) ([]located, error) {
	byDecl := make(map[*ast.FuncDecl]*goast.Rewrite, len(rewrites))
	for _, rw := range rewrites {
		byDecl[rw.Original] = rw
	}
	origDecls := funcDecls(orig)
	want := make(map[string]*goast.Rewrite, len(rewrites))
	for i, key := range funcKeys(origDecls) {
		if rw := byDecl[origDecls[i]]; rw != nil {
			want[key] = rw
		}
	}

	var found []located
	decls := funcDecls(file)
	for i, key := range funcKeys(decls) {
		rw := want[key]
		if rw == nil {
			continue
		}
		l := located{rw: rw, decl: decls[i]}
		if rw.Nested() {
			block := nestedBlock(decls[i])
			if block == nil || len(block.List) < len(rw.Prologue) {
				return nil, invariantf("body of %s does not start with its prologue", decls[i].Name.Name)
			}
			l.prologue = block.List[:len(rw.Prologue)]
		}
		found = append(found, l)
	}
	if len(found) != len(want) {
		return nil, invariantf("%d rewritten functions found out of %d", len(found), len(want))
	}
	return found, nil
}

func nestedBlock(decl *ast.FuncDecl) *ast.BlockStmt {
	if decl.Body == nil || len(decl.Body.List) != 1 {
		return nil
	}
	block, _ := decl.Body.List[0].(*ast.BlockStmt)
	return block
}

// unusedParams returns the parameters of orig that the checker reports as
// unused in out, once shadowed by their conversion. out must hold no guard.
func unusedParams(filename string, out []byte, orig *ast.File, rewrites []*goast.Rewrite) (map[*ast.Ident]bool, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, out, parser.ParseComments)
	if err != nil {
		return nil, invariantf("rewritten file does not parse: %v", err)
	}
	found, err := locate(orig, file, rewrites)
	if err != nil {
		return nil, err
	}

	shadows := make(map[token.Pos]*ast.Ident)
	for _, l := range found {
		params := make(map[string]*ast.Ident)
		for _, field := range l.rw.Original.Type.Params.List {
			for _, id := range field.Names {
				params[id.Name] = id
			}
		}
		for _, stmt := range l.prologue {
			as, ok := stmt.(*ast.AssignStmt)
			if !ok || as.Tok != token.DEFINE || len(as.Lhs) != 1 {
				continue
			}
			if id, ok := as.Lhs[0].(*ast.Ident); ok && params[id.Name] != nil {
				shadows[id.Pos()] = params[id.Name]
			}
		}
	}

	unused := make(map[*ast.Ident]bool)
	for _, err := range typeCheck(fset, file) {
		if id := shadows[err.Pos]; id != nil && isUnusedVar(err) {
			unused[id] = true
		}
	}
	return unused, nil
}

// checkRewrites reports the errors found in the signature or the prologue
// of a rewritten function. Errors whose message the original file already
// produced are left to the compiler; an unused conversion is always
// reported.
func checkRewrites(fset *token.FileSet, file *ast.File, found []located, known []types.Error) error {
	seen := make(map[string]bool, len(known))
	for _, err := range known {
		seen[err.Msg] = true
	}
	for _, err := range typeCheck(fset, file) {
		if seen[err.Msg] && !isUnusedVar(err) {
			continue
		}
		for _, l := range found {
			if within(err.Pos, l.decl.Type) || (len(l.prologue) > 0 && err.Pos >= l.prologue[0].Pos() && err.Pos < l.prologue[len(l.prologue)-1].End()) {
				return invariantf("%s does not type-check: %s", l.decl.Name.Name, err.Msg)
			}
		}
	}
	return nil
}

func within(pos token.Pos, n ast.Node) bool {
	return pos >= n.Pos() && pos < n.End()
}
