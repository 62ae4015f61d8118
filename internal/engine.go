package internal

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gnolang/argsinto/internal/goast"
	"github.com/gnolang/argsinto/internal/nolint"
	"github.com/gnolang/argsinto/internal/transform"
	tt "github.com/gnolang/argsinto/internal/types"
)

// DefaultNolint lists the linters that report the synthesized generic names.
var DefaultNolint = []string{"revive", "stylecheck"}

// Options configure an Engine.
type Options struct {
	// Directive marks the declarations to rewrite. Defaults to //argsinto.
	Directive string
	// Nolint lists the linters suppressed on rewritten functions. A nil list
	// means DefaultNolint; an empty non-nil list produces //nolint:all.
	Nolint []string
	// CheckGoVersion rejects files of modules that predate generics.
	CheckGoVersion bool
}

// Engine rewrites the marked functions of Go source files.
type Engine struct {
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	written  map[string]string
	versions map[string]error
}

// Result is the outcome of running the engine over one file.
type Result struct {
	Filename string
	// Output is the rewritten source, or the input when nothing was marked.
	Output []byte
	// Funcs names the rewritten functions, in source order.
	Funcs   []string
	Changed bool
}

// NewEngine creates an engine. A nil logger discards logs.
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	if opts.Directive == "" {
		opts.Directive = goast.DefaultDirective
	}
	if opts.Nolint == nil {
		opts.Nolint = DefaultNolint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		opts:     opts,
		logger:   logger,
		written:  make(map[string]string),
		versions: make(map[string]error),
	}
}

// Run rewrites the file at filename. The file itself is left untouched; see
// Write.
func (e *Engine) Run(filename string) (*Result, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return e.RunSource(filename, src)
}

// RunSource rewrites src, read from filename. Either every marked function
// is rewritten or an error is returned and no output is produced.
func (e *Engine) RunSource(filename string, src []byte) (*Result, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	targets := goast.Directives(file, e.opts.Directive)
	if len(targets) == 0 {
		return &Result{Filename: filename, Output: src}, nil
	}
	if e.opts.CheckGoVersion && filename != "" {
		if err := e.checkGoVersion(filename); err != nil {
			return nil, err
		}
	}

	known := typeCheck(fset, file)
	// a first pass without guards tells which conversions the body never
	// reads.
	opts := goast.Options{
		Directive: e.opts.Directive,
		Nolint:    e.opts.Nolint,
		Used:      func(*ast.Ident) bool { return true },
	}
	out, rewrites, err := rewrite(fset, filename, src, targets, opts)
	if err != nil {
		return nil, err
	}
	unused, err := unusedParams(filename, out, file, rewrites)
	if err != nil {
		return nil, newIssue(fset, filename, err, file.Name)
	}
	if len(unused) > 0 {
		opts.Used = func(id *ast.Ident) bool { return !unused[id] }
		if out, rewrites, err = rewrite(fset, filename, src, targets, opts); err != nil {
			return nil, err
		}
	}
	if err := e.verify(filename, out, file, rewrites, known); err != nil {
		return nil, newIssue(fset, filename, err, file.Name)
	}

	res := &Result{Filename: filename, Output: out, Changed: !bytes.Equal(out, src)}
	for _, rw := range rewrites {
		res.Funcs = append(res.Funcs, rw.Decl.Name.Name)
		if ce := e.logger.Check(zap.DebugLevel, "rewrote function"); ce != nil {
			header, _ := rw.Header()
			ce.Write(zap.String("file", filename), zap.String("func", rw.Decl.Name.Name), zap.String("signature", header))
		}
	}
	return res, nil
}

// rewrite applies every target and formats the result.
func rewrite(fset *token.FileSet, filename string, src []byte, targets []goast.Target, opts goast.Options) ([]byte, []*goast.Rewrite, error) {
	var (
		edits    []edit
		rewrites []*goast.Rewrite
	)
	for _, target := range targets {
		rw, err := goast.Apply(target.Decl, opts)
		if err != nil {
			return nil, nil, newIssue(fset, filename, err, target.Decl)
		}
		es, err := spliceEdits(fset, src, rw)
		if err != nil {
			return nil, nil, newIssue(fset, filename, err, target.Decl)
		}
		edits = append(edits, es...)
		rewrites = append(rewrites, rw)
	}

	out, err := format.Source(applyEdits(src, edits))
	if err != nil {
		return nil, nil, newIssue(fset, filename, invariantf("rewritten file does not format: %v", err), targets[0].Decl)
	}
	return out, rewrites, nil
}

// Write stores the output of res in its file when it changed.
func (e *Engine) Write(res *Result) error {
	if !res.Changed {
		return nil
	}
	info, err := os.Stat(res.Filename)
	if err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}
	if err := os.WriteFile(res.Filename, res.Output, info.Mode().Perm()); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}
	e.remember(res.Filename, res.Output)
	e.logger.Info("rewrote file", zap.String("file", res.Filename), zap.Strings("funcs", res.Funcs))
	return nil
}

// edit replaces src[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// spliceEdits builds the edits rewriting the declaration of rw in place.
// The doc comment is replaced, the synthesized type parameters are inserted
// and every parameter type is replaced; the rest of the signature, comments
// included, is kept from the source. When needed, the original body is
// wrapped in a block preceded by the prologue.
func spliceEdits(fset *token.FileSet, src []byte, rw *goast.Rewrite) ([]edit, error) {
	decl := rw.Original
	offset := func(p token.Pos) int { return fset.Position(p).Offset }

	lbrace := offset(decl.Body.Lbrace)
	rbrace := offset(decl.Body.Rbrace)
	if lbrace >= rbrace || rbrace >= len(src) {
		return nil, invariantf("body of %s is out of the source range", decl.Name.Name)
	}

	start := decl.Pos()
	if decl.Doc != nil {
		start = decl.Doc.Pos()
	}
	edits := []edit{{start: offset(start), end: offset(decl.Pos()), text: rw.DocText()}}

	if added := rw.AddedTypeParams(); len(added) > 0 {
		text := strings.Join(added, ", ")
		if tps := decl.Type.TypeParams; tps != nil && len(tps.List) > 0 {
			at := offset(tps.List[len(tps.List)-1].End())
			edits = append(edits, edit{start: at, end: at, text: ", " + text})
		} else {
			at := offset(decl.Name.End())
			edits = append(edits, edit{start: at, end: at, text: "[" + text + "]"})
		}
	}

	generics := rw.ParamTypes()
	for _, field := range decl.Type.Params.List {
		if len(field.Names) == 0 {
			return nil, invariantf("unnamed parameter of %s", decl.Name.Name)
		}
		for i, id := range field.Names {
			generic, ok := generics[id]
			if !ok {
				return nil, invariantf("parameter %s of %s has no generic type", id.Name, decl.Name.Name)
			}
			if i < len(field.Names)-1 {
				at := offset(id.End())
				edits = append(edits, edit{start: at, end: at, text: " " + generic})
				continue
			}
			edits = append(edits, edit{start: offset(field.Type.Pos()), end: offset(field.Type.End()), text: generic})
		}
	}
	if !rw.Nested() {
		return edits, nil
	}

	prologue, err := rw.PrologueText()
	if err != nil {
		return nil, invariantf("printing %s: %v", decl.Name.Name, err)
	}
	text := "\n{\n" + prologue + "\n"
	if body := strings.TrimSpace(string(src[lbrace+1 : rbrace])); body != "" {
		text += body + "\n"
	}
	edits = append(edits, edit{start: lbrace + 1, end: rbrace, text: text + "}\n"})
	return edits, nil
}

// applyEdits applies non-overlapping edits back to front so that offsets
// stay valid.
func applyEdits(src []byte, edits []edit) []byte {
	sorted := append([]edit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start > sorted[j].start })

	out := append([]byte(nil), src...)
	for _, ed := range sorted {
		var buf bytes.Buffer
		buf.Grow(len(out) - (ed.end - ed.start) + len(ed.text))
		buf.Write(out[:ed.start])
		buf.WriteString(ed.text)
		buf.Write(out[ed.end:])
		out = buf.Bytes()
	}
	return out
}

// verify parses the rewritten source, checks that every rewritten function
// of orig is covered by its suppression comment and type-checks the
// rewritten signatures and prologues. known holds the errors of orig.
func (e *Engine) verify(filename string, out []byte, orig *ast.File, rewrites []*goast.Rewrite, known []types.Error) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, out, parser.ParseComments)
	if err != nil {
		return invariantf("rewritten file does not parse: %v", err)
	}
	found, err := locate(orig, file, rewrites)
	if err != nil {
		return err
	}

	mgr := nolint.ParseComments(file, fset)
	for _, l := range found {
		if missing := mgr.Uncovered(fset, l.decl, e.opts.Nolint); len(missing) > 0 {
			return invariantf("%s is not covered by nolint for %q", l.decl.Name.Name, missing)
		}
	}
	return checkRewrites(fset, file, found, known)
}

func funcDecls(f *ast.File) []*ast.FuncDecl {
	var decls []*ast.FuncDecl
	for _, d := range f.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			decls = append(decls, fd)
		}
	}
	return decls
}

// funcKeys identifies function declarations by receiver type, name and
// rank among declarations of the same name, so that several init functions
// stay distinct.
func funcKeys(decls []*ast.FuncDecl) []string {
	seen := make(map[string]int)
	keys := make([]string, len(decls))
	for i, d := range decls {
		key := recvTypeName(d) + "." + d.Name.Name
		keys[i] = fmt.Sprintf("%s#%d", key, seen[key])
		seen[key]++
	}
	return keys
}

func recvTypeName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return ""
	}
	t := d.Recv.List[0].Type
	for {
		switch x := t.(type) {
		case *ast.StarExpr:
			t = x.X
		case *ast.ParenExpr:
			t = x.X
		case *ast.IndexExpr:
			t = x.X
		case *ast.IndexListExpr:
			t = x.X
		case *ast.Ident:
			return x.Name
		default:
			return fmt.Sprintf("%T", t)
		}
	}
}

func invariantf(format string, args ...any) error {
	return &transform.Error{Err: transform.ErrInvariant, Detail: fmt.Sprintf(format, args...)}
}

// newIssue positions err on the node it points at, or on the declaration
// it comes from.
func newIssue(fset *token.FileSet, filename string, err error, fallback ast.Node) error {
	var suggestion string
	if decl, ok := fallback.(ast.Decl); ok {
		fallback = goast.DeclNode(decl)
		if !errors.Is(err, transform.ErrInvariant) {
			suggestion = goast.Suggest(decl)
		}
	}
	node := goast.ErrorNode(err, fallback)
	rule := goast.Category(err)
	return tt.Issue{
		Rule:       rule,
		Category:   "argsinto",
		Filename:   filename,
		Message:    err.Error(),
		Suggestion: suggestion,
		Note:       goast.Note(rule),
		Start:      fset.Position(node.Pos()),
		End:        fset.Position(node.End()),
		Severity:   tt.SeverityError,
		Err:        err,
	}
}
