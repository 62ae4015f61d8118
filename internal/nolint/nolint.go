// Package nolint renders the suppression comments added to rewritten
// functions and resolves the code ranges nolint comments apply to.
package nolint

import (
	"errors"
	"go/ast"
	"go/token"
	"sort"
	"strings"
)

const (
	prefix = "//nolint"
	// all stands for every linter. A bare //nolint means the same but is
	// not a directive, so gofmt rewrites it to "// nolint" in doc comments.
	all = "all"
)

var (
	errNotNolint = errors.New("not a nolint comment")
	errFormat    = errors.New("invalid nolint comment format")
	errNoRules   = errors.New("invalid nolint comment: no rules specified after colon")
)

// Comment returns the comment suppressing linters. With no linters it
// suppresses everything.
func Comment(linters []string) string {
	if len(linters) == 0 {
		return prefix + ":" + all
	}
	return prefix + ":" + strings.Join(linters, ",")
}

// Covers reports whether the directive text suppresses every one of
// linters. //nolint:all covers any list; an empty list is only covered by
// //nolint:all. A bare //nolint never covers anything as it does not survive
// formatting.
func Covers(text string, linters []string) bool {
	if !strings.HasPrefix(text, prefix+":") {
		return false
	}
	rules, err := parseRules(text)
	if err != nil {
		return false
	}
	if len(rules) == 0 {
		return true
	}
	if len(linters) == 0 {
		return false
	}
	for _, l := range linters {
		if _, ok := rules[l]; !ok {
			return false
		}
	}
	return true
}

// parseRules returns the rules named by a nolint comment, empty when every
// rule is suppressed.
func parseRules(text string) (map[string]struct{}, error) {
	if !strings.HasPrefix(text, prefix) {
		return nil, errNotNolint
	}
	rest := text[len(prefix):]
	rules := make(map[string]struct{})
	if rest == "" {
		return rules, nil
	}
	if rest[0] != ':' {
		return nil, errFormat
	}
	for _, r := range strings.Split(rest[1:], ",") {
		if r = strings.TrimSpace(r); r != "" {
			rules[r] = struct{}{}
		}
	}
	if len(rules) == 0 {
		return nil, errNoRules
	}
	if _, ok := rules[all]; ok {
		return map[string]struct{}{}, nil
	}
	return rules, nil
}

// Manager knows the ranges covered by the nolint comments of a file.
type Manager struct {
	scopes map[string][]scope
}

type scope struct {
	rules map[string]struct{}
	start token.Position
	end   token.Position
}

// ParseComments collects the nolint comments of f.
//
// A comment above the package clause covers the file. A comment trailing a
// statement covers that statement. A comment on its own line covers the
// statement or function declaration starting on the next line, and only its
// own line otherwise.
func ParseComments(f *ast.File, fset *token.FileSet) *Manager {
	m := &Manager{scopes: make(map[string][]scope)}
	stmts := statementsByLine(f, fset)
	packageLine := fset.Position(f.Package).Line

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			rules, err := parseRules(c.Text)
			if err != nil {
				continue
			}
			s := resolve(c, rules, f, fset, stmts, packageLine)
			m.scopes[s.start.Filename] = append(m.scopes[s.start.Filename], s)
		}
	}
	return m
}

func resolve(c *ast.Comment, rules map[string]struct{}, f *ast.File, fset *token.FileSet, stmts map[int]ast.Stmt, packageLine int) scope {
	pos := fset.Position(c.Slash)
	s := scope{rules: rules, start: pos, end: pos}

	if pos.Line < packageLine {
		s.start, s.end = fset.Position(f.Pos()), fset.Position(f.End())
		return s
	}
	if stmt, ok := stmts[pos.Line]; ok && pos.Offset > fset.Position(stmt.Pos()).Offset {
		s.start, s.end = fset.Position(stmt.Pos()), fset.Position(stmt.End())
		return s
	}
	if stmt, ok := stmts[pos.Line+1]; ok {
		s.end = fset.Position(stmt.End())
		return s
	}
	if decl := funcStartingAt(f, fset, pos.Line+1); decl != nil {
		s.end = fset.Position(decl.End())
	}
	return s
}

// statementsByLine maps each line to the first statement starting on it.
func statementsByLine(f *ast.File, fset *token.FileSet) map[int]ast.Stmt {
	stmts := make(map[int]ast.Stmt)
	ast.Inspect(f, func(n ast.Node) bool {
		if stmt, ok := n.(ast.Stmt); ok {
			line := fset.Position(stmt.Pos()).Line
			if _, seen := stmts[line]; !seen {
				stmts[line] = stmt
			}
		}
		return n != nil
	})
	return stmts
}

func funcStartingAt(f *ast.File, fset *token.FileSet, line int) *ast.FuncDecl {
	for _, decl := range f.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fset.Position(fd.Pos()).Line == line {
			return fd
		}
	}
	return nil
}

// IsNolint reports whether rule is suppressed at pos.
func (m *Manager) IsNolint(pos token.Position, rule string) bool {
	for _, s := range m.scopes[pos.Filename] {
		if pos.Line < s.start.Line || pos.Line > s.end.Line {
			continue
		}
		if len(s.rules) == 0 {
			return true
		}
		if _, ok := s.rules[rule]; ok {
			return true
		}
	}
	return false
}

// Uncovered returns the rules of linters not suppressed over the whole of
// decl, sorted. An empty list stands for every rule, reported as "".
func (m *Manager) Uncovered(fset *token.FileSet, decl *ast.FuncDecl, linters []string) []string {
	if len(linters) == 0 {
		linters = []string{""}
	}
	start, end := fset.Position(decl.Pos()), fset.Position(decl.End())
	var missing []string
	for _, l := range linters {
		if !m.IsNolint(start, l) || !m.IsNolint(end, l) {
			missing = append(missing, l)
		}
	}
	sort.Strings(missing)
	return missing
}
