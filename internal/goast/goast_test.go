package goast

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/argsinto/internal/syntax"
	"github.com/gnolang/argsinto/internal/transform"
)

var testOptions = Options{Directive: DefaultDirective, Nolint: []string{"revive", "stylecheck"}}

func parseFile(t *testing.T, src string) (*ast.File, *token.FileSet) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return f, fset
}

func firstDecl(t *testing.T, src string) ast.Decl {
	t.Helper()
	f, _ := parseFile(t, "package p\n\n"+src)
	require.NotEmpty(t, f.Decls)
	return f.Decls[len(f.Decls)-1]
}

func TestDirectives(t *testing.T) {
	t.Parallel()
	f, _ := parseFile(t, `package p

//argsinto
func a(x int) {}

// b is not marked.
func b(x int) {}

// c is marked after its doc.
//argsinto with a note
func c(x int) {}

//argsintox
func d(x int) {}

//argsinto
type T int

var (
	//argsinto
	v = 1
)
`)
	targets := Directives(f, "")
	var names []string
	for _, tg := range targets {
		switch d := tg.Decl.(type) {
		case *ast.FuncDecl:
			names = append(names, d.Name.Name)
		case *ast.GenDecl:
			names = append(names, d.Tok.String())
		}
	}
	assert.Equal(t, []string{"a", "c", "type", "var"}, names)
	assert.Equal(t, "//argsinto with a note", targets[1].Comment.Text)

	assert.Empty(t, Directives(f, "//other"))
}

func TestIsDirective(t *testing.T) {
	t.Parallel()
	assert.True(t, IsDirective("//argsinto", "//argsinto"))
	assert.True(t, IsDirective("//argsinto note", "//argsinto"))
	assert.True(t, IsDirective("//argsinto\tnote", "//argsinto"))
	assert.False(t, IsDirective("//argsintonote", "//argsinto"))
	assert.False(t, IsDirective("// argsinto", "//argsinto"))
}

func TestLower(t *testing.T) {
	t.Parallel()
	decl := firstDecl(t, `func f[T any](a, b int, c []string) (int, error) {
	x := a
	return x, nil
}`)
	item, err := Lower(decl)
	require.NoError(t, err)

	fn, ok := item.(*syntax.Func)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
	assert.Same(t, decl, fn.Origin)
	require.Len(t, fn.Generics, 1)
	assert.Equal(t, "T any", fn.Generics[0].String())

	require.Len(t, fn.Params, 3)
	assert.Equal(t, "func f[T any](a int, b int, c []string)", fn.Signature())
	require.Len(t, fn.Body, 2)
	assert.IsType(t, &syntax.Opaque{}, fn.Body[0])

	item, err = Lower(firstDecl(t, `func (s *S) m(a int) {}`))
	require.NoError(t, err)
	fn = item.(*syntax.Func)
	require.Len(t, fn.Params, 2)
	assert.IsType(t, &syntax.Receiver{}, fn.Params[0])
	assert.Equal(t, "func m(recv, a int)", fn.Signature())
}

func TestLowerPatterns(t *testing.T) {
	t.Parallel()
	fn, err := Lower(firstDecl(t, `func f(_ int, x string) {}`))
	require.NoError(t, err)
	assert.Equal(t, &syntax.Destructure{Desc: "the blank identifier"}, fn.(*syntax.Func).Params[0].(*syntax.Typed).Pat)

	fn, err = Lower(firstDecl(t, `func f(int, string) {}`))
	require.NoError(t, err)
	assert.Equal(t, &syntax.Destructure{Desc: "an unnamed parameter"}, fn.(*syntax.Func).Params[1].(*syntax.Typed).Pat)
}

func TestLowerOther(t *testing.T) {
	t.Parallel()
	item, err := Lower(firstDecl(t, `type T struct{}`))
	require.NoError(t, err)
	assert.Equal(t, "type declaration", item.(*syntax.Other).Kind)
}

func TestApply(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		header   string
		prologue string
		doc      []string
		// used names the parameters the body refers to. A nil list leaves
		// the resolver unset.
		used []string
	}{
		{
			name: "predeclared and named types",
			src: `// Greet says hello.
//argsinto
func Greet(name string, d time.Duration) error {
	fmt.Println(name, d)
	return nil
}`,
			header:   "func Greet[__NAME interface{ ~string }, __D interface{ time.Duration }](name __NAME, d __D) error",
			prologue: "name := string(name)\nd := time.Duration(d)",
			doc:      []string{"// Greet says hello.", "//nolint:revive,stylecheck"},
			used:     []string{"name", "d"},
		},
		{
			name: "pointer and receive-only channel are parenthesized",
			src: `//argsinto
func Drain(p *int, ch <-chan int) {
	*p = <-ch
}`,
			header:   "func Drain[__P interface{ ~*int }, __CH interface{ ~<-chan int }](p __P, ch __CH)",
			prologue: "p := (*int)(p)\nch := (<-chan int)(ch)",
			doc:      []string{"//nolint:revive,stylecheck"},
			used:     []string{"p", "ch"},
		},
		{
			name: "existing type parameters come first",
			src: `//argsinto
func Count[T comparable](xs []T) int {
	return len(xs)
}`,
			header: "func Count[T comparable, __XS interface{ ~[]T }](xs __XS) int",
		},
		{
			name: "unused parameter is kept alive",
			src: `//argsinto
func Ignore(v int) {
	fmt.Println("ignored")
}`,
			header:   "func Ignore[__V interface{ ~int }](v __V)",
			prologue: "v := int(v)\n_ = v",
			used:     []string{},
		},
		{
			name: "only the resolved parameters go unguarded",
			src: `//argsinto
func Pair(a, b int) int {
	return a
}`,
			prologue: "a := int(a)\nb := int(b)\n_ = b",
			used:     []string{"a"},
		},
		{
			name: "without a resolver every parameter is kept alive",
			src: `//argsinto
func Field(name string) {
	fmt.Println(name)
}`,
			prologue: "name := string(name)\n_ = name",
		},
		{
			name: "existing suppression is kept",
			src: `//argsinto
//nolint:stylecheck,revive,gocritic
func Quiet(n int) int {
	return n
}`,
			doc: []string{"//nolint:stylecheck,revive,gocritic"},
		},
		{
			name: "bare nolint does not count",
			src: `//nolint
//argsinto
func Loud(n int) int {
	return n
}`,
			doc: []string{"//nolint", "//nolint:revive,stylecheck"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := testOptions
			if tt.used != nil {
				opts.Used = usedNames(tt.used...)
			}
			rw, err := Apply(firstDecl(t, tt.src), opts)
			require.NoError(t, err)
			assert.True(t, rw.Nested())

			if tt.header != "" {
				header, err := rw.Header()
				require.NoError(t, err)
				assert.Equal(t, tt.header, header)
			}
			if tt.prologue != "" {
				prologue, err := rw.PrologueText()
				require.NoError(t, err)
				assert.Equal(t, tt.prologue, prologue)
			}
			if tt.doc != nil {
				assert.Equal(t, tt.doc, rw.Doc)
			}
		})
	}
}

func usedNames(names ...string) func(*ast.Ident) bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return func(id *ast.Ident) bool { return set[id.Name] }
}

func TestRewriteAccessors(t *testing.T) {
	t.Parallel()
	decl := firstDecl(t, `func Count[T comparable](xs []T, n int) int {
	return len(xs) + n
}`).(*ast.FuncDecl)
	rw, err := Apply(decl, testOptions)
	require.NoError(t, err)

	assert.Equal(t, []string{"__XS interface{ ~[]T }", "__N interface{ ~int }"}, rw.AddedTypeParams())

	types := rw.ParamTypes()
	xs, n := decl.Type.Params.List[0].Names[0], decl.Type.Params.List[1].Names[0]
	assert.Equal(t, map[*ast.Ident]string{xs: "__XS", n: "__N"}, types)
}

func TestHeaderKeepsLongConstraintsOnOneLine(t *testing.T) {
	t.Parallel()
	rw, err := Apply(firstDecl(t, "func Load(index map[string][]configuration.Entry) {\n\t_ = index\n}"), testOptions)
	require.NoError(t, err)
	header, err := rw.Header()
	require.NoError(t, err)
	assert.Equal(t, "func Load[__INDEX interface{ ~map[string][]configuration.Entry }](index __INDEX)", header)
	assert.Equal(t, []string{"//nolint:revive,stylecheck"}, rw.Doc)
}

func TestApplyWithoutParameters(t *testing.T) {
	t.Parallel()
	rw, err := Apply(firstDecl(t, "//argsinto\nfunc (s *S) Reset() {\n\ts.n = 0\n}"), Options{})
	require.NoError(t, err)
	assert.False(t, rw.Nested())
	assert.Equal(t, []string{"//nolint:all"}, rw.Doc)
	header, err := rw.Header()
	require.NoError(t, err)
	assert.Equal(t, "func (s *S) Reset()", header)
}

func TestApplyErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		wantErr  error
		category string
	}{
		{"variadic", "func f(xs ...int) {}", ErrVariadic, "variadic-parameter"},
		{"no body", "func f(x int)", ErrNoBody, "missing-body"},
		{"method", "func (s S) f(x int) {}", ErrGenericMethod, "generic-method"},
		{"type parameter", "func f[T any](x T) {}", ErrTypeParamType, "type-parameter-type"},
		{"parenthesized type parameter", "func f[T any](x (T)) {}", ErrTypeParamType, "type-parameter-type"},
		{"unnamed", "func f(int) {}", transform.ErrUnsupportedPattern, "unsupported-pattern"},
		{"blank", "func f(_ int) {}", transform.ErrUnsupportedPattern, "unsupported-pattern"},
		{"collision", "func f(id, ID int) {}", transform.ErrNameCollision, "name-collision"},
		{"type", "type T int", transform.ErrWrongItemKind, "wrong-item-kind"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			decl := firstDecl(t, tt.src)
			rw, err := Apply(decl, testOptions)
			require.Error(t, err)
			assert.Nil(t, rw)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.category, Category(err))
			assert.NotNil(t, ErrorNode(err, decl))
		})
	}
}

func TestErrorNode(t *testing.T) {
	t.Parallel()
	decl := firstDecl(t, "func f(a int, _ string) {}").(*ast.FuncDecl)
	_, err := Apply(decl, testOptions)
	require.Error(t, err)
	assert.Same(t, decl.Type.Params.List[1].Names[0], ErrorNode(err, decl))

	decl = firstDecl(t, "func f(a int, xs ...int) {}").(*ast.FuncDecl)
	_, err = Apply(decl, testOptions)
	require.Error(t, err)
	assert.Same(t, decl.Type.Params.List[1], ErrorNode(err, decl))

	assert.Same(t, decl, ErrorNode(errors.New("plain"), decl))
	assert.Equal(t, "argsinto", Category(errors.New("plain")))
}

func TestRaiseRequiresGoOrigin(t *testing.T) {
	t.Parallel()
	_, err := Raise(&syntax.Func{Name: "f"}, testOptions)
	assert.ErrorIs(t, err, transform.ErrInvariant)
}

func TestDeclNode(t *testing.T) {
	t.Parallel()
	fn := firstDecl(t, "func f(x int) {}").(*ast.FuncDecl)
	assert.Equal(t, ast.Node(fn.Type), DeclNode(fn))

	gen := firstDecl(t, "type Name string").(*ast.GenDecl)
	node := DeclNode(gen)
	assert.Equal(t, gen.TokPos, node.Pos())
	assert.Equal(t, gen.TokPos+token.Pos(len("type")), node.End())
}

func TestNote(t *testing.T) {
	t.Parallel()
	for _, err := range []error{ErrVariadic, ErrNoBody, ErrGenericMethod, ErrTypeParamType, transform.ErrWrongItemKind, transform.ErrUnsupportedPattern, transform.ErrNameCollision, transform.ErrInvariant} {
		assert.NotEmpty(t, Note(Category(err)), err.Error())
	}
	assert.Empty(t, Note("argsinto"))
}

func TestSuggest(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"func Join(sep string,\n\tparts ...string) string { return sep }", "func Join(sep string, parts []string) string"},
		{"func f(int, string) {}", "func f(arg0 int, arg1 string)"},
		{"func f(a int, _ string) {}", "func f(a int, arg1 string)"},
		{"func f(arg1 int, _ string) {}", "func f(arg1 int, arg2 string)"},
		{"func (s *S) Set(v int) { s.v = v }", "func Set(s *S, v int)"},
		{"func (S) Set(v ...int) {}", "func Set(recv S, v []int)"},
		{"func (s *S) Reset() {}", ""},
		{"func f(id, ID int) {}", ""},
		{"type T int", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Suggest(firstDecl(t, tt.src)), tt.src)
	}
}
