package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/argsinto/internal/syntax"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	a, b := typed("a", "int"), typed("b", "int")

	assert.Empty(t, Extract(nil))
	assert.Empty(t, Extract([]syntax.Param{&syntax.Receiver{}}))
	assert.Equal(t, []*syntax.Typed{a, b}, Extract([]syntax.Param{&syntax.Receiver{}, a, b}))
}

func TestSynthesizeName(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"age":        "__AGE",
		"first_name": "__FIRST_NAME",
		"userID":     "__USERID",
		"x1":         "__X1",
		"ñame":       "__ÑAME",
	}
	for in, want := range tests {
		assert.Equal(t, want, SynthesizeName(in), in)
	}
}

func TestBind(t *testing.T) {
	t.Parallel()
	a := typed("a", "int")
	args, err := Bind("f", []*syntax.Typed{a})
	require.NoError(t, err)
	assert.Equal(t, []Arg{{Name: "a", Type: a.Type, Param: a}}, args)

	blank := &syntax.Typed{Pat: &syntax.Destructure{Desc: "_"}, Type: &syntax.Expr{Text: "int"}}
	_, err = Bind("f", []*syntax.Typed{a, blank})
	assert.ErrorIs(t, err, ErrUnsupportedPattern)
}

func TestRewriteParamsArity(t *testing.T) {
	t.Parallel()
	params := []syntax.Param{typed("a", "int"), typed("b", "int")}

	_, err := RewriteParams("f", params, []string{"__A"})
	assert.True(t, errors.Is(err, ErrInvariant))

	_, err = RewriteParams("f", params, []string{"__A", "__B", "__C"})
	assert.True(t, errors.Is(err, ErrInvariant))

	got, err := RewriteParams("f", params, []string{"__A", "__B"})
	require.NoError(t, err)
	assert.Equal(t, &syntax.Named{Name: "__B"}, got[1].(*syntax.Typed).Type)
	assert.Equal(t, &syntax.Expr{Text: "int"}, params[1].(*syntax.Typed).Type, "input list is left alone")
}

func TestExtendGenerics(t *testing.T) {
	t.Parallel()
	existing := []*syntax.GenericParam{{Name: "T"}}
	bound := ConstructBound(&syntax.Expr{Text: "int"})

	got, err := ExtendGenerics("f", existing, []string{"__A"}, []*syntax.Into{bound})
	require.NoError(t, err)
	assert.Equal(t, []*syntax.GenericParam{{Name: "T"}, {Name: "__A", Bound: bound}}, got)
	assert.Len(t, existing, 1)

	_, err = ExtendGenerics("f", existing, []string{"__A", "__B"}, []*syntax.Into{bound})
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestWithPrologue(t *testing.T) {
	t.Parallel()
	args := []Arg{
		{Name: "a", Type: &syntax.Expr{Text: "int"}},
		{Name: "b", Type: &syntax.Expr{Text: "string"}},
	}
	body := []syntax.Stmt{opaque("one()"), opaque("two()")}

	got := WithPrologue(Prologue(args), body)
	require.Len(t, got, 4)
	assert.Equal(t, "a := Into[int](a)", got[0].String())
	assert.Equal(t, "b := Into[string](b)", got[1].String())
	assert.Equal(t, body, got[2:])
	assert.Empty(t, WithPrologue(nil, nil))
}
