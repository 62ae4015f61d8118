package goast

import (
	"errors"
	"go/ast"

	"github.com/gnolang/argsinto/internal/transform"
)

var (
	ErrVariadic      = errors.New("variadic parameters are not supported")
	ErrNoBody        = errors.New("function has no body")
	ErrGenericMethod = errors.New("methods cannot have type parameters")
	ErrTypeParamType = errors.New("parameter type is a type parameter of the function")
)

// Error is a failure tied to a node of the Go source.
type Error struct {
	Err  error
	Func string
	Node ast.Node
}

func (e *Error) Error() string {
	if e.Func == "" {
		return e.Err.Error()
	}
	return e.Func + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorNode returns the source node an error points at, or fallback when
// the error carries no position.
func ErrorNode(err error, fallback ast.Node) ast.Node {
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Node != nil {
		return gerr.Node
	}
	var terr *transform.Error
	if errors.As(err, &terr) && terr.Param != nil {
		if n := originNode(terr.Param); n != nil {
			return n
		}
	}
	return fallback
}

// Category classifies an error into the rule name issues are reported under.
func Category(err error) string {
	switch {
	case errors.Is(err, transform.ErrWrongItemKind):
		return "wrong-item-kind"
	case errors.Is(err, transform.ErrUnsupportedPattern):
		return "unsupported-pattern"
	case errors.Is(err, transform.ErrNameCollision):
		return "name-collision"
	case errors.Is(err, transform.ErrInvariant):
		return "internal-invariant"
	case errors.Is(err, ErrVariadic):
		return "variadic-parameter"
	case errors.Is(err, ErrNoBody):
		return "missing-body"
	case errors.Is(err, ErrGenericMethod):
		return "generic-method"
	case errors.Is(err, ErrTypeParamType):
		return "type-parameter-type"
	default:
		return "argsinto"
	}
}

var notes = map[string]string{
	"wrong-item-kind":     "remove the directive from this declaration",
	"unsupported-pattern": "give the parameter a name",
	"name-collision":      "rename one of the parameters",
	"variadic-parameter":  "take a slice instead of a variadic parameter",
	"missing-body":        "only functions with a body can be rewritten",
	"generic-method":      "methods cannot have type parameters; move the logic into a function",
	"type-parameter-type": "the parameter already accepts every type allowed by its constraint",
	"internal-invariant":  "this is a bug, please report it with the source file",
}

// Note returns a hint on how to fix the declaration a rule reports.
func Note(rule string) string { return notes[rule] }

// DeclNode is the node an issue on decl points at when the error itself
// carries no position: the signature of a function, the keyword of other
// declarations.
func DeclNode(decl ast.Decl) ast.Node {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		return d.Type
	case *ast.GenDecl:
		return &ast.Ident{NamePos: d.TokPos, Name: d.Tok.String()}
	}
	return decl
}
