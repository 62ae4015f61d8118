package transform

import (
	"fmt"

	"github.com/gnolang/argsinto/internal/syntax"
)

// Arg is an explicit parameter whose binding is known to be a simple name.
type Arg struct {
	Name  string
	Type  syntax.Type
	Param *syntax.Typed
}

// Bind checks that every typed parameter binds a single name and returns
// the parameters as arguments. The first offending parameter aborts.
func Bind(fn string, typed []*syntax.Typed) ([]Arg, error) {
	args := make([]Arg, 0, len(typed))
	for i, t := range typed {
		id, ok := t.Pat.(*syntax.Ident)
		if !ok {
			return nil, &Error{
				Err:    ErrUnsupportedPattern,
				Func:   fn,
				Param:  t,
				Detail: fmt.Sprintf("parameter %d binds %s", i+1, t.Pat.String()),
			}
		}
		args = append(args, Arg{Name: id.Name, Type: t.Type, Param: t})
	}
	return args, nil
}

// RewriteParams returns a new parameter list where the type of the n-th
// typed parameter is replaced by the n-th generic name. Receivers keep their
// position and value.
func RewriteParams(fn string, params []syntax.Param, names []string) ([]syntax.Param, error) {
	rewritten := make([]syntax.Param, 0, len(params))
	n := 0
	for _, p := range params {
		t, ok := p.(*syntax.Typed)
		if !ok {
			rewritten = append(rewritten, p)
			continue
		}
		if n >= len(names) {
			return nil, invariantf(fn, "%d generic names for more typed parameters", len(names))
		}
		rewritten = append(rewritten, &syntax.Typed{
			Pat:    t.Pat,
			Type:   &syntax.Named{Name: names[n]},
			Origin: t.Origin,
		})
		n++
	}
	if n != len(names) {
		return nil, invariantf(fn, "%d generic names for %d typed parameters", len(names), n)
	}
	return rewritten, nil
}

// ExtendGenerics appends one generic parameter per name, bounded by the
// bound at the same position, after the existing generic parameters.
func ExtendGenerics(fn string, existing []*syntax.GenericParam, names []string, bounds []*syntax.Into) ([]*syntax.GenericParam, error) {
	if len(names) != len(bounds) {
		return nil, invariantf(fn, "%d generic names for %d bounds", len(names), len(bounds))
	}
	generics := make([]*syntax.GenericParam, 0, len(existing)+len(names))
	generics = append(generics, existing...)
	for i, name := range names {
		generics = append(generics, &syntax.GenericParam{Name: name, Bound: bounds[i]})
	}
	return generics, nil
}
