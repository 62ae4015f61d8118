package transform

import (
	"fmt"
	"strings"

	"github.com/gnolang/argsinto/internal/syntax"
)

// GenericPrefix is prepended to a parameter name to form its generic name.
const GenericPrefix = "__"

// SynthesizeName derives the generic type parameter name of a parameter:
// the prefixed name, upper cased. "age" becomes "__AGE".
func SynthesizeName(name string) string {
	return strings.ToUpper(GenericPrefix + name)
}

// SynthesizeNames returns one generic name per argument, in argument order.
func SynthesizeNames(args []Arg) []string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = SynthesizeName(arg.Name)
	}
	return names
}

// ConstructBound returns the bound "convertible into t".
func ConstructBound(t syntax.Type) *syntax.Into {
	return &syntax.Into{Target: t}
}

// ConstructBounds returns one bound per argument, built from the argument's
// declared type only. Bounds are paired with names by position later.
func ConstructBounds(args []Arg) []*syntax.Into {
	bounds := make([]*syntax.Into, len(args))
	for i, arg := range args {
		bounds[i] = ConstructBound(arg.Type)
	}
	return bounds
}

// CheckCollisions fails when a synthesized name is used twice or shadows a
// generic parameter the function already declares. Parameter names that only
// differ by case fold into the same generic name.
func CheckCollisions(fn string, existing []*syntax.GenericParam, args []Arg, names []string) error {
	taken := make(map[string]string, len(existing)+len(names))
	for _, g := range existing {
		taken[g.Name] = "generic parameter " + g.Name
	}
	for i, name := range names {
		if owner, ok := taken[name]; ok {
			return &Error{
				Err:    ErrNameCollision,
				Func:   fn,
				Param:  args[i].Param,
				Detail: fmt.Sprintf("%s for parameter %s is already used by %s", name, args[i].Name, owner),
			}
		}
		taken[name] = "parameter " + args[i].Name
	}
	return nil
}
