package transform

import "github.com/gnolang/argsinto/internal/syntax"

// Extract returns the explicit parameters of a signature, in order.
// Receivers are left out.
func Extract(params []syntax.Param) []*syntax.Typed {
	typed := make([]*syntax.Typed, 0, len(params))
	for _, p := range params {
		if t, ok := p.(*syntax.Typed); ok {
			typed = append(typed, t)
		}
	}
	return typed
}
