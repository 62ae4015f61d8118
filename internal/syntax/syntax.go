// Package syntax defines the typed tree the argument rewriting operates on.
//
// The tree models only what the rewrite reads or writes. Everything else (result types, statement bodies, pre-existing
// constraints) is carried as opaque nodes that keep a pointer back to the
// front end's own representation in their Origin field.
package syntax

import "strings"

// Item is a single source item handed over by a front end.
type Item interface {
	item()
}

// Func is a function or method definition.
type Func struct {
	Name     string
	Generics []*GenericParam
	Params   []Param
	Body     []Stmt
	// Suppress lists the diagnostics that must not be reported for the
	// function once it is emitted.
	Suppress []Lint
	Origin   any
}

// Other is any item that is not a function: a type, a variable, an import...
type Other struct {
	Kind   string
	Origin any
}

func (*Func) item()  {}
func (*Other) item() {}

// Param is a formal parameter, either a *Receiver or a *Typed.
type Param interface {
	param()
}

// Receiver is the implicit self argument of a method. It is never rewritten.
type Receiver struct {
	Origin any
}

// Typed is an explicit parameter with a binding pattern and a declared type.
type Typed struct {
	Pat    Pattern
	Type   Type
	Origin any
}

func (*Receiver) param() {}
func (*Typed) param()    {}

// Pattern is the binding form of a typed parameter.
type Pattern interface {
	pattern()
	String() string
}

// Ident binds a single simple name.
type Ident struct {
	Name string
}

// Destructure is any binding that is not a single simple name: a blank
// identifier, a missing name, a tuple pattern.
type Destructure struct {
	Desc string
}

func (*Ident) pattern()       {}
func (*Destructure) pattern() {}

func (p *Ident) String() string       { return p.Name }
func (p *Destructure) String() string { return p.Desc }

// Type is a declared type.
type Type interface {
	typ()
	String() string
}

// Named refers to a type by its bare identifier.
type Named struct {
	Name string
}

// Expr is a type expression owned by the front end.
type Expr struct {
	Text   string
	Origin any
}

func (*Named) typ() {}
func (*Expr) typ()  {}

func (t *Named) String() string { return t.Name }
func (t *Expr) String() string  { return t.Text }

// GenericParam is a type parameter with zero or one bound.
type GenericParam struct {
	Name  string
	Bound Bound
}

func (g *GenericParam) String() string {
	if g.Bound == nil {
		return g.Name
	}
	return g.Name + " " + g.Bound.String()
}

// Bound constrains a generic parameter.
type Bound interface {
	bound()
	String() string
}

// Into is the conversion capability: the implementing type can be
// converted into Target.
type Into struct {
	Target Type
}

// Constraint is a bound written by the user and kept untouched.
type Constraint struct {
	Text   string
	Origin any
}

func (*Into) bound()       {}
func (*Constraint) bound() {}

func (b *Into) String() string       { return "Into[" + b.Target.String() + "]" }
func (b *Constraint) String() string { return b.Text }

// Stmt is a statement of a function body.
type Stmt interface {
	stmt()
	String() string
}

// Convert binds Name to the result of converting the same-named value into
// Target, shadowing it.
type Convert struct {
	Name   string
	Target Type
}

// Opaque is a statement owned by the front end.
type Opaque struct {
	Text   string
	Origin any
}

func (*Convert) stmt() {}
func (*Opaque) stmt()  {}

func (s *Convert) String() string {
	return s.Name + " := Into[" + s.Target.String() + "](" + s.Name + ")"
}

func (s *Opaque) String() string { return s.Text }

// Lint names a diagnostic that can be suppressed on an emitted function.
type Lint string

// NamingStyle is the diagnostic about identifiers that do not follow the
// conventional casing. Synthesized generic names always trigger it.
const NamingStyle Lint = "naming-style"

// HasLint reports whether l is suppressed on fn.
func (fn *Func) HasLint(l Lint) bool {
	for _, s := range fn.Suppress {
		if s == l {
			return true
		}
	}
	return false
}

// Signature renders the header of fn in a neutral notation, used in
// messages and debug logs.
func (fn *Func) Signature() string {
	var b strings.Builder
	b.WriteString("func ")
	b.WriteString(fn.Name)
	if len(fn.Generics) > 0 {
		b.WriteString("[")
		for i, g := range fn.Generics {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(g.String())
		}
		b.WriteString("]")
	}
	b.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		switch p := p.(type) {
		case *Receiver:
			b.WriteString("recv")
		case *Typed:
			b.WriteString(p.Pat.String())
			b.WriteString(" ")
			b.WriteString(p.Type.String())
		}
	}
	b.WriteString(")")
	return b.String()
}
